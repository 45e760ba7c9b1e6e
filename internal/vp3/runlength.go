package vp3

import "github.com/deepteams/theora/internal/bitio"

// Longest run expressible by each run-length code.
const (
	MaxSBRun    = 4129
	MaxBlockRun = 30
)

// readBits reads n bits MSB-first. Past the end of the packet it returns 0;
// the cursor records the overrun and the packet is rejected afterwards.
func readBits(c *bitio.Cursor, n int) int {
	v := c.ReadBitsMSB(n)
	if v < 0 {
		return 0
	}
	return v
}

func readBit(c *bitio.Cursor) int {
	v := c.ReadBitMSB()
	if v < 0 {
		return 0
	}
	return v
}

// readSBRun decodes a superblock-level run length, 1..4129.
//
//	0             1
//	10x           2..3
//	110x          4..5
//	1110xx        6..9
//	11110xxx      10..17
//	111110xxxx    18..33
//	111111x{12}   34..4129
func readSBRun(c *bitio.Cursor) int {
	switch {
	case readBit(c) == 0:
		return 1
	case readBit(c) == 0:
		return 2 + readBit(c)
	case readBit(c) == 0:
		return 4 + readBit(c)
	case readBit(c) == 0:
		return 6 + readBits(c, 2)
	case readBit(c) == 0:
		return 10 + readBits(c, 3)
	case readBit(c) == 0:
		return 18 + readBits(c, 4)
	}
	return 34 + readBits(c, 12)
}

// readBlockRun decodes a fragment-level run length, 1..30.
//
//	0x          1..2
//	10x         3..4
//	110x        5..6
//	1110xx      7..10
//	11110xx     11..14
//	11111xxxx   15..30
func readBlockRun(c *bitio.Cursor) int {
	switch {
	case readBit(c) == 0:
		return 1 + readBit(c)
	case readBit(c) == 0:
		return 3 + readBit(c)
	case readBit(c) == 0:
		return 5 + readBit(c)
	case readBit(c) == 0:
		return 7 + readBits(c, 2)
	case readBit(c) == 0:
		return 11 + readBits(c, 2)
	}
	return 15 + readBits(c, 4)
}

// unpackSBRuns decodes n flags coded as alternating superblock-level runs
// and passes them to emit in order. A run of the maximum length is
// followed by an explicit flag bit instead of an implied toggle.
func unpackSBRuns(c *bitio.Cursor, n int, emit func(flag int)) {
	if n <= 0 {
		return
	}
	flag := readBit(c)
	for i := 0; i < n; {
		run := readSBRun(c)
		full := run == MaxSBRun
		for ; run > 0 && i < n; run-- {
			emit(flag)
			i++
		}
		if full && i < n {
			flag = readBit(c)
		} else {
			flag ^= 1
		}
	}
}

// blockRuns yields per-fragment flags coded as alternating fragment-level
// runs. The first flag bit and run are read lazily on the first call to
// next, so a frame without partially coded superblocks reads nothing.
type blockRuns struct {
	c       *bitio.Cursor
	flag    int
	left    int
	started bool
}

func (r *blockRuns) next() int {
	if !r.started {
		r.started = true
		r.flag = readBit(r.c)
		r.left = readBlockRun(r.c)
	} else if r.left == 0 {
		r.flag ^= 1
		r.left = readBlockRun(r.c)
	}
	r.left--
	return r.flag
}
