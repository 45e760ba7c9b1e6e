package vp3

import (
	"fmt"

	"github.com/deepteams/theora/internal/bitio"
)

// Mode is a macroblock coding mode. The values are the bitstream's.
type Mode uint8

const (
	ModeInterNoMV        Mode = iota // last frame, zero vector
	ModeIntra                        // no prediction
	ModeInterMV                      // last frame, new vector
	ModeInterLastMV                  // last frame, previous vector
	ModeInterPriorLastMV             // last frame, vector before the previous one
	ModeGoldenNoMV                   // golden frame, zero vector
	ModeGoldenMV                     // golden frame, new vector
	ModeInterFourMV                  // last frame, one vector per luma block

	NumModes = 8
)

var modeNames = [NumModes]string{
	"InterNoMV", "Intra", "InterMV", "InterLastMV",
	"InterPriorLastMV", "GoldenNoMV", "GoldenMV", "InterFourMV",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Reference frames a mode predicts from.
const (
	refIntra  = 0
	refLast   = 1
	refGolden = 2
)

// Ref returns the reference frame a mode predicts from.
func (m Mode) Ref() int {
	switch m {
	case ModeIntra:
		return refIntra
	case ModeGoldenNoMV, ModeGoldenMV:
		return refGolden
	}
	return refLast
}

// MV is a motion vector in half-pixel units for luma, and in the plane's
// own fractional units for chroma. Y grows upwards.
type MV struct {
	X, Y int16
}

// readModeRank decodes the unary mode rank: 0, 10, 110, ..., 1111110,
// 1111111.
func readModeRank(c *bitio.Cursor) int {
	n := 0
	for n < 7 && readBit(c) == 1 {
		n++
	}
	return n
}

// decodeModes reads the coding mode of every coded macroblock and applies
// it to the macroblock's luma and chroma fragments.
func (d *Decoder) decodeModes(c *bitio.Cursor) {
	if d.hdr.key {
		return
	}
	scheme := readBits(c, 3)
	var alphabet [8]Mode
	switch {
	case scheme == 0:
		for m := Mode(0); m < NumModes; m++ {
			alphabet[readBits(c, 3)] = m
		}
	case scheme < 7:
		alphabet = modeAlphabets[scheme-1]
	}

	for i := range d.geom.MBs {
		if !d.mbCoded[i] {
			continue
		}
		var m Mode
		if scheme == 7 {
			m = Mode(readBits(c, 3))
		} else {
			m = alphabet[readModeRank(c)]
		}
		d.mbModes[i] = m
		mb := &d.geom.MBs[i]
		for _, fi := range mb.Luma {
			d.frags[fi].mode = m
		}
		for _, slots := range mb.Chroma {
			for _, fi := range slots {
				if fi != NoFrag {
					d.frags[fi].mode = m
				}
			}
		}
	}
}

// readMVComponentA decodes one vector component with the variable-length
// code. The sign bit follows the magnitude bits.
func readMVComponentA(c *bitio.Cursor) int16 {
	var v int
	switch readBits(c, 3) {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return -1
	case 3:
		return int16(2 - 4*readBit(c))
	case 4:
		return int16(3 - 6*readBit(c))
	case 5:
		v = 4 + readBits(c, 2)
	case 6:
		v = 8 + readBits(c, 3)
	default:
		v = 16 + readBits(c, 4)
	}
	if readBit(c) == 1 {
		v = -v
	}
	return int16(v)
}

// readMVComponentB decodes one vector component as 5-bit magnitude and
// sign.
func readMVComponentB(c *bitio.Cursor) int16 {
	v := readBits(c, 5)
	if readBit(c) == 1 {
		v = -v
	}
	return int16(v)
}

// decodeMVs reads the motion vectors of the coded macroblocks. Vector
// history starts at zero for every frame.
func (d *Decoder) decodeMVs(c *bitio.Cursor) {
	if d.hdr.key {
		return
	}
	readComponent := readMVComponentA
	if readBit(c) == 1 {
		readComponent = readMVComponentB
	}
	read := func() MV {
		x := readComponent(c)
		y := readComponent(c)
		return MV{x, y}
	}

	var last, prior MV
	for i := range d.geom.MBs {
		if !d.mbCoded[i] {
			continue
		}
		mb := &d.geom.MBs[i]
		var v MV
		switch d.mbModes[i] {
		case ModeInterMV:
			prior = last
			last = read()
			v = last
		case ModeGoldenMV:
			v = read()
		case ModeInterLastMV:
			v = last
		case ModeInterPriorLastMV:
			v = prior
			last, prior = prior, last
		case ModeInterFourMV:
			prior = last
			var mvs [4]MV
			for j, fi := range mb.Luma {
				if d.frags[fi].coded {
					mvs[j] = read()
					last = mvs[j]
				}
			}
			d.setFourMVs(mb, &mvs)
			continue
		}
		d.setMV(mb, v)
	}
}

// setMV gives every fragment of a macroblock the same vector.
func (d *Decoder) setMV(mb *Macroblock, v MV) {
	for _, fi := range mb.Luma {
		d.frags[fi].mv = v
	}
	for _, slots := range mb.Chroma {
		for _, fi := range slots {
			if fi != NoFrag {
				d.frags[fi].mv = v
			}
		}
	}
}

// setFourMVs assigns per-block luma vectors and derives the chroma ones.
func (d *Decoder) setFourMVs(mb *Macroblock, mvs *[4]MV) {
	for j, fi := range mb.Luma {
		d.frags[fi].mv = mvs[j]
	}
	chroma := ChromaMVs(d.geom.Format, mvs)
	for _, slots := range mb.Chroma {
		for j, fi := range slots {
			if fi != NoFrag {
				d.frags[fi].mv = chroma[j]
			}
		}
	}
}

// ChromaMVs derives the chroma vectors of a four-vector macroblock from its
// luma vectors. The result uses the same slots as Macroblock.Chroma;
// unused slots are zero.
func ChromaMVs(pf PixelFormat, luma *[4]MV) [4]MV {
	var out [4]MV
	switch pf {
	case PF420:
		out[0] = MV{
			X: roundDiv(int(luma[0].X)+int(luma[1].X)+int(luma[2].X)+int(luma[3].X), 4),
			Y: roundDiv(int(luma[0].Y)+int(luma[1].Y)+int(luma[2].Y)+int(luma[3].Y), 4),
		}
	case PF422:
		out[0] = MV{
			X: roundDiv(int(luma[0].X)+int(luma[1].X), 2),
			Y: roundDiv(int(luma[0].Y)+int(luma[1].Y), 2),
		}
		out[2] = MV{
			X: roundDiv(int(luma[2].X)+int(luma[3].X), 2),
			Y: roundDiv(int(luma[2].Y)+int(luma[3].Y), 2),
		}
	default:
		out = *luma
	}
	return out
}

// roundDiv divides s by n, rounding halves away from zero.
func roundDiv(s, n int) int16 {
	if s >= 0 {
		return int16((s + n/2) / n)
	}
	return int16((s - n/2) / n)
}
