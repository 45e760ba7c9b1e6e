package vp3

import "github.com/deepteams/theora/internal/bitio"

// frameHeader is the per-frame header that precedes the block map.
type frameHeader struct {
	key  bool
	qis  [3]int
	nqis int
}

// readFrameHeader reads the frame type and the one to three quality
// indices. The cursor must be past the packet type bit.
func readFrameHeader(c *bitio.Cursor) frameHeader {
	var h frameHeader
	h.key = readBit(c) == 0
	for {
		h.qis[h.nqis] = readBits(c, 6)
		h.nqis++
		if h.nqis == len(h.qis) || readBit(c) == 0 {
			break
		}
	}
	if h.key {
		readBits(c, 3) // key frame coding type and two reserved bits
	}
	return h
}

// IsKeyframe reports whether a data packet holds a key frame, from its
// frame type bit alone. It returns false for header and empty packets.
func IsKeyframe(packet []byte) bool {
	return len(packet) > 0 && packet[0]&0x80 == 0 && packet[0]&0x40 == 0
}

// beginFrame resets the per-fragment state for a new frame.
func (d *Decoder) beginFrame() {
	mode := ModeInterNoMV
	if d.hdr.key {
		mode = ModeIntra
	}
	for i := range d.frags {
		d.frags[i] = fragment{mode: mode}
	}
	for i := range d.mbModes {
		d.mbModes[i] = mode
	}
	d.coded = d.coded[:0]
}

// decodeBlockMap decodes which fragments are coded and builds the coded
// fragment list in coding order.
func (d *Decoder) decodeBlockMap(c *bitio.Cursor) {
	g := d.geom
	partial, full := d.sbPartial, d.sbFull

	if d.hdr.key {
		for sb := range full {
			partial[sb], full[sb] = false, true
		}
	} else {
		sb := 0
		unpackSBRuns(c, g.NumSBs, func(flag int) {
			partial[sb], full[sb] = flag == 1, false
			sb++
		})
		nfull := 0
		for _, p := range partial {
			if !p {
				nfull++
			}
		}
		sb = 0
		unpackSBRuns(c, nfull, func(flag int) {
			for partial[sb] {
				sb++
			}
			full[sb] = flag == 1
			sb++
		})
	}

	runs := blockRuns{c: c}
	for sb := 0; sb < g.NumSBs; sb++ {
		if !partial[sb] && !full[sb] {
			continue
		}
		for _, fi := range g.SBFrags(sb) {
			if fi == NoFrag {
				continue
			}
			if full[sb] || runs.next() == 1 {
				d.frags[fi].coded = true
				d.coeffs[fi] = [64]int16{}
				d.coded = append(d.coded, fi)
			}
		}
	}

	for i := range g.MBs {
		d.mbCoded[i] = false
		for _, fi := range g.MBs[i].Luma {
			if d.frags[fi].coded {
				d.mbCoded[i] = true
				break
			}
		}
	}
}
