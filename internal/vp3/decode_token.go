package vp3

import (
	"github.com/deepteams/theora/internal/bitio"
	"github.com/deepteams/theora/internal/huffman"
)

// decodeBlockQIs assigns each coded fragment an index into the frame's
// quality index list. The first pass splits index 0 from the rest; with
// three indices a second pass over the rest splits 1 from 2.
func (d *Decoder) decodeBlockQIs(c *bitio.Cursor) {
	if d.hdr.nqis == 1 {
		return
	}
	n := len(d.coded)
	i, nqi0 := 0, 0
	unpackSBRuns(c, n, func(flag int) {
		d.frags[d.coded[i]].qii = uint8(flag)
		if flag == 0 {
			nqi0++
		}
		i++
	})
	if d.hdr.nqis < 3 || nqi0 == n {
		return
	}
	i = 0
	unpackSBRuns(c, n-nqi0, func(flag int) {
		for d.frags[d.coded[i]].qii == 0 {
			i++
		}
		d.frags[d.coded[i]].qii += uint8(flag)
		i++
	})
}

// decodeTokens reads the DCT tokens of every coded fragment. Tokens are
// coded position-major: all DC tokens first, then each AC position for the
// fragments that have reached it. EOB runs span fragments and positions.
func (d *Decoder) decodeTokens(c *bitio.Cursor) {
	trees := &d.setup.Trees
	nluma := FragIndex(d.geom.Planes[0].NumFrags())
	remaining := len(d.coded)
	eobRun := 0

	dcLuma := huffman.DCOffset + readBits(c, huffman.ChoiceBits)
	dcChroma := huffman.DCOffset + readBits(c, huffman.ChoiceBits)
	for _, fi := range d.coded {
		if eobRun != 0 {
			d.frags[fi].ci = 64
			eobRun--
			remaining--
			continue
		}
		tree := trees[dcChroma]
		if fi < nluma {
			tree = trees[dcLuma]
		}
		eobRun = d.decodeToken(c, tree, fi, &remaining)
	}

	acLuma := readBits(c, huffman.ChoiceBits)
	acChroma := readBits(c, huffman.ChoiceBits)
	for ci := 1; ci < 64 && remaining > 0; ci++ {
		group := huffman.ACGroup(ci)
		lumaTree, chromaTree := trees[group+acLuma], trees[group+acChroma]
		for _, fi := range d.coded {
			f := &d.frags[fi]
			if int(f.ci) > ci {
				continue
			}
			if eobRun != 0 {
				f.ci = 64
				eobRun--
				remaining--
				continue
			}
			tree := chromaTree
			if fi < nluma {
				tree = lumaTree
			}
			eobRun = d.decodeToken(c, tree, fi, &remaining)
		}
	}
}

// decodeToken reads one token for fragment fi and applies it. It returns
// the number of further fragments ended by an EOB run token; a negative
// count ends every remaining fragment.
func (d *Decoder) decodeToken(c *bitio.Cursor, tree *huffman.Tree, fi FragIndex, remaining *int) int {
	tok := tree.Decode(c)
	if tok < 0 {
		// Truncated; the packet is rejected once the frame is parsed.
		tok = huffman.TokenEOB
	}
	extra := 0
	if n := huffman.ExtraBits[tok]; n > 0 {
		extra = readBits(c, int(n))
	}

	f := &d.frags[fi]
	if huffman.IsEOBRun(tok) {
		f.ci = 64
		*remaining--
		switch tok {
		case huffman.TokenEOBPair:
			return 1
		case huffman.TokenEOBTriple:
			return 2
		case huffman.TokenRepeatRun:
			return extra + 3
		case huffman.TokenRepeatRun2:
			return extra + 7
		case huffman.TokenRepeatRun3:
			return extra + 15
		case huffman.TokenRepeatRun4:
			return extra - 1
		}
		return 0
	}

	expandToken(f, &d.coeffs[fi], tok, extra)
	if f.ci >= 64 {
		*remaining--
	}
	return 0
}

// expandToken applies a coefficient or zero-run token at the fragment's
// current zig-zag position. Runs past the end of the block are clamped.
func expandToken(f *fragment, blk *[64]int16, tok, extra int) {
	ci := int(f.ci)
	run, val, sign := 0, 0, 0
	switch {
	case tok == huffman.TokenShortZRL || tok == huffman.TokenZRL:
		f.ci = uint8(min(ci+extra+1, 64))
		return
	case tok == huffman.TokenOne:
		val = 1
	case tok == huffman.TokenMinusOne:
		val = -1
	case tok == huffman.TokenTwo:
		val = 2
	case tok == huffman.TokenMinusTwo:
		val = -2
	case tok < huffman.TokenCat3:
		val, sign = 3+tok-huffman.TokenCat2, extra&1
	case tok == huffman.TokenCat3:
		val, sign = 7+extra&1, extra&2
	case tok == huffman.TokenCat4:
		val, sign = 9+extra&3, extra&4
	case tok == huffman.TokenCat5:
		val, sign = 13+extra&7, extra&8
	case tok == huffman.TokenCat6:
		val, sign = 21+extra&15, extra&16
	case tok == huffman.TokenCat7:
		val, sign = 37+extra&31, extra&32
	case tok == huffman.TokenCat8:
		val, sign = 69+extra&511, extra&512
	case tok < huffman.TokenRunCat1B:
		run, val, sign = tok-huffman.TokenRunCat1+1, 1, extra&1
	case tok == huffman.TokenRunCat1B:
		run, val, sign = 6+extra&3, 1, extra&4
	case tok == huffman.TokenRunCat1C:
		run, val, sign = 10+extra&7, 1, extra&8
	case tok == huffman.TokenRunCat2:
		run, val, sign = 1, 2+extra&1, extra&2
	default:
		run, val, sign = 2+(extra>>1)&1, 2+extra&1, extra&4
	}
	if sign != 0 {
		val = -val
	}
	ci += run
	if ci < 64 {
		blk[ci] = int16(val)
		f.nz = uint8(ci + 1)
	}
	f.ci = uint8(min(ci+1, 64))
}
