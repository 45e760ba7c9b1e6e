package synth

import (
	"fmt"

	"github.com/deepteams/theora/internal/bitio"
	"github.com/deepteams/theora/internal/huffman"
	"github.com/deepteams/theora/internal/vp3"
)

// Frame describes one frame to encode. Slices indexed by fragment use
// vp3.FragIndex order; slices indexed by macroblock follow
// Geometry().MBs.
type Frame struct {
	Key bool
	QI  int

	// ExtraQIs lists up to two further quality indices. BlockQI selects,
	// per coded fragment, 0 for QI or i+1 for ExtraQIs[i]; missing
	// entries select QI.
	ExtraQIs []int
	BlockQI  map[vp3.FragIndex]int

	// Coded marks coded fragments of an inter frame. nil codes every
	// fragment. Key frames code every fragment regardless.
	Coded []bool

	// Modes holds the mode of each macroblock of an inter frame. nil
	// means ModeInterNoMV everywhere.
	Modes []vp3.Mode

	// ModeScheme is the mode code of an inter frame: 1..6 for the fixed
	// alphabets and 7 for three bits per mode. Zero means 7, or scheme 0
	// when Alphabet is set.
	ModeScheme int

	// Alphabet lists the modes by rank for scheme 0.
	Alphabet *[vp3.NumModes]vp3.Mode

	// VLCVectors selects the variable-length vector code instead of
	// 5-bit magnitudes.
	VLCVectors bool

	// MVs holds the vector of ModeInterMV and ModeGoldenMV macroblocks.
	MVs []vp3.MV

	// FourMVs holds the luma block vectors of ModeInterFourMV macroblocks,
	// in Macroblock.Luma order. Vectors of uncoded blocks are not sent.
	FourMVs [][4]vp3.MV

	// DCTables and ACTables choose the token tables of luma (index 0)
	// and chroma (index 1), 0..15.
	DCTables, ACTables [2]int

	// Coeffs holds quantized coefficients per fragment in zig-zag order,
	// before DC prediction. Missing entries are zero.
	Coeffs map[vp3.FragIndex][]int
}

// KeyFrame returns a key frame whose first fragment in each plane carries
// dc and whose others predict it exactly, so every fragment decodes to the
// same DC.
func (e *Encoder) KeyFrame(qi, dc int) *Frame {
	f := &Frame{Key: true, QI: qi, Coeffs: map[vp3.FragIndex][]int{}}
	for _, p := range e.geom.Planes {
		f.Coeffs[p.FragBase] = []int{dc}
	}
	return f
}

// EncodeFrame returns the data packet for f.
func (e *Encoder) EncodeFrame(f *Frame) ([]byte, error) {
	g := e.geom
	w := bitio.NewWriter(256)
	w.WriteBitsMSB(0, 1) // data packet
	if f.Key {
		w.WriteBitsMSB(0, 1)
	} else {
		w.WriteBitsMSB(1, 1)
	}
	if len(f.ExtraQIs) > 2 {
		return nil, fmt.Errorf("%w: %d quality indices", ErrFrame, 1+len(f.ExtraQIs))
	}
	w.WriteBitsMSB(uint32(f.QI), 6)
	for _, qi := range f.ExtraQIs {
		w.WriteBitsMSB(1, 1)
		w.WriteBitsMSB(uint32(qi), 6)
	}
	if len(f.ExtraQIs) < 2 {
		w.WriteBitsMSB(0, 1)
	}
	if f.Key {
		w.WriteBitsMSB(0, 3)
	}

	if !f.Key && f.Coded != nil && len(f.Coded) != g.NumFrags {
		return nil, fmt.Errorf("%w: %d coded flags for %d fragments", ErrFrame, len(f.Coded), g.NumFrags)
	}
	coded := make([]bool, g.NumFrags)
	for i := range coded {
		coded[i] = f.Key || f.Coded == nil || f.Coded[i]
	}
	if !f.Key {
		if err := e.writeBlockMap(w, coded); err != nil {
			return nil, err
		}
	}

	// Coded fragments in coding order.
	var list []vp3.FragIndex
	for sb := 0; sb < g.NumSBs; sb++ {
		for _, fi := range g.SBFrags(sb) {
			if fi != vp3.NoFrag && coded[fi] {
				list = append(list, fi)
			}
		}
	}

	if !f.Key {
		if err := e.writeModes(w, f, coded); err != nil {
			return nil, err
		}
	}
	if len(f.ExtraQIs) > 0 {
		if err := writeBlockQIs(w, f, list); err != nil {
			return nil, err
		}
	}
	if err := e.writeTokens(w, f, list); err != nil {
		return nil, err
	}
	return w.Data(), nil
}

// writeBlockMap writes the superblock flags and the per-fragment flags of
// partially coded superblocks.
func (e *Encoder) writeBlockMap(w *bitio.Cursor, coded []bool) error {
	g := e.geom
	partial := make([]int, g.NumSBs)
	var full, blocks []int
	for sb := 0; sb < g.NumSBs; sb++ {
		n, ncoded := 0, 0
		for _, fi := range g.SBFrags(sb) {
			if fi == vp3.NoFrag {
				continue
			}
			n++
			if coded[fi] {
				ncoded++
			}
		}
		switch {
		case ncoded == n:
			full = append(full, 1)
		case ncoded == 0:
			full = append(full, 0)
		default:
			partial[sb] = 1
			for _, fi := range g.SBFrags(sb) {
				if fi != vp3.NoFrag {
					blocks = append(blocks, b2i(coded[fi]))
				}
			}
		}
	}
	writeSBRuns(w, partial)
	writeSBRuns(w, full)
	return writeBlockRuns(w, blocks)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// modeAlphabets are the rank-to-mode tables of mode schemes 1..6.
var modeAlphabets = [6][vp3.NumModes]vp3.Mode{
	{vp3.ModeInterLastMV, vp3.ModeInterPriorLastMV, vp3.ModeInterMV, vp3.ModeInterNoMV, vp3.ModeIntra, vp3.ModeGoldenNoMV, vp3.ModeGoldenMV, vp3.ModeInterFourMV},
	{vp3.ModeInterLastMV, vp3.ModeInterPriorLastMV, vp3.ModeInterNoMV, vp3.ModeInterMV, vp3.ModeIntra, vp3.ModeGoldenNoMV, vp3.ModeGoldenMV, vp3.ModeInterFourMV},
	{vp3.ModeInterLastMV, vp3.ModeInterMV, vp3.ModeInterPriorLastMV, vp3.ModeInterNoMV, vp3.ModeIntra, vp3.ModeGoldenNoMV, vp3.ModeGoldenMV, vp3.ModeInterFourMV},
	{vp3.ModeInterLastMV, vp3.ModeInterMV, vp3.ModeInterNoMV, vp3.ModeInterPriorLastMV, vp3.ModeIntra, vp3.ModeGoldenNoMV, vp3.ModeGoldenMV, vp3.ModeInterFourMV},
	{vp3.ModeInterNoMV, vp3.ModeInterLastMV, vp3.ModeInterPriorLastMV, vp3.ModeInterMV, vp3.ModeIntra, vp3.ModeGoldenNoMV, vp3.ModeGoldenMV, vp3.ModeInterFourMV},
	{vp3.ModeInterNoMV, vp3.ModeGoldenNoMV, vp3.ModeInterLastMV, vp3.ModeInterPriorLastMV, vp3.ModeInterMV, vp3.ModeIntra, vp3.ModeGoldenMV, vp3.ModeInterFourMV},
}

// modeRanks returns the rank of every mode under scheme, and writes the
// alphabet itself for scheme 0.
func modeRanks(w *bitio.Cursor, f *Frame, scheme int) (rank [vp3.NumModes]int, err error) {
	switch {
	case scheme == 0:
		seen := 0
		for r, m := range f.Alphabet {
			if int(m) >= vp3.NumModes || seen&(1<<m) != 0 {
				return rank, fmt.Errorf("%w: mode alphabet is not a permutation", ErrFrame)
			}
			seen |= 1 << m
			rank[m] = r
		}
		for _, r := range rank {
			w.WriteBitsMSB(uint32(r), 3)
		}
	case scheme < 7:
		for r, m := range modeAlphabets[scheme-1] {
			rank[m] = r
		}
	}
	return rank, nil
}

// WriteModeRank writes the unary rank code: r ones and a closing zero, or
// seven ones for rank 7.
func WriteModeRank(w *bitio.Cursor, r int) {
	w.WriteBitsMSB(1<<r-1, r)
	if r < 7 {
		w.WriteBitsMSB(0, 1)
	}
}

func (e *Encoder) writeModes(w *bitio.Cursor, f *Frame, coded []bool) error {
	g := e.geom
	if f.Modes != nil && len(f.Modes) != len(g.MBs) {
		return fmt.Errorf("%w: %d modes for %d macroblocks", ErrFrame, len(f.Modes), len(g.MBs))
	}
	mode := func(i int) vp3.Mode {
		if f.Modes == nil {
			return vp3.ModeInterNoMV
		}
		return f.Modes[i]
	}
	mbCoded := func(i int) bool {
		for _, fi := range g.MBs[i].Luma {
			if coded[fi] {
				return true
			}
		}
		return false
	}

	scheme := f.ModeScheme
	switch {
	case f.Alphabet != nil:
		scheme = 0
	case scheme == 0:
		scheme = 7
	case scheme < 0 || scheme > 7:
		return fmt.Errorf("%w: mode scheme %d", ErrFrame, scheme)
	}
	w.WriteBitsMSB(uint32(scheme), 3)
	rank, err := modeRanks(w, f, scheme)
	if err != nil {
		return err
	}
	for i := range g.MBs {
		if !mbCoded(i) {
			continue
		}
		m := mode(i)
		if int(m) >= vp3.NumModes {
			return fmt.Errorf("%w: macroblock %d has mode %d", ErrFrame, i, m)
		}
		if scheme == 7 {
			w.WriteBitsMSB(uint32(m), 3)
		} else {
			WriteModeRank(w, rank[m])
		}
	}

	writeMV := writeMVFixed
	if f.VLCVectors {
		writeMV = writeMVVLC
		w.WriteBitsMSB(0, 1)
	} else {
		w.WriteBitsMSB(1, 1)
	}
	for i := range g.MBs {
		if !mbCoded(i) {
			continue
		}
		switch mode(i) {
		case vp3.ModeInterMV, vp3.ModeGoldenMV:
			if i >= len(f.MVs) {
				return fmt.Errorf("%w: no vector for macroblock %d", ErrFrame, i)
			}
			if err := writeMV(w, f.MVs[i]); err != nil {
				return err
			}
		case vp3.ModeInterFourMV:
			if i >= len(f.FourMVs) {
				return fmt.Errorf("%w: no vectors for macroblock %d", ErrFrame, i)
			}
			for j, fi := range g.MBs[i].Luma {
				if !coded[fi] {
					continue
				}
				if err := writeMV(w, f.FourMVs[i][j]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkMV(v vp3.MV) error {
	if v.X < -31 || v.X > 31 || v.Y < -31 || v.Y > 31 {
		return fmt.Errorf("%w: vector (%d, %d)", ErrValue, v.X, v.Y)
	}
	return nil
}

// writeMVFixed writes each component as a 5-bit magnitude and a sign.
func writeMVFixed(w *bitio.Cursor, v vp3.MV) error {
	if err := checkMV(v); err != nil {
		return err
	}
	for _, comp := range [2]int16{v.X, v.Y} {
		mag, sign := int(comp), uint32(0)
		if mag < 0 {
			mag, sign = -mag, 1
		}
		w.WriteBitsMSB(uint32(mag), 5)
		w.WriteBitsMSB(sign, 1)
	}
	return nil
}

// writeMVVLC writes each component with the variable-length code.
func writeMVVLC(w *bitio.Cursor, v vp3.MV) error {
	if err := checkMV(v); err != nil {
		return err
	}
	WriteMVComponent(w, int(v.X))
	WriteMVComponent(w, int(v.Y))
	return nil
}

// WriteMVComponent writes one component, -31..31, with the
// variable-length code: a 3-bit class, the low magnitude bits of the
// larger classes, then the sign.
func WriteMVComponent(w *bitio.Cursor, v int) {
	mag, sign := v, uint32(0)
	if v < 0 {
		mag, sign = -v, 1
	}
	switch {
	case v == 0:
		w.WriteBitsMSB(0, 3)
		return
	case v == 1:
		w.WriteBitsMSB(1, 3)
		return
	case v == -1:
		w.WriteBitsMSB(2, 3)
		return
	case mag == 2:
		w.WriteBitsMSB(3, 3)
	case mag == 3:
		w.WriteBitsMSB(4, 3)
	case mag <= 7:
		w.WriteBitsMSB(5, 3)
		w.WriteBitsMSB(uint32(mag-4), 2)
	case mag <= 15:
		w.WriteBitsMSB(6, 3)
		w.WriteBitsMSB(uint32(mag-8), 3)
	default:
		w.WriteBitsMSB(7, 3)
		w.WriteBitsMSB(uint32(mag-16), 4)
	}
	w.WriteBitsMSB(sign, 1)
}

// writeBlockQIs writes the quality index choice of every coded fragment in
// coding order: whether it uses QI, then, with three indices, which of the
// other two the rest use.
func writeBlockQIs(w *bitio.Cursor, f *Frame, list []vp3.FragIndex) error {
	first := make([]int, len(list))
	var rest []int
	for i, fi := range list {
		v := f.BlockQI[fi]
		if v < 0 || v > len(f.ExtraQIs) {
			return fmt.Errorf("%w: fragment %d selects quality index %d of %d", ErrFrame, fi, v, 1+len(f.ExtraQIs))
		}
		if v > 0 {
			first[i] = 1
			rest = append(rest, v-1)
		}
	}
	writeSBRuns(w, first)
	if len(f.ExtraQIs) == 2 {
		writeSBRuns(w, rest)
	}
	return nil
}

// writeTokens writes the coefficient tokens position-major, mirroring the
// decoder's traversal. Every block ends with its own EOB token.
func (e *Encoder) writeTokens(w *bitio.Cursor, f *Frame, list []vp3.FragIndex) error {
	for _, c := range [...]int{f.DCTables[0], f.DCTables[1], f.ACTables[0], f.ACTables[1]} {
		if c < 0 || c >= huffman.NumChoices {
			return fmt.Errorf("%w: token table %d", ErrFrame, c)
		}
	}
	nluma := vp3.FragIndex(e.geom.Planes[0].NumFrags())
	// codes returns the code table of fragment i at position ci.
	codes := func(i, ci int) []huffman.Code {
		pl := 1
		if list[i] < nluma {
			pl = 0
		}
		if ci == 0 {
			return e.codes[huffman.DCOffset+f.DCTables[pl]]
		}
		return e.codes[huffman.ACGroup(ci)+f.ACTables[pl]]
	}
	pos := make([]int, len(list))
	coeff := func(i, ci int) int {
		c := f.Coeffs[list[i]]
		if ci < len(c) {
			return c[ci]
		}
		return 0
	}
	tail := func(i, ci int) bool {
		for ; ci < 64; ci++ {
			if coeff(i, ci) != 0 {
				return false
			}
		}
		return true
	}

	remaining := len(list)
	pass := func(ci int) error {
		for i := range list {
			if pos[i] != ci {
				continue
			}
			if tail(i, ci) {
				huffman.Encode(w, codes(i, ci), huffman.TokenEOB)
				pos[i] = 64
				remaining--
				continue
			}
			zeros := 0
			for coeff(i, ci+zeros) == 0 {
				zeros++
			}
			if zeros > 0 {
				huffman.Encode(w, codes(i, ci), huffman.TokenZRL)
				w.WriteBitsMSB(uint32(zeros-1), 6)
				pos[i] = ci + zeros
				continue
			}
			tok, extra, err := valueToken(coeff(i, ci))
			if err != nil {
				return err
			}
			huffman.Encode(w, codes(i, ci), tok)
			w.WriteBitsMSB(uint32(extra), int(huffman.ExtraBits[tok]))
			pos[i] = ci + 1
			if pos[i] == 64 {
				remaining--
			}
		}
		return nil
	}

	w.WriteBitsMSB(uint32(f.DCTables[0]), huffman.ChoiceBits)
	w.WriteBitsMSB(uint32(f.DCTables[1]), huffman.ChoiceBits)
	if err := pass(0); err != nil {
		return err
	}
	w.WriteBitsMSB(uint32(f.ACTables[0]), huffman.ChoiceBits)
	w.WriteBitsMSB(uint32(f.ACTables[1]), huffman.ChoiceBits)
	for ci := 1; ci < 64 && remaining > 0; ci++ {
		if err := pass(ci); err != nil {
			return err
		}
	}
	return nil
}

// valueToken picks the token and extra bits that code v.
func valueToken(v int) (tok, extra int, err error) {
	mag, sign := v, 0
	if v < 0 {
		mag, sign = -v, 1
	}
	switch {
	case v == 1:
		return huffman.TokenOne, 0, nil
	case v == -1:
		return huffman.TokenMinusOne, 0, nil
	case v == 2:
		return huffman.TokenTwo, 0, nil
	case v == -2:
		return huffman.TokenMinusTwo, 0, nil
	case mag <= 6:
		return huffman.TokenCat2 + mag - 3, sign, nil
	case mag <= 8:
		return huffman.TokenCat3, sign<<1 | (mag - 7), nil
	case mag <= 12:
		return huffman.TokenCat4, sign<<2 | (mag - 9), nil
	case mag <= 20:
		return huffman.TokenCat5, sign<<3 | (mag - 13), nil
	case mag <= 36:
		return huffman.TokenCat6, sign<<4 | (mag - 21), nil
	case mag <= 68:
		return huffman.TokenCat7, sign<<5 | (mag - 37), nil
	case mag <= 580:
		return huffman.TokenCat8, sign<<9 | (mag - 69), nil
	}
	return 0, 0, fmt.Errorf("%w: %d", ErrValue, v)
}
