package vp3

import (
	"fmt"

	"github.com/deepteams/theora/internal/bitio"
)

// NumQIs is the number of quality indices.
const NumQIs = 64

// maxBaseMatrices bounds the base matrix count read from the setup header.
const maxBaseMatrices = 512

// QuantRanges describes how one (intra/inter, plane) pair interpolates
// base matrices across the quality index range. Sizes[i] quality indices
// span from base matrix Base[i] to Base[i+1].
type QuantRanges struct {
	Sizes []int
	Base  []int
}

// QuantTables holds the parsed quantization parameters and the expanded
// dequantization matrices.
type QuantTables struct {
	ACScale [NumQIs]uint16
	DCScale [NumQIs]uint16
	Bases   [][64]uint8
	Ranges  [2][3]QuantRanges

	// mats is indexed by intra/inter, plane, quality index and natural
	// coefficient order.
	mats [2][3][NumQIs][64]uint16
}

// Matrix returns the dequantization matrix in natural coefficient order.
// qti is 0 for intra and 1 for inter; pli is the plane.
func (q *QuantTables) Matrix(qti, pli, qi int) *[64]uint16 {
	return &q.mats[qti][pli][qi]
}

func readQuantTables(c *bitio.Cursor) (*QuantTables, error) {
	q := &QuantTables{}

	nbits := c.ReadBitsMSB(4) + 1
	for i := range q.ACScale {
		q.ACScale[i] = uint16(c.ReadBitsMSB(nbits))
	}
	nbits = c.ReadBitsMSB(4) + 1
	for i := range q.DCScale {
		q.DCScale[i] = uint16(c.ReadBitsMSB(nbits))
	}

	nbms := c.ReadBitsMSB(9) + 1
	if c.IsExhausted() || nbms > maxBaseMatrices {
		return nil, fmt.Errorf("%w: bad base matrix count", ErrBadHeader)
	}
	q.Bases = make([][64]uint8, nbms)
	for i := range q.Bases {
		for ci := range q.Bases[i] {
			q.Bases[i][ci] = uint8(c.ReadBitsMSB(8))
		}
	}

	bmBits := bitio.Ilog(uint32(nbms - 1))
	for qti := 0; qti < 2; qti++ {
		for pli := 0; pli < 3; pli++ {
			newqr := 1
			if qti > 0 || pli > 0 {
				newqr = c.ReadBitMSB()
			}
			if newqr == 0 {
				// Copy the previous set, or with the repeat flag the
				// same plane of the intra set.
				src := qti*3 + pli - 1
				if qti > 0 && c.ReadBitMSB() == 1 {
					src = (qti-1)*3 + pli
				}
				q.Ranges[qti][pli] = q.Ranges[src/3][src%3]
				continue
			}

			var r QuantRanges
			bmi := c.ReadBitsMSB(bmBits)
			if bmi < 0 || bmi >= nbms {
				return nil, fmt.Errorf("%w: base matrix index %d", ErrBadHeader, bmi)
			}
			r.Base = append(r.Base, bmi)
			qi := 0
			for qi < NumQIs-1 {
				size := c.ReadBitsMSB(bitio.Ilog(uint32(NumQIs-2-qi))) + 1
				qi += size
				bmi = c.ReadBitsMSB(bmBits)
				if c.IsExhausted() || bmi >= nbms {
					return nil, fmt.Errorf("%w: bad quant range", ErrBadHeader)
				}
				r.Sizes = append(r.Sizes, size)
				r.Base = append(r.Base, bmi)
			}
			if qi > NumQIs-1 {
				return nil, fmt.Errorf("%w: quant ranges overrun", ErrBadHeader)
			}
			q.Ranges[qti][pli] = r
		}
	}
	if c.IsExhausted() {
		return nil, fmt.Errorf("%w: truncated quant tables", ErrBadHeader)
	}

	for qti := 0; qti < 2; qti++ {
		for pli := 0; pli < 3; pli++ {
			for qi := 0; qi < NumQIs; qi++ {
				q.buildMatrix(qti, pli, qi)
			}
		}
	}
	return q, nil
}

// quantMin is the smallest quantizer per intra/inter and DC/AC.
var quantMin = [2][2]int{{16, 8}, {32, 16}}

// buildMatrix interpolates the base matrices bracketing qi and applies the
// DC or AC scale.
func (q *QuantTables) buildMatrix(qti, pli, qi int) {
	r := &q.Ranges[qti][pli]
	qri, start := 0, 0
	for qri < len(r.Sizes)-1 && qi > start+r.Sizes[qri] {
		start += r.Sizes[qri]
		qri++
	}
	size := r.Sizes[qri]
	end := start + size
	b0 := &q.Bases[r.Base[qri]]
	b1 := &q.Bases[r.Base[qri+1]]

	m := &q.mats[qti][pli][qi]
	for ci := 0; ci < 64; ci++ {
		bm := (2*(end-qi)*int(b0[ci]) + 2*(qi-start)*int(b1[ci]) + size) / (2 * size)
		scale, qmin := int(q.ACScale[qi]), quantMin[qti][1]
		if ci == 0 {
			scale, qmin = int(q.DCScale[qi]), quantMin[qti][0]
		}
		v := min(scale*bm/100*4, 4096)
		m[ci] = uint16(max(v, qmin))
	}
}
