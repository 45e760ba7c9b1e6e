package dsp

// 8-point inverse DCT of the VP3 family. Multipliers are cos(k*pi/16)
// scaled by 2^16.
const (
	cC4 = 46341
	cC6 = 25080
	cS6 = 60547
	cC7 = 12785
	cS7 = 64277
	cC3 = 54491
	cS3 = 36410
)

// idct1D computes one 8-point inverse transform. in and out are read and
// written with the given strides so the same routine serves rows and
// columns. Sums feeding a C4 multiply wrap to 16 bits first.
func idct1D(in []int16, istep int, out []int, ostep int) {
	y0 := int(in[0])
	y1 := int(in[istep])
	y2 := int(in[2*istep])
	y3 := int(in[3*istep])
	y4 := int(in[4*istep])
	y5 := int(in[5*istep])
	y6 := int(in[6*istep])
	y7 := int(in[7*istep])

	t0 := cC4 * int(int16(y0+y4)) >> 16
	t1 := cC4 * int(int16(y0-y4)) >> 16
	t2 := (cC6 * y2 >> 16) - (cS6 * y6 >> 16)
	t3 := (cS6 * y2 >> 16) + (cC6 * y6 >> 16)
	t4 := (cC7 * y1 >> 16) - (cS7 * y7 >> 16)
	t5 := (cC3 * y5 >> 16) - (cS3 * y3 >> 16)
	t6 := (cS3 * y5 >> 16) + (cC3 * y3 >> 16)
	t7 := (cS7 * y1 >> 16) + (cC7 * y7 >> 16)

	t4, t5 = t4+t5, cC4*int(int16(t4-t5))>>16
	t7, t6 = t7+t6, cC4*int(int16(t7-t6))>>16
	t0, t3 = t0+t3, t0-t3
	t1, t2 = t1+t2, t1-t2
	t6, t5 = t6+t5, t6-t5

	out[0] = t0 + t7
	out[ostep] = t1 + t6
	out[2*ostep] = t2 + t5
	out[3*ostep] = t3 + t4
	out[4*ostep] = t3 - t4
	out[5*ostep] = t2 - t5
	out[6*ostep] = t1 - t6
	out[7*ostep] = t0 - t7
}

// idct8x8 runs the row pass, truncating each result to 16 bits, then the
// column pass with final rounding (x+8)>>4.
func idct8x8(in *[64]int16, out *[64]int16) {
	var tmp [64]int16
	var row [8]int
	for r := 0; r < 8; r++ {
		idct1D(in[r*8:], 1, row[:], 1)
		for c := 0; c < 8; c++ {
			tmp[r*8+c] = int16(row[c])
		}
	}
	var col [8]int
	for c := 0; c < 8; c++ {
		idct1D(tmp[c:], 8, col[:], 1)
		for r := 0; r < 8; r++ {
			out[r*8+c] = int16((col[r] + 8) >> 4)
		}
	}
}

// idctDC matches idct8x8 on a DC-only block.
func idctDC(dc int16) int16 {
	v := int16(cC4 * int(dc) >> 16)
	return int16((cC4*int(v)>>16 + 8) >> 4)
}

// putIntra stores an intra residual around the mid-grey level.
func putIntra(dst []byte, off, stride int, res *[64]int16) {
	for r := 0; r < 8; r++ {
		d := dst[off : off+8]
		for c := 0; c < 8; c++ {
			d[c] = Clip8b(int(res[r*8+c]) + 128)
		}
		off += stride
	}
}

// addInter adds a residual to a predicted block in place.
func addInter(dst []byte, off, stride int, res *[64]int16) {
	for r := 0; r < 8; r++ {
		d := dst[off : off+8]
		for c := 0; c < 8; c++ {
			d[c] = Clip8b(int(d[c]) + int(res[r*8+c]))
		}
		off += stride
	}
}
