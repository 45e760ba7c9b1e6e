package dsp

func copy8x8(dst []byte, doff, dstride int, src []byte, soff, sstride int) {
	for r := 0; r < 8; r++ {
		copy(dst[doff:doff+8], src[soff:soff+8])
		doff += dstride
		soff += sstride
	}
}

func avg8x8(dst []byte, doff, dstride int, src []byte, soff1, soff2, sstride int) {
	for r := 0; r < 8; r++ {
		d := dst[doff : doff+8]
		a := src[soff1 : soff1+8]
		b := src[soff2 : soff2+8]
		for c := range d {
			d[c] = uint8((int(a[c]) + int(b[c])) >> 1)
		}
		doff += dstride
		soff1 += sstride
		soff2 += sstride
	}
}

// MotionOffsets splits a motion vector component into whole-pixel offsets.
// frac is the number of fractional steps per pixel (2 for half-pel, 4 for
// quarter-pel). The integer part truncates toward zero; a fractional
// remainder yields a second offset one pixel further in the vector's
// direction, and the two predictors are averaged.
func MotionOffsets(mv, frac int) (a, b int) {
	a = mv / frac
	b = a
	if mv%frac != 0 {
		if mv > 0 {
			b++
		} else {
			b--
		}
	}
	return a, b
}
