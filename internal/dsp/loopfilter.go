package dsp

// Deblocking loop filter. Each edge sample pair is corrected by a bounded
// response of the 4-tap gradient across the edge.

// Limits holds the filter response for one limit value L.
type Limits struct {
	L   int
	tab [256]int16 // response for R in [-127, 128], indexed R+127
}

// NewLimits precomputes the response table for limit l.
func NewLimits(l int) *Limits {
	lim := &Limits{L: l}
	for i := range lim.tab {
		lim.tab[i] = int16(Lflim(i-127, l))
	}
	return lim
}

// Lflim is the filter response: linear in R below L, tapering back to zero
// at 2L.
func Lflim(r, l int) int {
	switch {
	case r <= -2*l:
		return 0
	case r <= -l:
		return -r - 2*l
	case r < l:
		return r
	case r < 2*l:
		return 2*l - r
	}
	return 0
}

// filterPair corrects the two samples either side of an edge. step is the
// distance between consecutive samples across the edge.
func filterPair(buf []byte, off, step int, lim *Limits) {
	p0 := int(buf[off-2*step])
	p1 := int(buf[off-step])
	p2 := int(buf[off])
	p3 := int(buf[off+step])
	r := (p0 - 3*p1 + 3*p2 - p3 + 4) >> 3
	f := int(lim.tab[r+127])
	buf[off-step] = Kclip1(p1 + f)
	buf[off] = Kclip1(p2 - f)
}

func filterVertical(buf []byte, off, stride int, lim *Limits) {
	for r := 0; r < 8; r++ {
		filterPair(buf, off, 1, lim)
		off += stride
	}
}

func filterHorizontal(buf []byte, off, stride int, lim *Limits) {
	for c := 0; c < 8; c++ {
		filterPair(buf, off+c, stride, lim)
	}
}
