package vp3

import "github.com/deepteams/theora/internal/pool"

// Border is the number of replicated pixels around every plane. Motion
// vectors reach at most 31 half-pixels outside a fragment, so predictions
// never read past it.
const Border = 16

// PlaneBuffer is one plane of a reconstructed frame. Rows are stored
// bottom-up: Data[Offset] is the bottom-left pixel and row y starts at
// Offset + y*Stride.
type PlaneBuffer struct {
	Data   []byte
	Width  int
	Height int
	Stride int
	Offset int
}

// Row returns row y (0 at the bottom) without its border.
func (p *PlaneBuffer) Row(y int) []byte {
	off := p.Offset + y*p.Stride
	return p.Data[off : off+p.Width]
}

// FrameBuffer holds the three planes of a reconstructed frame. Buffers are
// shared between the last and golden references and recycled through the
// pool once neither holds them.
type FrameBuffer struct {
	Planes [3]PlaneBuffer

	buf  []byte
	refs int
}

func newFrameBuffer(g *Geometry) *FrameBuffer {
	total := 0
	for _, p := range g.Planes {
		total += (p.Width + 2*Border) * (p.Height + 2*Border)
	}
	f := &FrameBuffer{buf: pool.Get(total)}
	base := 0
	for pli, p := range g.Planes {
		stride := p.Width + 2*Border
		size := stride * (p.Height + 2*Border)
		f.Planes[pli] = PlaneBuffer{
			Data:   f.buf[base : base+size : base+size],
			Width:  p.Width,
			Height: p.Height,
			Stride: stride,
			Offset: Border*stride + Border,
		}
		base += size
	}
	return f
}

func (f *FrameBuffer) retain() *FrameBuffer {
	f.refs++
	return f
}

func (f *FrameBuffer) release() {
	if f == nil {
		return
	}
	f.refs--
	if f.refs == 0 {
		pool.Put(f.buf)
		f.buf = nil
		for i := range f.Planes {
			f.Planes[i].Data = nil
		}
	}
}

// extendBorders replicates the outermost pixels of each plane into its
// border.
func (f *FrameBuffer) extendBorders() {
	for i := range f.Planes {
		p := &f.Planes[i]
		for y := 0; y < p.Height; y++ {
			row := p.Offset + y*p.Stride
			l, r := p.Data[row], p.Data[row+p.Width-1]
			for x := 1; x <= Border; x++ {
				p.Data[row-x] = l
				p.Data[row+p.Width-1+x] = r
			}
		}
		bottom := p.Data[p.Offset-Border : p.Offset-Border+p.Stride]
		topOff := p.Offset + (p.Height-1)*p.Stride - Border
		top := p.Data[topOff : topOff+p.Stride]
		for y := 1; y <= Border; y++ {
			copy(p.Data[p.Offset-Border-y*p.Stride:], bottom)
			copy(p.Data[topOff+y*p.Stride:], top)
		}
	}
}
