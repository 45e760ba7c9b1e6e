package theora

import (
	"image"

	"github.com/deepteams/theora/internal/vp3"
)

// Plane is one plane of a decoded frame. The codec stores rows bottom-up,
// so Stride is negative: Data[Offset] is the top-left pixel and row y
// starts at Offset + y*Stride.
type Plane struct {
	Data   []byte
	Width  int
	Height int
	Stride int
	Offset int
}

// Row returns row y of the plane, counting from the top.
func (p *Plane) Row(y int) []byte {
	off := p.Offset + y*p.Stride
	return p.Data[off : off+p.Width]
}

// Frame is one decoded frame. Its planes alias the decoder's reference
// buffers and are only valid until the next frame is decoded from the same
// stream; YCbCr returns a copy.
type Frame struct {
	// Planes holds Y, Cb and Cr at the coded frame size.
	Planes      [3]Plane
	PixelFormat PixelFormat

	// Picture region, measured from the top-left corner of the coded frame.
	PicX, PicY          int
	PicWidth, PicHeight int

	Serial   uint32  // logical stream the frame was read from
	Granule  int64   // granule position after this frame
	Time     float64 // presentation time in seconds
	Number   int64   // zero-based frame number
	KeyFrame bool
	Dropped  bool // the packet was empty and repeats the previous frame
}

// setPlanes points the frame at the planes of a reconstructed buffer.
func (f *Frame) setPlanes(fb *vp3.FrameBuffer) {
	for pli := range fb.Planes {
		p := &fb.Planes[pli]
		f.Planes[pli] = Plane{
			Data:   p.Data,
			Width:  p.Width,
			Height: p.Height,
			Stride: -p.Stride,
			Offset: p.Offset + (p.Height-1)*p.Stride,
		}
	}
}

func subsampleRatio(pf PixelFormat) image.YCbCrSubsampleRatio {
	switch pf {
	case PF420:
		return image.YCbCrSubsampleRatio420
	case PF422:
		return image.YCbCrSubsampleRatio422
	}
	return image.YCbCrSubsampleRatio444
}

// YCbCr copies the picture region into a new top-down image.
func (f *Frame) YCbCr() *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, f.PicWidth, f.PicHeight), subsampleRatio(f.PixelFormat))
	for y := 0; y < f.PicHeight; y++ {
		row := f.Planes[0].Row(f.PicY + y)
		copy(img.Y[y*img.YStride:], row[f.PicX:f.PicX+f.PicWidth])
	}

	xs, ys := f.PixelFormat.ChromaShift()
	cw := (f.PicWidth + 1<<xs - 1) >> xs
	ch := (f.PicHeight + 1<<ys - 1) >> ys
	cx, cy := f.PicX>>xs, f.PicY>>ys
	for y := 0; y < ch; y++ {
		off := y * img.CStride
		cb, cr := f.Planes[1].Row(cy+y), f.Planes[2].Row(cy+y)
		copy(img.Cb[off:off+cw], cb[cx:])
		copy(img.Cr[off:off+cw], cr[cx:])
	}
	return img
}
