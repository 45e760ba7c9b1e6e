package theora

import (
	"fmt"

	"github.com/deepteams/theora/internal/vp3"
)

// Decoder decodes the packets of a single logical Theora stream: the three
// header packets first, then one frame per data packet. It is not safe for
// concurrent use.
type Decoder struct {
	hdr     vp3.Headers
	dec     *vp3.Decoder
	frame   Frame
	packets int64
}

// NewDecoder returns a decoder awaiting the identification header.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Ready reports whether all three header packets have been decoded.
func (d *Decoder) Ready() bool { return d.dec != nil }

// Info returns the identification header. It is zero until that header has
// been decoded.
func (d *Decoder) Info() *Info { return &d.hdr.Info }

// Comment returns the comment header.
func (d *Decoder) Comment() *Comment { return &d.hdr.Comment }

// DecodePacket consumes one packet. bos marks the first packet of the
// logical stream; granule is the container's granule position for the
// packet, or -1 if it carries none.
//
// Header packets return a nil frame. A data packet returns the decoded
// frame, which is valid until the next call. An empty data packet repeats
// the previous frame; before the first key frame it returns a nil frame.
//
// A data packet that fails with ErrBadPacket leaves the reference frames
// untouched and decoding may continue with the next packet. A header
// failure is fatal to the stream.
func (d *Decoder) DecodePacket(data []byte, bos bool, granule int64) (*Frame, error) {
	n := d.packets
	d.packets++

	if d.dec == nil {
		if !vp3.IsHeader(data) {
			return nil, fmt.Errorf("theora: packet %d: %w", n, ErrNotReady)
		}
		if err := d.hdr.Decode(data, bos); err != nil {
			return nil, fmt.Errorf("theora: header packet %d: %w", n, err)
		}
		if d.hdr.Ready() {
			dec, err := vp3.NewDecoder(&d.hdr)
			if err != nil {
				return nil, fmt.Errorf("theora: setting up decoder: %w", err)
			}
			d.dec = dec
		}
		return nil, nil
	}

	if vp3.IsHeader(data) {
		// Extra header packets after the setup header are ignored.
		if err := d.hdr.Decode(data, bos); err != nil {
			return nil, fmt.Errorf("theora: header packet %d: %w", n, err)
		}
		return nil, nil
	}
	if err := d.dec.DecodePacket(data, granule); err != nil {
		return nil, fmt.Errorf("theora: packet %d: %w", n, err)
	}
	fb := d.dec.Frame()
	if fb == nil {
		return nil, nil
	}

	info := &d.hdr.Info
	f := &d.frame
	f.setPlanes(fb)
	f.PixelFormat = info.PixelFormat
	f.PicX, f.PicY = info.PicX, info.PicY
	f.PicWidth, f.PicHeight = info.PicWidth, info.PicHeight
	f.Granule = d.dec.Granule()
	f.Time = d.dec.GranuleTime(f.Granule)
	f.Number = vp3.FrameIndex(f.Granule, info.KeyframeGranuleShift)
	f.Dropped = len(data) == 0
	f.KeyFrame = !f.Dropped && d.dec.KeyFrame()
	return f, nil
}

// Close releases the reference frames. The decoder must not be used
// afterwards.
func (d *Decoder) Close() {
	if d.dec != nil {
		d.dec.Close()
		d.dec = nil
	}
}
