// Package vp3 decodes the video payload of a Theora stream: the three
// header packets and the frame packets that follow them.
//
// Frames are reconstructed into bottom-up planes with a replicated border.
// A Decoder keeps the last and golden reference frames; a packet that fails
// to decode leaves both untouched.
package vp3

import (
	"fmt"

	"github.com/deepteams/theora/internal/bitio"
	"github.com/deepteams/theora/internal/dsp"
	"github.com/deepteams/theora/internal/pool"
)

// fragment is the per-frame state of one 8x8 block.
type fragment struct {
	coded bool
	mode  Mode
	qii   uint8 // index into the frame's quality indices
	mv    MV
	ci    uint8 // next zig-zag position to decode; 64 once complete
	nz    uint8 // one past the last stored coefficient
}

// Decoder decodes the frame packets of one stream.
type Decoder struct {
	info  Info
	setup *Setup
	geom  *Geometry

	hdr     frameHeader
	frags   []fragment
	coeffs  []pool.Block // zig-zag order, meaningful for coded fragments
	coded   []FragIndex  // coded fragments in coding order
	mbModes []Mode
	mbCoded []bool

	sbPartial []bool
	sbFull    []bool

	last, golden *FrameBuffer
	limits       [128]*dsp.Limits

	granule int64
	frames  int64
	lastKey bool
	cursor  bitio.Cursor
}

// NewDecoder creates a decoder for a stream whose headers are complete.
func NewDecoder(h *Headers) (*Decoder, error) {
	if !h.Ready() {
		return nil, ErrNotReady
	}
	g, err := NewGeometry(h.Info.Width, h.Info.Height, h.Info.PixelFormat)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		info:      h.Info,
		setup:     h.Setup,
		geom:      g,
		frags:     make([]fragment, g.NumFrags),
		coeffs:    pool.GetBlocks(g.NumFrags),
		coded:     make([]FragIndex, 0, g.NumFrags),
		mbModes:   make([]Mode, len(g.MBs)),
		mbCoded:   make([]bool, len(g.MBs)),
		sbPartial: make([]bool, g.NumSBs),
		sbFull:    make([]bool, g.NumSBs),
		granule:   -1,
	}, nil
}

// Info returns the identification header the decoder was created with.
func (d *Decoder) Info() *Info { return &d.info }

// Geometry returns the frame layout.
func (d *Decoder) Geometry() *Geometry { return d.geom }

// Frame returns the most recently decoded frame, or nil before the first
// key frame. The buffer stays valid until the next call to DecodePacket.
func (d *Decoder) Frame() *FrameBuffer { return d.last }

// KeyFrame reports whether the most recently decoded frame was a key frame.
func (d *Decoder) KeyFrame() bool { return d.lastKey }

// Frames returns the number of frames decoded, including repeated ones.
func (d *Decoder) Frames() int64 { return d.frames }

// DecodePacket decodes one data packet. A zero-length packet repeats the
// previous frame. granule is the packet's granule position from the
// container, or -1 when unknown.
func (d *Decoder) DecodePacket(packet []byte, granule int64) error {
	if len(packet) == 0 {
		d.advanceGranule(false, granule)
		d.frames++
		return nil
	}
	if packet[0]&0x80 != 0 {
		return fmt.Errorf("%w: header packet in frame data", ErrBadPacket)
	}

	c := &d.cursor
	c.Reset(packet)
	c.Skip(1)
	d.hdr = readFrameHeader(c)
	if !d.hdr.key && d.last == nil {
		return fmt.Errorf("%w: inter frame before the first key frame", ErrBadPacket)
	}

	d.beginFrame()
	d.decodeBlockMap(c)
	d.decodeModes(c)
	d.decodeMVs(c)
	d.decodeBlockQIs(c)
	d.decodeTokens(c)
	if err := c.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadPacket, err)
	}

	cur := newFrameBuffer(d.geom).retain()
	d.reconstruct(cur)

	d.last.release()
	d.last = cur
	if d.hdr.key {
		d.golden.release()
		d.golden = cur.retain()
	}
	d.lastKey = d.hdr.key
	d.advanceGranule(d.hdr.key, granule)
	d.frames++
	return nil
}

// Close releases the reference frames to the buffer pool. The decoder must
// not be used afterwards.
func (d *Decoder) Close() {
	d.last.release()
	d.golden.release()
	d.last, d.golden = nil, nil
	pool.PutBlocks(d.coeffs)
	d.coeffs = nil
}
