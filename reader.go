package theora

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/deepteams/theora/internal/ogg"
	"github.com/deepteams/theora/internal/vp3"
)

// Stats counts what a Reader has seen so far.
type Stats struct {
	Pages    int64 // pages accepted by the framing layer
	Resyncs  int64 // times page sync was lost
	Skipped  int64 // bytes discarded while resynchronising
	Gaps     int64 // page sequence discontinuities across all streams
	Rejected int64 // packets that failed to decode
	Frames   int64 // frames returned
	Trailing int64 // bytes at end of input that formed no page
	Streams  int   // logical streams seen
	Theora   int   // logical streams identified as Theora

	// LastErr is the most recent recoverable error, or nil.
	LastErr error
}

type streamKind int

const (
	kindUnknown streamKind = iota // first packet not seen yet
	kindTheora
	kindOther  // not a Theora stream, packets are discarded
	kindFailed // header failure, packets are discarded
)

// stream is one logical stream, created on the first page with its serial
// number and kept for the lifetime of the Reader.
type stream struct {
	serial uint32
	state  *ogg.StreamState
	kind   streamKind
	dec    *Decoder
}

// Reader demultiplexes an Ogg byte stream and decodes the frames of every
// Theora stream in it. Other logical streams are ignored.
type Reader struct {
	src  io.Reader
	opts Options
	log  *slog.Logger

	sync    *ogg.SyncState
	page    ogg.Page
	pkt     ogg.Packet
	streams map[uint32]*stream
	order   []*stream
	cur     *stream // stream whose packets are being drained

	stats Stats
	eof   bool
	err   error // sticky read error
}

// NewReader returns a Reader pulling data from src. opts may be nil.
func NewReader(src io.Reader, opts *Options) *Reader {
	if opts == nil {
		opts = DefaultOptions()
	}
	r := &Reader{
		src:     src,
		opts:    *opts,
		log:     opts.logger(),
		sync:    ogg.NewSyncState(),
		streams: make(map[uint32]*stream),
	}
	r.sync.SetIgnoreChecksum(opts.IgnoreChecksum)
	return r
}

// ReadFrame returns the next decoded frame from any Theora stream. The frame
// is valid until the next call. At the end of the input it returns io.EOF,
// or ErrNoStream if no Theora stream was found.
//
// Recoverable problems are logged, counted in Stats and skipped, unless
// Options.Strict is set, in which case they are returned and reading may
// continue.
func (r *Reader) ReadFrame() (*Frame, error) {
	return r.pump(nil)
}

// Info reads until the headers of the first Theora stream are complete and
// returns its identification header. Frames decoded meanwhile from other
// streams are dropped.
func (r *Reader) Info() (*Info, error) {
	d, err := r.Decoder()
	if err != nil {
		return nil, err
	}
	return d.Info(), nil
}

// Decoder reads until the headers of the first Theora stream are complete
// and returns that stream's decoder, giving access to its comment header.
func (r *Reader) Decoder() (*Decoder, error) {
	ready := func() *Decoder {
		for _, s := range r.order {
			if s.kind == kindTheora && s.dec.Ready() {
				return s.dec
			}
		}
		return nil
	}
	for {
		if d := ready(); d != nil {
			return d, nil
		}
		_, err := r.pump(func() bool { return ready() != nil })
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoStream
			}
			if !r.opts.Strict || !recoverable(err) {
				return nil, err
			}
		}
	}
}

// Stats returns the counters accumulated so far.
func (r *Reader) Stats() Stats {
	s := r.stats
	s.Skipped = r.sync.Skipped()
	s.Streams = len(r.order)
	return s
}

// Close releases the decoders of all streams.
func (r *Reader) Close() error {
	for _, s := range r.order {
		if s.dec != nil {
			s.dec.Close()
		}
	}
	return nil
}

func recoverable(err error) bool {
	return errors.Is(err, ErrStreamLoss) || errors.Is(err, ErrBadPacket) ||
		errors.Is(err, ErrBadHeader) || errors.Is(err, ErrNotFormat) ||
		errors.Is(err, ErrVersion) || errors.Is(err, ErrNotReady) ||
		errors.Is(err, vp3.ErrGeometry)
}

// pump drains packets and pages until a frame is decoded, stop reports
// true before the next packet, or the input ends.
func (r *Reader) pump(stop func() bool) (*Frame, error) {
	for {
		if stop != nil && stop() {
			return nil, nil
		}
		if r.cur != nil {
			f, err := r.nextPacket()
			if err != nil || f != nil {
				return f, err
			}
			continue
		}
		if err := r.nextPage(); err != nil {
			return nil, err
		}
	}
}

// nextPacket handles one packet of the current stream. It clears r.cur
// once the stream needs another page.
func (r *Reader) nextPacket() (*Frame, error) {
	s := r.cur
	switch s.state.PacketOut(&r.pkt) {
	case ogg.StatusNeedMore:
		r.cur = nil
		return nil, nil
	case ogg.StatusHole:
		r.stats.Gaps++
		err := fmt.Errorf("%w: serial %08x", ErrStreamLoss, s.serial)
		r.stats.LastErr = err
		r.log.Warn("stream gap", "serial", s.serial)
		if r.opts.Strict && s.kind == kindTheora {
			return nil, err
		}
		return nil, nil
	}

	if s.kind == kindUnknown {
		if vp3.Identify(r.pkt.Data) {
			s.kind = kindTheora
			s.dec = NewDecoder()
			r.stats.Theora++
			r.log.Debug("theora stream", "serial", s.serial)
		} else {
			s.kind = kindOther
			r.log.Debug("ignoring stream", "serial", s.serial)
		}
	}
	if s.kind != kindTheora {
		return nil, nil
	}

	ready := s.dec.Ready()
	f, err := s.dec.DecodePacket(r.pkt.Data, r.pkt.BOS, r.pkt.GranulePos)
	if err != nil {
		r.stats.Rejected++
		r.stats.LastErr = err
		if !ready {
			s.kind = kindFailed
			r.log.Warn("header failure, stream detached", "serial", s.serial, "err", err)
		} else {
			r.log.Warn("packet rejected", "serial", s.serial, "packet", r.pkt.PacketNo, "err", err)
		}
		if r.opts.Strict {
			return nil, err
		}
		return nil, nil
	}
	if f == nil {
		if !ready && s.dec.Ready() {
			info := s.dec.Info()
			r.log.Debug("headers complete", "serial", s.serial,
				"width", info.Width, "height", info.Height, "format", info.PixelFormat.String())
		}
		return nil, nil
	}
	f.Serial = s.serial
	r.stats.Frames++
	return f, nil
}

// nextPage submits the next page to its stream, reading from the source as
// needed. It sets r.cur to the stream the page belongs to.
func (r *Reader) nextPage() error {
	for {
		switch r.sync.PageOut(&r.page) {
		case ogg.StatusOK:
			r.stats.Pages++
			r.route()
			return nil
		case ogg.StatusHole:
			r.stats.Resyncs++
			r.stats.LastErr = r.sync.Err()
			r.log.Warn("ogg resync", "err", r.sync.Err(), "skipped", r.sync.Skipped())
			continue
		}
		if err := r.fill(); err != nil {
			return err
		}
	}
}

// route hands the current page to the stream of its serial number,
// creating the stream on first sight.
func (r *Reader) route() {
	serial := r.page.Serial()
	s, ok := r.streams[serial]
	if !ok {
		s = &stream{serial: serial, state: ogg.NewStreamState(serial)}
		r.streams[serial] = s
		r.order = append(r.order, s)
		r.log.Debug("new stream", "serial", serial, "bos", r.page.BOS())
	}
	if err := s.state.PageIn(&r.page); err != nil {
		r.stats.LastErr = err
		r.log.Warn("page rejected", "serial", serial, "err", err)
		return
	}
	r.log.Debug("page", "serial", serial, "seq", r.page.Sequence(),
		"granule", r.page.GranulePos(), "bytes", r.page.Len())
	r.cur = s
}

// fill reads more data from the source into the sync buffer.
func (r *Reader) fill() error {
	if r.err != nil {
		return r.err
	}
	if r.eof {
		if n := r.sync.Buffered(); n > 0 {
			r.stats.Trailing = int64(n)
			r.log.Warn("truncated page at end of input", "bytes", n)
		}
		if r.stats.Theora == 0 {
			r.err = ErrNoStream
		} else {
			r.err = io.EOF
		}
		return r.err
	}
	buf := r.sync.Buffer(r.opts.bufferSize())
	n, err := r.src.Read(buf)
	if werr := r.sync.Wrote(n); werr != nil {
		r.err = werr
		return werr
	}
	switch {
	case err == io.EOF:
		r.eof = true
	case err != nil:
		r.err = fmt.Errorf("theora: reading data: %w", err)
		return r.err
	}
	return nil
}
