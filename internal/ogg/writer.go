package ogg

import "io"

// PageWriter lays packets of one logical stream out into pages and writes
// them to an io.Writer. Pages are emitted when the segment table fills up,
// on Flush, and on Close.
type PageWriter struct {
	w      io.Writer
	serial uint32
	seq    uint32

	lacing   []byte
	granules []int64
	body     []byte

	continued bool // next page starts inside a packet
	eos       bool

	// SegmentLimit caps the segment table of each page. Zero means
	// MaxSegments. Smaller values force packets to span pages.
	SegmentLimit int
}

// NewPageWriter returns a PageWriter for the stream with the given serial.
func NewPageWriter(w io.Writer, serial uint32) *PageWriter {
	return &PageWriter{w: w, serial: serial}
}

func (pw *PageWriter) limit() int {
	if pw.SegmentLimit <= 0 || pw.SegmentLimit > MaxSegments {
		return MaxSegments
	}
	return pw.SegmentLimit
}

// WritePacket queues one packet. granule is stored on the page the packet
// completes on.
func (pw *PageWriter) WritePacket(data []byte, granule int64) error {
	if pw.eos {
		return io.ErrClosedPipe
	}
	if len(data) > 1<<24 {
		return ErrPacketSize
	}
	n := len(data)
	for ; n >= 255; n -= 255 {
		pw.lacing = append(pw.lacing, 255)
		pw.granules = append(pw.granules, -1)
	}
	pw.lacing = append(pw.lacing, byte(n))
	pw.granules = append(pw.granules, granule)
	pw.body = append(pw.body, data...)

	for len(pw.lacing) >= pw.limit() {
		if err := pw.emit(pw.limit(), false); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes all queued segments as pages.
func (pw *PageWriter) Flush() error {
	for len(pw.lacing) > 0 {
		n := len(pw.lacing)
		if n > pw.limit() {
			n = pw.limit()
		}
		if err := pw.emit(n, false); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes queued data and marks the final page end-of-stream.
func (pw *PageWriter) Close() error {
	if pw.eos {
		return nil
	}
	for len(pw.lacing) > pw.limit() {
		if err := pw.emit(pw.limit(), false); err != nil {
			return err
		}
	}
	pw.eos = true
	return pw.emit(len(pw.lacing), true)
}

// emit writes the first n queued segments as one page.
func (pw *PageWriter) emit(n int, last bool) error {
	var flags byte
	if pw.continued {
		flags |= FlagContinued
	}
	if pw.seq == 0 {
		flags |= FlagBOS
	}
	if last {
		flags |= FlagEOS
	}

	size := 0
	granule := int64(-1)
	for i := 0; i < n; i++ {
		size += int(pw.lacing[i])
		if pw.lacing[i] < 255 {
			granule = pw.granules[i]
		}
	}

	p := NewPage(flags, granule, pw.serial, pw.seq, pw.lacing[:n], pw.body[:size])
	if _, err := p.WriteTo(pw.w); err != nil {
		return err
	}

	pw.seq++
	pw.continued = n > 0 && pw.lacing[n-1] == 255
	pw.lacing = pw.lacing[:copy(pw.lacing, pw.lacing[n:])]
	pw.granules = pw.granules[:copy(pw.granules, pw.granules[n:])]
	pw.body = pw.body[:copy(pw.body, pw.body[size:])]
	return nil
}
