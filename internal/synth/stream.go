package synth

import (
	"bytes"
	"io"

	"github.com/deepteams/theora/internal/ogg"
)

// Packets returns the header packets followed by the data packets of
// frames. A nil frame produces a zero-length packet, which repeats the
// previous frame.
func (e *Encoder) Packets(frames []*Frame) ([][]byte, error) {
	packets := e.Headers()
	for _, f := range frames {
		if f == nil {
			packets = append(packets, []byte{})
			continue
		}
		p, err := e.EncodeFrame(f)
		if err != nil {
			return nil, err
		}
		packets = append(packets, p)
	}
	return packets, nil
}

// Granules returns the granule position of each data packet for the given
// frame kinds, counting from zero at the first frame.
func (e *Encoder) Granules(frames []*Frame) []int64 {
	shift := uint(e.cfg.KeyframeGranuleShift)
	out := make([]int64, len(frames))
	var keyframe, since int64
	for i, f := range frames {
		switch {
		case i == 0:
		case f != nil && f.Key:
			keyframe += since + 1
			since = 0
		default:
			since++
		}
		out[i] = keyframe<<shift | since
	}
	return out
}

// Stream lays out a complete single-stream Ogg file: the identification
// header alone on the first page, the other headers on the next, then the
// frames with their granule positions. segmentLimit caps the segment table
// of each page; zero means the container maximum.
func (e *Encoder) Stream(serial uint32, segmentLimit int, frames []*Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.WriteStream(&buf, serial, segmentLimit, frames); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteStream writes the pages Stream would return to w.
func (e *Encoder) WriteStream(w io.Writer, serial uint32, segmentLimit int, frames []*Frame) error {
	packets, err := e.Packets(frames)
	if err != nil {
		return err
	}
	pw := ogg.NewPageWriter(w, serial)
	pw.SegmentLimit = segmentLimit

	if err := pw.WritePacket(packets[0], 0); err != nil {
		return err
	}
	if err := pw.Flush(); err != nil {
		return err
	}
	for _, p := range packets[1:3] {
		if err := pw.WritePacket(p, 0); err != nil {
			return err
		}
	}
	if err := pw.Flush(); err != nil {
		return err
	}

	granules := e.Granules(frames)
	for i, p := range packets[3:] {
		if err := pw.WritePacket(p, granules[i]); err != nil {
			return err
		}
	}
	return pw.Close()
}
