package ogg

import (
	"encoding/binary"
	"io"
)

// Page is one framed unit of an Ogg stream. Header holds the fixed 27-byte
// header followed by the segment table; Body holds the concatenated segment
// data. Pages returned by SyncState alias its internal buffer and are valid
// until the next call that adds data to it.
type Page struct {
	Header []byte
	Body   []byte
}

// NewPage assembles a page from its fields and sets its checksum.
func NewPage(flags byte, granule int64, serial, seq uint32, lacing, body []byte) *Page {
	h := make([]byte, HeaderSize+len(lacing))
	copy(h, CapturePattern)
	h[5] = flags
	binary.LittleEndian.PutUint64(h[6:14], uint64(granule))
	binary.LittleEndian.PutUint32(h[14:18], serial)
	binary.LittleEndian.PutUint32(h[18:22], seq)
	h[26] = byte(len(lacing))
	copy(h[HeaderSize:], lacing)
	p := &Page{Header: h, Body: body}
	p.SetChecksum()
	return p
}

// Version returns the stream structure version (byte 4).
func (p *Page) Version() int { return int(p.Header[4]) }

// Flags returns the raw header flag byte.
func (p *Page) Flags() byte { return p.Header[5] }

// Continued reports whether the page begins with the tail of a packet.
func (p *Page) Continued() bool { return p.Header[5]&FlagContinued != 0 }

// BOS reports whether this is the first page of its logical stream.
func (p *Page) BOS() bool { return p.Header[5]&FlagBOS != 0 }

// EOS reports whether this is the last page of its logical stream.
func (p *Page) EOS() bool { return p.Header[5]&FlagEOS != 0 }

// GranulePos returns the granule position of the last packet completed on
// this page, or -1 if no packet completes here.
func (p *Page) GranulePos() int64 {
	return int64(binary.LittleEndian.Uint64(p.Header[6:14]))
}

// Serial returns the logical stream serial number.
func (p *Page) Serial() uint32 {
	return binary.LittleEndian.Uint32(p.Header[14:18])
}

// Sequence returns the page sequence number within its logical stream.
func (p *Page) Sequence() uint32 {
	return binary.LittleEndian.Uint32(p.Header[18:22])
}

// Lacing returns the segment table.
func (p *Page) Lacing() []byte {
	return p.Header[HeaderSize : HeaderSize+int(p.Header[26])]
}

// Packets returns the number of packets that complete on this page.
func (p *Page) Packets() int {
	n := 0
	for _, v := range p.Lacing() {
		if v < 255 {
			n++
		}
	}
	return n
}

// Checksum returns the CRC stored in the header.
func (p *Page) Checksum() uint32 {
	return binary.LittleEndian.Uint32(p.Header[22:26])
}

// Verify reports whether the stored CRC matches the page contents.
func (p *Page) Verify() bool {
	return pageChecksum(p.Header, p.Body) == p.Checksum()
}

// SetChecksum computes the page CRC and stores it in the header.
func (p *Page) SetChecksum() {
	binary.LittleEndian.PutUint32(p.Header[22:26], pageChecksum(p.Header, p.Body))
}

// Len returns the encoded size of the page.
func (p *Page) Len() int { return len(p.Header) + len(p.Body) }

// Bytes returns a fresh copy of the encoded page.
func (p *Page) Bytes() []byte {
	out := make([]byte, 0, p.Len())
	out = append(out, p.Header...)
	return append(out, p.Body...)
}

// WriteTo writes the encoded page to w.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Header)
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(p.Body)
	return int64(n + m), err
}
