package vp3

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/deepteams/theora/internal/bitio"
	"github.com/deepteams/theora/internal/huffman"
)

// Bitstream version implemented by this decoder. Streams with a different
// major version, or a newer minor version, are rejected.
const (
	VersionMajor    = 3
	VersionMinor    = 2
	VersionSubminor = 1
)

// Header packet type flags.
const (
	HeaderInfo    = 0x80
	HeaderComment = 0x81
	HeaderSetup   = 0x82
)

// Magic follows the type flag in every header packet.
const Magic = "theora"

// IsHeader reports whether a packet is a header packet (top bit of the
// first byte set). Data packets always start with a zero bit.
func IsHeader(packet []byte) bool {
	return len(packet) > 0 && packet[0]&0x80 != 0
}

// Identify reports whether a packet is this codec's identification header.
// It is used to sniff the first packet of a logical stream.
func Identify(packet []byte) bool {
	return len(packet) >= 1+len(Magic) && packet[0] == HeaderInfo &&
		bytes.EqualFold(packet[1:1+len(Magic)], []byte(Magic))
}

// PixelFormat is the chroma subsampling mode.
type PixelFormat uint8

const (
	PF420      PixelFormat = 0 // chroma halved in both directions
	PFReserved PixelFormat = 1
	PF422      PixelFormat = 2 // chroma halved horizontally
	PF444      PixelFormat = 3 // full-resolution chroma
)

// String returns the conventional name of the format.
func (pf PixelFormat) String() string {
	switch pf {
	case PF420:
		return "4:2:0"
	case PF422:
		return "4:2:2"
	case PF444:
		return "4:4:4"
	}
	return fmt.Sprintf("PixelFormat(%d)", uint8(pf))
}

// ChromaShift returns the horizontal and vertical chroma decimation as
// right-shift amounts.
func (pf PixelFormat) ChromaShift() (xs, ys int) {
	switch pf {
	case PF420:
		return 1, 1
	case PF422:
		return 1, 0
	}
	return 0, 0
}

// ColorSpace is the colour space tag of the identification header.
type ColorSpace uint8

const (
	ColorSpaceUnspecified ColorSpace = iota
	ColorSpaceRec470M
	ColorSpaceRec470BG
)

func (cs ColorSpace) String() string {
	switch cs {
	case ColorSpaceUnspecified:
		return "unspecified"
	case ColorSpaceRec470M:
		return "Rec470M"
	case ColorSpaceRec470BG:
		return "Rec470BG"
	}
	return fmt.Sprintf("ColorSpace(%d)", uint8(cs))
}

// Info is the identification header.
type Info struct {
	VersionMajor    uint8
	VersionMinor    uint8
	VersionSubminor uint8

	// Coded frame size, a multiple of 16 in both directions.
	Width  int
	Height int

	// Picture region inside the coded frame. PicY is measured from the
	// top of the frame.
	PicWidth  int
	PicHeight int
	PicX      int
	PicY      int

	FPSNum    uint32
	FPSDen    uint32
	AspectNum uint32
	AspectDen uint32

	ColorSpace    ColorSpace
	TargetBitrate int
	Quality       int

	// KeyframeGranuleShift is the number of low granule position bits
	// counting frames since the last key frame.
	KeyframeGranuleShift int

	PixelFormat PixelFormat
}

// Comment is the comment header: a vendor string and TAG=value pairs.
type Comment struct {
	Vendor   string
	Comments []string
}

// Query returns the n-th value of tag, compared case-insensitively.
func (c *Comment) Query(tag string, n int) (string, bool) {
	prefix := tag + "="
	for _, s := range c.Comments {
		if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
			continue
		}
		if n == 0 {
			return s[len(prefix):], true
		}
		n--
	}
	return "", false
}

// QueryCount returns the number of values stored for tag.
func (c *Comment) QueryCount(tag string) int {
	prefix := tag + "="
	count := 0
	for _, s := range c.Comments {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			count++
		}
	}
	return count
}

// Setup is the setup header: loop filter limits, quantization tables and
// the token Huffman trees.
type Setup struct {
	FilterLimits [NumQIs]uint8
	Quant        *QuantTables
	Trees        [huffman.NumTables]*huffman.Tree
}

type headerState int

const (
	stateNone headerState = iota
	stateInfo
	stateComment
	stateReady
)

// Headers collects the three header packets of a stream. The zero value
// is ready to use.
type Headers struct {
	Info    Info
	Comment Comment
	Setup   *Setup

	state headerState
}

// Ready reports whether all three header packets have been decoded.
func (h *Headers) Ready() bool {
	return h.state == stateReady
}

// Decode consumes one header packet. bos must be set for the first packet
// of the logical stream. Every header packet that follows the setup header,
// including a repeated identification, comment or setup header, is ignored.
func (h *Headers) Decode(packet []byte, bos bool) error {
	if len(packet) < 1+len(Magic) || packet[0]&0x80 == 0 {
		return ErrNotFormat
	}
	if !bytes.EqualFold(packet[1:1+len(Magic)], []byte(Magic)) {
		return ErrNotFormat
	}
	if h.state == stateReady {
		return nil
	}
	c := bitio.NewReader(packet)
	c.Skip(8 * (1 + len(Magic)))

	switch packet[0] {
	case HeaderInfo:
		if !bos || h.state != stateNone {
			return fmt.Errorf("%w: unexpected identification header", ErrBadHeader)
		}
		if err := readInfo(c, &h.Info); err != nil {
			return err
		}
		h.state = stateInfo
	case HeaderComment:
		if h.state != stateInfo {
			return fmt.Errorf("%w: comment header out of order", ErrBadHeader)
		}
		if err := readComment(c, &h.Comment, len(packet)); err != nil {
			return err
		}
		h.state = stateComment
	case HeaderSetup:
		if h.state != stateComment {
			return fmt.Errorf("%w: setup header out of order", ErrBadHeader)
		}
		s, err := readSetup(c)
		if err != nil {
			return err
		}
		h.Setup = s
		h.state = stateReady
	default:
		return fmt.Errorf("%w: unknown header type 0x%02x", ErrBadHeader, packet[0])
	}
	return nil
}

func readInfo(c *bitio.Cursor, info *Info) error {
	info.VersionMajor = uint8(c.ReadBitsMSB(8))
	info.VersionMinor = uint8(c.ReadBitsMSB(8))
	info.VersionSubminor = uint8(c.ReadBitsMSB(8))
	if info.VersionMajor != VersionMajor || info.VersionMinor > VersionMinor {
		return fmt.Errorf("%w: %d.%d.%d", ErrVersion,
			info.VersionMajor, info.VersionMinor, info.VersionSubminor)
	}

	info.Width = c.ReadBitsMSB(16) << 4
	info.Height = c.ReadBitsMSB(16) << 4
	info.PicWidth = c.ReadBitsMSB(24)
	info.PicHeight = c.ReadBitsMSB(24)
	info.PicX = c.ReadBitsMSB(8)
	picY := c.ReadBitsMSB(8)

	info.FPSNum = uint32(c.ReadBitsMSB(32))
	info.FPSDen = uint32(c.ReadBitsMSB(32))
	info.AspectNum = uint32(c.ReadBitsMSB(24))
	info.AspectDen = uint32(c.ReadBitsMSB(24))

	info.ColorSpace = ColorSpace(c.ReadBitsMSB(8))
	info.TargetBitrate = c.ReadBitsMSB(24)
	info.Quality = c.ReadBitsMSB(6)
	info.KeyframeGranuleShift = c.ReadBitsMSB(5)
	info.PixelFormat = PixelFormat(c.ReadBitsMSB(2))
	c.ReadBitsMSB(3) // reserved

	if c.IsExhausted() {
		return fmt.Errorf("%w: truncated identification header", ErrBadHeader)
	}
	if info.PixelFormat == PFReserved {
		return fmt.Errorf("%w: reserved pixel format", ErrBadHeader)
	}
	if info.Width == 0 || info.Height == 0 {
		return fmt.Errorf("%w: empty frame", ErrBadHeader)
	}
	if info.PicX+info.PicWidth > info.Width || picY+info.PicHeight > info.Height {
		return fmt.Errorf("%w: picture %dx%d+%d+%d outside %dx%d frame", ErrBadHeader,
			info.PicWidth, info.PicHeight, info.PicX, picY, info.Width, info.Height)
	}
	if info.FPSNum == 0 || info.FPSDen == 0 {
		return fmt.Errorf("%w: zero frame rate", ErrBadHeader)
	}
	// Stored bottom-up; exposed top-down.
	info.PicY = info.Height - info.PicHeight - picY
	return nil
}

// readLE32 reads a little-endian 32-bit integer from a byte-aligned cursor,
// or returns Exhausted.
func readLE32(c *bitio.Cursor) int {
	return c.ReadBits(32)
}

// readString reads a length-prefixed string, refusing lengths that exceed
// the remaining size bytes of the packet.
func readString(c *bitio.Cursor, size int) (string, error) {
	n := readLE32(c)
	if c.IsExhausted() || n < 0 || n > size-c.BytePos() {
		return "", fmt.Errorf("%w: truncated comment header", ErrBadHeader)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(c.ReadBitsMSB(8))
	}
	return string(b), nil
}

func readComment(c *bitio.Cursor, tc *Comment, size int) error {
	vendor, err := readString(c, size)
	if err != nil {
		return err
	}
	count := readLE32(c)
	// Each comment needs at least its 4-byte length.
	if c.IsExhausted() || count < 0 || count > (size-c.BytePos())/4 {
		return fmt.Errorf("%w: bad comment count", ErrBadHeader)
	}
	comments := make([]string, count)
	for i := range comments {
		if comments[i], err = readString(c, size); err != nil {
			return err
		}
	}
	tc.Vendor = vendor
	tc.Comments = comments
	return nil
}

func readSetup(c *bitio.Cursor) (*Setup, error) {
	s := &Setup{}

	nbits := c.ReadBitsMSB(3)
	for i := range s.FilterLimits {
		s.FilterLimits[i] = uint8(c.ReadBitsMSB(nbits))
	}
	if c.IsExhausted() {
		return nil, fmt.Errorf("%w: truncated loop filter limits", ErrBadHeader)
	}

	q, err := readQuantTables(c)
	if err != nil {
		return nil, err
	}
	s.Quant = q

	for i := range s.Trees {
		t, err := huffman.Read(c)
		if err != nil {
			return nil, fmt.Errorf("%w: huffman tree %d: %w", ErrBadHeader, i, err)
		}
		s.Trees[i] = t
	}
	return s, nil
}
