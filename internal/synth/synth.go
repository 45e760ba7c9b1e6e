// Package synth writes small, fully deterministic Theora streams: the three
// header packets, key and inter frame packets, and the Ogg pages around
// them. Tests and fuzz seeds use it in place of binary fixtures.
//
// The encoder is minimal. Frames default to a single quality index, the
// flat mode code and the fixed-length motion vector code, and every block
// ends with its own EOB token. Each of the 80 table slots carries its own
// token tree.
package synth

import (
	"errors"

	"github.com/deepteams/theora/internal/bitio"
	"github.com/deepteams/theora/internal/huffman"
	"github.com/deepteams/theora/internal/vp3"
)

var (
	ErrRun   = errors.New("synth: block run longer than 30")
	ErrValue = errors.New("synth: coefficient out of token range")
	ErrFrame = errors.New("synth: frame description does not match geometry")
)

// Config describes the stream headers.
type Config struct {
	Width, Height int // coded size, multiples of 16
	PicWidth      int // 0 means Width
	PicHeight     int // 0 means Height
	PicX, PicY    int // PicY from the top

	PixelFormat          vp3.PixelFormat
	FPSNum, FPSDen       uint32
	KeyframeGranuleShift int

	Vendor   string
	Comments []string

	// FilterLimit is the loop filter limit for every quality index.
	FilterLimit int

	// DCScale and ACScale are the quantizer scales for every quality
	// index. The single base matrix holds 4 everywhere, so an intra DC
	// quantizer is max(16, DCScale/100*16).
	DCScale, ACScale int

	// ACScales overrides ACScale for the first len(ACScales) quality
	// indices.
	ACScales []int
}

// DefaultConfig returns a 4:2:0 stream of the given size at 25 fps.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:                width,
		Height:               height,
		PixelFormat:          vp3.PF420,
		FPSNum:               25,
		FPSDen:               1,
		KeyframeGranuleShift: 6,
		Vendor:               "synth",
		DCScale:              100,
		ACScale:              100,
	}
}

// Encoder produces the packets of one stream.
type Encoder struct {
	cfg   Config
	geom  *vp3.Geometry
	trees [huffman.NumTables]*huffman.Tree
	codes [huffman.NumTables][]huffman.Code
}

// NewEncoder validates cfg against the frame geometry rules.
func NewEncoder(cfg Config) (*Encoder, error) {
	g, err := vp3.NewGeometry(cfg.Width, cfg.Height, cfg.PixelFormat)
	if err != nil {
		return nil, err
	}
	if cfg.PicWidth == 0 {
		cfg.PicWidth = cfg.Width
	}
	if cfg.PicHeight == 0 {
		cfg.PicHeight = cfg.Height
	}

	e := &Encoder{cfg: cfg, geom: g}
	for slot := range e.trees {
		t, err := huffman.Build(slotFreqs(slot))
		if err != nil {
			return nil, err
		}
		e.trees[slot] = t
		e.codes[slot] = t.Codes(huffman.NumTokens)
	}
	return e, nil
}

// slotFreqs returns the token frequencies of a table slot. EOB and the
// small values are common everywhere; one further token, different for
// each of the 16 slots of a group, is the most frequent, so reading with
// the wrong table garbles the tokens.
func slotFreqs(slot int) []int {
	freqs := make([]int, huffman.NumTokens)
	freqs[huffman.TokenEOB] = 64
	freqs[huffman.TokenOne] = 16
	freqs[huffman.TokenMinusOne] = 16
	freqs[huffman.TokenZRL] = 8
	freqs[(5*slot+3)%huffman.NumTokens] += 256
	return freqs
}

// Geometry returns the frame layout of the stream.
func (e *Encoder) Geometry() *vp3.Geometry { return e.geom }

// Config returns the configuration with defaults filled in.
func (e *Encoder) Config() Config { return e.cfg }

func newHeader(typ byte) *bitio.Cursor {
	w := bitio.NewWriter(64)
	w.WriteBitsMSB(uint32(typ), 8)
	w.WriteBytes([]byte(vp3.Magic))
	return w
}

// InfoHeader returns the identification header packet.
func (e *Encoder) InfoHeader() []byte {
	c := e.cfg
	w := newHeader(vp3.HeaderInfo)
	w.WriteBitsMSB(vp3.VersionMajor, 8)
	w.WriteBitsMSB(vp3.VersionMinor, 8)
	w.WriteBitsMSB(vp3.VersionSubminor, 8)
	w.WriteBitsMSB(uint32(c.Width>>4), 16)
	w.WriteBitsMSB(uint32(c.Height>>4), 16)
	w.WriteBitsMSB(uint32(c.PicWidth), 24)
	w.WriteBitsMSB(uint32(c.PicHeight), 24)
	w.WriteBitsMSB(uint32(c.PicX), 8)
	w.WriteBitsMSB(uint32(c.Height-c.PicHeight-c.PicY), 8)
	w.WriteBitsMSB(c.FPSNum, 32)
	w.WriteBitsMSB(c.FPSDen, 32)
	w.WriteBitsMSB(1, 24)
	w.WriteBitsMSB(1, 24)
	w.WriteBitsMSB(uint32(vp3.ColorSpaceUnspecified), 8)
	w.WriteBitsMSB(0, 24)
	w.WriteBitsMSB(32, 6)
	w.WriteBitsMSB(uint32(c.KeyframeGranuleShift), 5)
	w.WriteBitsMSB(uint32(c.PixelFormat), 2)
	w.WriteBitsMSB(0, 3)
	return w.Data()
}

func writeLE32(w *bitio.Cursor, v int) {
	w.WriteBits(uint32(v), 32)
}

// CommentHeader returns the comment header packet.
func (e *Encoder) CommentHeader() []byte {
	w := newHeader(vp3.HeaderComment)
	writeLE32(w, len(e.cfg.Vendor))
	w.WriteBytes([]byte(e.cfg.Vendor))
	writeLE32(w, len(e.cfg.Comments))
	for _, s := range e.cfg.Comments {
		writeLE32(w, len(s))
		w.WriteBytes([]byte(s))
	}
	return w.Data()
}

// SetupHeader returns the setup header packet.
func (e *Encoder) SetupHeader() []byte {
	w := newHeader(vp3.HeaderSetup)

	nbits := bitio.Ilog(uint32(e.cfg.FilterLimit))
	w.WriteBitsMSB(uint32(nbits), 3)
	for i := 0; i < vp3.NumQIs; i++ {
		w.WriteBitsMSB(uint32(e.cfg.FilterLimit), nbits)
	}

	var ac, dc [vp3.NumQIs]int
	for i := range ac {
		ac[i], dc[i] = e.cfg.ACScale, e.cfg.DCScale
		if i < len(e.cfg.ACScales) {
			ac[i] = e.cfg.ACScales[i]
		}
	}
	for _, scales := range [][vp3.NumQIs]int{ac, dc} {
		nbits := 1
		for _, v := range scales {
			nbits = max(nbits, bitio.Ilog(uint32(v)))
		}
		w.WriteBitsMSB(uint32(nbits-1), 4)
		for _, v := range scales {
			w.WriteBitsMSB(uint32(v), nbits)
		}
	}

	// One base matrix spanning the whole quality range.
	w.WriteBitsMSB(0, 9)
	for i := 0; i < 64; i++ {
		w.WriteBitsMSB(4, 8)
	}
	for qti := 0; qti < 2; qti++ {
		for pli := 0; pli < 3; pli++ {
			if qti > 0 || pli > 0 {
				w.WriteBitsMSB(0, 1) // copy the previous ranges
				if qti > 0 {
					w.WriteBitsMSB(0, 1)
				}
				continue
			}
			w.WriteBitsMSB(vp3.NumQIs-2, bitio.Ilog(vp3.NumQIs-2))
		}
	}

	for _, t := range e.trees {
		t.Write(w)
	}
	return w.Data()
}

// Headers returns the three header packets in order.
func (e *Encoder) Headers() [][]byte {
	return [][]byte{e.InfoHeader(), e.CommentHeader(), e.SetupHeader()}
}
