package vp3

import (
	"fmt"
	"testing"

	"github.com/deepteams/theora/internal/huffman"
)

func TestExpandToken(t *testing.T) {
	tests := []struct {
		name   string
		ci     int
		tok    int
		extra  int
		pos    int // coefficient written, -1 for none
		val    int16
		wantCI int
	}{
		{"one", 0, huffman.TokenOne, 0, 0, 1, 1},
		{"minus two", 5, huffman.TokenMinusTwo, 0, 5, -2, 6},
		{"cat2 top", 2, huffman.TokenCat2 + 3, 1, 2, -6, 3},
		{"cat3", 1, huffman.TokenCat3, 0b11, 1, -8, 2},
		{"cat4", 1, huffman.TokenCat4, 0b011, 1, 12, 2},
		{"cat8 max", 0, huffman.TokenCat8, 511 | 512, 0, -580, 1},
		{"zero run", 3, huffman.TokenZRL, 5, -1, 0, 9},
		{"short zero run clamps", 60, huffman.TokenShortZRL, 7, -1, 0, 64},
		{"run 3 then one", 1, huffman.TokenRunCat1 + 2, 1, 4, -1, 5},
		{"run cat1b", 0, huffman.TokenRunCat1B, 0b111, 9, -1, 10},
		{"run cat1c", 0, huffman.TokenRunCat1C, 0b1111, 17, -1, 18},
		{"run cat2", 0, huffman.TokenRunCat2, 0b11, 1, -3, 2},
		{"run cat2b", 0, huffman.TokenRunCat2B, 0b111, 3, -3, 4},
		{"run past end", 50, huffman.TokenRunCat1C, 0b0111, -1, 0, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fragment{ci: uint8(tt.ci)}
			var blk [64]int16
			expandToken(&f, &blk, tt.tok, tt.extra)
			if int(f.ci) != tt.wantCI {
				t.Errorf("ci = %d, want %d", f.ci, tt.wantCI)
			}
			for i, v := range blk {
				want := int16(0)
				if i == tt.pos {
					want = tt.val
				}
				if v != want {
					t.Errorf("blk[%d] = %d, want %d", i, v, want)
				}
			}
			if tt.pos >= 0 && int(f.nz) != tt.pos+1 {
				t.Errorf("nz = %d, want %d", f.nz, tt.pos+1)
			}
			if tt.pos < 0 && f.nz != 0 {
				t.Errorf("nz = %d, want 0", f.nz)
			}
		})
	}
}

func TestDecodeBlockQIs(t *testing.T) {
	d := &Decoder{
		frags: make([]fragment, 5),
		coded: []FragIndex{0, 1, 2, 3, 4},
		hdr:   frameHeader{nqis: 3},
	}
	// Pass one: 0 | 1 1 | 0 | 1. Pass two over the three nonzero: 1 | 0 0.
	c := bitsOf("0 0 100 0 0" + "1 0 100")
	d.decodeBlockQIs(c)
	want := []uint8{0, 2, 1, 0, 1}
	for i, w := range want {
		if d.frags[i].qii != w {
			t.Errorf("qii[%d] = %d, want %d", i, d.frags[i].qii, w)
		}
	}
	if c.IsExhausted() {
		t.Error("cursor exhausted")
	}
}

func TestDecodeBlockQIs_SingleIndex(t *testing.T) {
	d := &Decoder{
		frags: make([]fragment, 2),
		coded: []FragIndex{0, 1},
		hdr:   frameHeader{nqis: 1},
	}
	c := bitsOf("1111")
	d.decodeBlockQIs(c)
	if c.Bits() != 0 {
		t.Errorf("consumed %d bits with a single quality index", c.Bits())
	}
}

func TestReadFrameHeader(t *testing.T) {
	// Inter frame with qis 10, 20, 30.
	c := bitsOf("1 001010 1 010100 1 011110")
	h := readFrameHeader(c)
	if h.key || h.nqis != 3 || h.qis != [3]int{10, 20, 30} {
		t.Errorf("header = %+v", h)
	}

	// Key frame with one qi and the three skipped bits.
	c = bitsOf("0 111111 0 101")
	h = readFrameHeader(c)
	if !h.key || h.nqis != 1 || h.qis[0] != 63 {
		t.Errorf("header = %+v", h)
	}
	if c.Bits() != 11 {
		t.Errorf("consumed %d bits, want 11", c.Bits())
	}
}

func TestIsKeyframe(t *testing.T) {
	tests := []struct {
		packet []byte
		want   bool
	}{
		{nil, false},
		{[]byte{0x00}, true},
		{[]byte{0x3f, 0xff}, true},
		{[]byte{0x40}, false},
		{[]byte{0x80}, false},
	}
	for _, tt := range tests {
		if got := IsKeyframe(tt.packet); got != tt.want {
			t.Errorf("IsKeyframe(%x) = %v, want %v", tt.packet, got, tt.want)
		}
	}
}

func TestDecodeToken_EOBRuns(t *testing.T) {
	tests := []struct {
		tok, extra int
		blocks     int // fragments ended including the current one, 0 for all
	}{
		{huffman.TokenEOB, 0, 1},
		{huffman.TokenEOBPair, 0, 2},
		{huffman.TokenEOBTriple, 0, 3},
		{huffman.TokenRepeatRun, 0, 4},
		{huffman.TokenRepeatRun, 3, 7},
		{huffman.TokenRepeatRun2, 0, 8},
		{huffman.TokenRepeatRun2, 7, 15},
		{huffman.TokenRepeatRun3, 0, 16},
		{huffman.TokenRepeatRun3, 15, 31},
		{huffman.TokenRepeatRun4, 1, 1},
		{huffman.TokenRepeatRun4, 4095, 4095},
		{huffman.TokenRepeatRun4, 0, 0},
	}
	for _, tt := range tests {
		d := &Decoder{frags: make([]fragment, 1)}
		n := int(huffman.ExtraBits[tt.tok])
		c := bitsOf(fmt.Sprintf("%0*b", n, tt.extra))
		remaining := 5

		more := d.decodeToken(c, huffman.Single(tt.tok), 0, &remaining)
		if c.Bits() != n {
			t.Errorf("token %d extra %d: consumed %d bits, want %d", tt.tok, tt.extra, c.Bits(), n)
		}
		if d.frags[0].ci != 64 || remaining != 4 {
			t.Errorf("token %d extra %d: ci %d remaining %d, want 64 and 4", tt.tok, tt.extra, d.frags[0].ci, remaining)
		}
		if tt.blocks == 0 {
			if more >= 0 {
				t.Errorf("token %d extra 0: run %d, want negative", tt.tok, more)
			}
			continue
		}
		if more+1 != tt.blocks {
			t.Errorf("token %d extra %d: ends %d blocks, want %d", tt.tok, tt.extra, more+1, tt.blocks)
		}
	}
}
