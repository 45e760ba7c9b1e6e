package vp3

import (
	"strings"
	"testing"

	"github.com/deepteams/theora/internal/bitio"
)

// bitsOf builds a cursor over a string of '0' and '1' characters; any
// other character is ignored.
func bitsOf(s string) *bitio.Cursor {
	w := bitio.NewWriter(0)
	for _, ch := range s {
		if ch == '0' || ch == '1' {
			w.WriteBitsMSB(uint32(ch-'0'), 1)
		}
	}
	return bitio.NewReader(w.Data())
}

func TestReadSBRun_Boundaries(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"0", 1},
		{"10 0", 2},
		{"10 1", 3},
		{"110 0", 4},
		{"110 1", 5},
		{"1110 00", 6},
		{"1110 11", 9},
		{"11110 000", 10},
		{"11110 111", 17},
		{"111110 0000", 18},
		{"111110 1111", 33},
		{"111111 000000000000", 34},
		{"111111 111111111111", 4129},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c := bitsOf(tt.code)
			if got := readSBRun(c); got != tt.want {
				t.Errorf("readSBRun(%s) = %d, want %d", tt.code, got, tt.want)
			}
			if want := len(strings.ReplaceAll(tt.code, " ", "")); c.Bits() != want {
				t.Errorf("consumed %d bits, want %d", c.Bits(), want)
			}
		})
	}
}

func TestReadBlockRun_Boundaries(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"0 0", 1},
		{"0 1", 2},
		{"10 0", 3},
		{"10 1", 4},
		{"110 0", 5},
		{"110 1", 6},
		{"1110 00", 7},
		{"1110 11", 10},
		{"11110 00", 11},
		{"11110 11", 14},
		{"11111 0000", 15},
		{"11111 1111", 30},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c := bitsOf(tt.code)
			if got := readBlockRun(c); got != tt.want {
				t.Errorf("readBlockRun(%s) = %d, want %d", tt.code, got, tt.want)
			}
			if want := len(strings.ReplaceAll(tt.code, " ", "")); c.Bits() != want {
				t.Errorf("consumed %d bits, want %d", c.Bits(), want)
			}
		})
	}
}

func TestReadSBRun_Exhausted(t *testing.T) {
	c := bitio.NewReader(nil)
	if got := readSBRun(c); got != 1 {
		t.Errorf("readSBRun on empty input = %d, want 1", got)
	}
	if !c.IsExhausted() {
		t.Error("cursor not marked exhausted")
	}
}

func collectSBRuns(c *bitio.Cursor, n int) []int {
	var out []int
	unpackSBRuns(c, n, func(flag int) { out = append(out, flag) })
	return out
}

func TestUnpackSBRuns_Toggle(t *testing.T) {
	// Start at 1; runs 2, 1, 3.
	c := bitsOf("1 100 0 101")
	got := collectSBRuns(c, 6)
	want := []int{1, 1, 0, 1, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("got %d flags, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("flag %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestUnpackSBRuns_MaxRunReadsFlag(t *testing.T) {
	// A run of 4129 ones, then an explicit 1 instead of a toggle, then a
	// run of 2.
	c := bitsOf("1 111111 111111111111 1 100")
	got := collectSBRuns(c, MaxSBRun+2)
	for i, f := range got {
		if f != 1 {
			t.Fatalf("flag %d = %d, want 1", i, f)
		}
	}
	if c.IsExhausted() {
		t.Error("cursor exhausted")
	}

	// The same stream with an explicit 0.
	c = bitsOf("1 111111 111111111111 0 100")
	got = collectSBRuns(c, MaxSBRun+2)
	if got[MaxSBRun-1] != 1 || got[MaxSBRun] != 0 || got[MaxSBRun+1] != 0 {
		t.Errorf("flags around the boundary = %v, want [1 0 0]", got[MaxSBRun-1:])
	}
}

func TestUnpackSBRuns_RunPastEnd(t *testing.T) {
	// A run longer than the remaining count is truncated.
	c := bitsOf("0 1110 11")
	got := collectSBRuns(c, 4)
	if len(got) != 4 {
		t.Fatalf("got %d flags, want 4", len(got))
	}
	for i, f := range got {
		if f != 0 {
			t.Errorf("flag %d = %d, want 0", i, f)
		}
	}
}

func TestBlockRuns_Toggle(t *testing.T) {
	// Start at 0; runs 1, 2, 3.
	r := blockRuns{c: bitsOf("0 00 01 100")}
	want := []int{0, 1, 1, 0, 0, 0}
	for i, w := range want {
		if got := r.next(); got != w {
			t.Errorf("flag %d = %d, want %d", i, got, w)
		}
	}
}

func TestBlockRuns_Lazy(t *testing.T) {
	c := bitsOf("1 01")
	r := blockRuns{c: c}
	if c.Bits() != 0 {
		t.Fatal("bits consumed before the first flag")
	}
	if r.next() != 1 || r.next() != 1 {
		t.Error("expected two set flags")
	}
	if c.Bits() != 3 {
		t.Errorf("consumed %d bits, want 3", c.Bits())
	}
}
