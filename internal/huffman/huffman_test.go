package huffman

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/deepteams/theora/internal/bitio"
)

func TestRead_TwoLeaves(t *testing.T) {
	// 0 | 1 00001 | 1 00010
	w := bitio.NewWriter(0)
	w.WriteBitsMSB(0, 1)
	w.WriteBitsMSB(1, 1)
	w.WriteBitsMSB(1, 5)
	w.WriteBitsMSB(1, 1)
	w.WriteBitsMSB(2, 5)
	// payload: 1 then 0
	w.WriteBitsMSB(0b10, 2)

	c := bitio.NewReader(w.Data())
	tr, err := Read(c)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c.Bits() != 13 {
		t.Errorf("consumed %d bits, want 13", c.Bits())
	}
	if got := tr.Decode(c); got != 2 {
		t.Errorf("Decode = %d, want 2", got)
	}
	if got := tr.Decode(c); got != 1 {
		t.Errorf("Decode = %d, want 1", got)
	}
}

func TestRead_SingleLeafConsumesNothing(t *testing.T) {
	w := bitio.NewWriter(0)
	w.WriteBitsMSB(1, 1)
	w.WriteBitsMSB(17, 5)
	c := bitio.NewReader(w.Data())
	tr, err := Read(c)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	before := c.Bits()
	for i := 0; i < 3; i++ {
		if got := tr.Decode(c); got != 17 {
			t.Fatalf("Decode = %d, want 17", got)
		}
	}
	if c.Bits() != before {
		t.Errorf("single-leaf decode consumed %d bits", c.Bits()-before)
	}
	if tr.Depth() != 0 {
		t.Errorf("Depth = %d, want 0", tr.Depth())
	}
}

func TestRead_DepthGuard(t *testing.T) {
	// A left spine of 33 internal nodes.
	w := bitio.NewWriter(0)
	for i := 0; i < 33; i++ {
		w.WriteBitsMSB(0, 1)
	}
	w.WriteBytes(make([]byte, 64))
	if _, err := Read(bitio.NewReader(w.Data())); !errors.Is(err, ErrDepth) {
		t.Errorf("Read = %v, want ErrDepth", err)
	}

	// 32 levels is still legal.
	w = bitio.NewWriter(0)
	for i := 0; i < 32; i++ {
		w.WriteBitsMSB(0, 1)
		w.WriteBitsMSB(1, 1)
		w.WriteBitsMSB(uint32(i%32), 5)
	}
	w.WriteBitsMSB(1, 1)
	w.WriteBitsMSB(31, 5)
	tr, err := Read(bitio.NewReader(w.Data()))
	if err != nil {
		t.Fatalf("Read 32 levels: %v", err)
	}
	if tr.Depth() != 32 {
		t.Errorf("Depth = %d, want 32", tr.Depth())
	}
}

func TestRead_Truncated(t *testing.T) {
	if _, err := Read(bitio.NewReader([]byte{0x00})); !errors.Is(err, ErrTruncated) {
		t.Errorf("Read = %v, want ErrTruncated", err)
	}
	if _, err := Read(bitio.NewReader(nil)); !errors.Is(err, ErrTruncated) {
		t.Errorf("Read(nil) = %v, want ErrTruncated", err)
	}
}

func TestDecode_Exhausted(t *testing.T) {
	tr, _ := Build([]int{1, 1, 1, 1})
	if got := tr.Decode(bitio.NewReader(nil)); got != bitio.Exhausted {
		t.Errorf("Decode on empty = %d, want Exhausted", got)
	}
}

func TestBuild_TieBreak(t *testing.T) {
	// Newer nodes sort ahead of equal-weight older ones.
	tr, err := Build([]int{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	codes := tr.Codes(3)
	want := []Code{{0b0, 1}, {0b11, 2}, {0b10, 2}}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("code[%d] = %+v, want %+v", i, codes[i], want[i])
		}
	}
}

func TestBuild_ZeroFrequencies(t *testing.T) {
	tr, err := Build(make([]int, NumTokens))
	if err != nil {
		t.Fatal(err)
	}
	// 32 equal weights give a complete tree of depth 5.
	for sym, c := range tr.Codes(NumTokens) {
		if c.Len != 5 {
			t.Errorf("symbol %d length %d, want 5", sym, c.Len)
		}
	}
	if _, err := Build(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Build(nil) = %v, want ErrEmpty", err)
	}
}

func TestBuild_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		freqs := make([]int, NumTokens)
		for i := range freqs {
			freqs[i] = rng.Intn(5000)
		}
		tr, err := Build(freqs)
		if err != nil {
			t.Fatal(err)
		}
		codes := tr.Codes(NumTokens)
		for _, c := range codes {
			if c.Len == 0 || c.Len >= NumTokens {
				t.Fatalf("trial %d: code length %d out of range", trial, c.Len)
			}
		}

		syms := make([]int, 500)
		w := bitio.NewWriter(0)
		for i := range syms {
			syms[i] = rng.Intn(NumTokens)
			Encode(w, codes, syms[i])
		}
		r := bitio.NewReader(w.Data())
		for i, want := range syms {
			if got := tr.Decode(r); got != want {
				t.Fatalf("trial %d symbol %d: got %d, want %d", trial, i, got, want)
			}
		}
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for trial := 0; trial < 10; trial++ {
		freqs := make([]int, NumTokens)
		for i := range freqs {
			freqs[i] = 1 + rng.Intn(1<<uint(rng.Intn(12)))
		}
		orig, _ := Build(freqs)

		w := bitio.NewWriter(0)
		orig.Write(w)
		got, err := Read(bitio.NewReader(w.Data()))
		if err != nil {
			t.Fatalf("Read: %v", err)
		}

		ol, gl := orig.Leaves(), got.Leaves()
		if len(ol) != len(gl) {
			t.Fatalf("leaf count %d, want %d", len(gl), len(ol))
		}
		for i := range ol {
			if ol[i] != gl[i] {
				t.Fatalf("leaf %d = %d, want %d", i, gl[i], ol[i])
			}
		}
		oc, gc := orig.Codes(NumTokens), got.Codes(NumTokens)
		for i := range oc {
			if oc[i] != gc[i] {
				t.Errorf("symbol %d code %+v, want %+v", i, gc[i], oc[i])
			}
		}
	}
}

func TestACGroup(t *testing.T) {
	tests := []struct{ ci, want int }{
		{1, 16}, {5, 16}, {6, 32}, {14, 32}, {15, 48}, {27, 48}, {28, 64}, {63, 64},
	}
	for _, tt := range tests {
		if got := ACGroup(tt.ci); got != tt.want {
			t.Errorf("ACGroup(%d) = %d, want %d", tt.ci, got, tt.want)
		}
	}
}

func TestExtraBits(t *testing.T) {
	if ExtraBits[TokenRepeatRun4] != 12 || ExtraBits[TokenCat8] != 10 || ExtraBits[TokenRunCat2B] != 3 {
		t.Error("extra bit table out of place")
	}
	if !IsEOBRun(TokenRepeatRun4) || IsEOBRun(TokenShortZRL) {
		t.Error("IsEOBRun boundary wrong")
	}
}
