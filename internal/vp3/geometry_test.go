package vp3

import (
	"errors"
	"testing"
)

func TestGeometry_16x16(t *testing.T) {
	g, err := NewGeometry(16, 16, PF420)
	if err != nil {
		t.Fatal(err)
	}
	if g.NumFrags != 6 || g.NumSBs != 3 || len(g.MBs) != 1 {
		t.Fatalf("frags=%d sbs=%d mbs=%d, want 6 3 1", g.NumFrags, g.NumSBs, len(g.MBs))
	}

	// Bottom-left, bottom-right, top-right, top-left.
	want := []FragIndex{0, 1, 3, 2}
	for b, fi := range want {
		if got := g.Fragment(0, 0, b); got != fi {
			t.Errorf("Fragment(0, 0, %d) = %d, want %d", b, got, fi)
		}
	}
	for mb := 1; mb < 4; mb++ {
		for b := 0; b < 4; b++ {
			if got := g.Fragment(0, mb, b); got != NoFrag {
				t.Errorf("Fragment(0, %d, %d) = %d, want NoFrag", mb, b, got)
			}
		}
	}
	if got := g.Fragment(1, 0, 0); got != 4 {
		t.Errorf("first Cb fragment = %d, want 4", got)
	}
	if got := g.Fragment(2, 0, 0); got != 5 {
		t.Errorf("first Cr fragment = %d, want 5", got)
	}

	mb := g.MBs[0]
	if mb.Luma != [4]FragIndex{0, 1, 2, 3} {
		t.Errorf("Luma = %v, want [0 1 2 3]", mb.Luma)
	}
	if mb.Chroma[0][0] != 4 || mb.Chroma[1][0] != 5 {
		t.Errorf("Chroma = %v, want slot 0 = 4 and 5", mb.Chroma)
	}
	for ci := range mb.Chroma {
		for s := 1; s < 4; s++ {
			if mb.Chroma[ci][s] != NoFrag {
				t.Errorf("Chroma[%d][%d] = %d, want NoFrag", ci, s, mb.Chroma[ci][s])
			}
		}
	}
}

func TestGeometry_OutOfRange(t *testing.T) {
	g, err := NewGeometry(16, 16, PF420)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range [][3]int{{-1, 0, 0}, {3, 0, 0}, {0, 4, 0}, {0, 0, 4}, {0, -1, 0}} {
		if got := g.Fragment(c[0], c[1], c[2]); got != NoFrag {
			t.Errorf("Fragment%v = %d, want NoFrag", c, got)
		}
	}
	if g.FragAt(0, 2, 0) != NoFrag || g.FragAt(1, 0, -1) != NoFrag {
		t.Error("FragAt outside the plane did not return NoFrag")
	}
}

// Every fragment is reached exactly once through the superblock mapping,
// and every luma fragment belongs to exactly one macroblock.
func TestGeometry_Coverage(t *testing.T) {
	sizes := [][2]int{{16, 16}, {48, 32}, {64, 64}, {80, 48}, {176, 144}, {320, 240}}
	formats := []PixelFormat{PF420, PF422, PF444}
	for _, sz := range sizes {
		for _, pf := range formats {
			g, err := NewGeometry(sz[0], sz[1], pf)
			if err != nil {
				t.Fatalf("%dx%d %v: %v", sz[0], sz[1], pf, err)
			}
			seen := make([]int, g.NumFrags)
			for sb := 0; sb < g.NumSBs; sb++ {
				for _, fi := range g.SBFrags(sb) {
					if fi != NoFrag {
						seen[fi]++
					}
				}
			}
			for fi, n := range seen {
				if n != 1 {
					t.Fatalf("%dx%d %v: fragment %d mapped %d times", sz[0], sz[1], pf, fi, n)
				}
			}

			if len(g.MBs) != g.MBW*g.MBH {
				t.Fatalf("%dx%d %v: %d macroblocks, want %d", sz[0], sz[1], pf, len(g.MBs), g.MBW*g.MBH)
			}
			luma := make([]int, g.Planes[0].NumFrags())
			chroma := make([]int, g.NumFrags)
			for _, mb := range g.MBs {
				for _, fi := range mb.Luma {
					luma[fi]++
				}
				for _, slots := range mb.Chroma {
					for _, fi := range slots {
						if fi != NoFrag {
							chroma[fi]++
						}
					}
				}
			}
			for fi, n := range luma {
				if n != 1 {
					t.Fatalf("%dx%d %v: luma fragment %d in %d macroblocks", sz[0], sz[1], pf, fi, n)
				}
			}
			for fi := g.Planes[1].FragBase; int(fi) < g.NumFrags; fi++ {
				if chroma[fi] != 1 {
					t.Fatalf("%dx%d %v: chroma fragment %d in %d macroblocks", sz[0], sz[1], pf, fi, chroma[fi])
				}
			}
		}
	}
}

func TestGeometry_PlaneSizes(t *testing.T) {
	tests := []struct {
		pf     PixelFormat
		cw, ch int
	}{
		{PF420, 16, 8},
		{PF422, 16, 16},
		{PF444, 32, 16},
	}
	for _, tt := range tests {
		g, err := NewGeometry(32, 16, tt.pf)
		if err != nil {
			t.Fatal(err)
		}
		for pli := 1; pli < 3; pli++ {
			p := g.Planes[pli]
			if p.Width != tt.cw || p.Height != tt.ch {
				t.Errorf("%v plane %d = %dx%d, want %dx%d", tt.pf, pli, p.Width, p.Height, tt.cw, tt.ch)
			}
		}
	}
}

func TestGeometry_PlaneOf(t *testing.T) {
	g, err := NewGeometry(80, 48, PF420)
	if err != nil {
		t.Fatal(err)
	}
	// Luma 10x6 fragments: 3x2 superblocks. Chroma 5x3: 2x1 each.
	want := []int{0, 0, 0, 0, 0, 0, 1, 1, 2, 2}
	if g.NumSBs != len(want) {
		t.Fatalf("NumSBs = %d, want %d", g.NumSBs, len(want))
	}
	for sb, pli := range want {
		if got := g.PlaneOf(sb); got != pli {
			t.Errorf("PlaneOf(%d) = %d, want %d", sb, got, pli)
		}
	}
}

func TestNewGeometry_Errors(t *testing.T) {
	tests := []struct {
		w, h int
		pf   PixelFormat
	}{
		{0, 16, PF420},
		{16, 0, PF420},
		{17, 16, PF420},
		{16, 24, PF420},
		{16, 16, PFReserved},
		{16, 16, PixelFormat(7)},
		{1 << 14, 1 << 14, PF420},
	}
	for _, tt := range tests {
		if _, err := NewGeometry(tt.w, tt.h, tt.pf); !errors.Is(err, ErrGeometry) {
			t.Errorf("NewGeometry(%d, %d, %v) error = %v, want ErrGeometry", tt.w, tt.h, tt.pf, err)
		}
	}
}
