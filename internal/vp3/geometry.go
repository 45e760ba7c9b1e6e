package vp3

import "fmt"

// FragIndex addresses a fragment in the frame's fragment arena. Fragments
// are numbered plane by plane, each plane in raster order starting at the
// bottom-left corner.
type FragIndex int32

// NoFrag marks a superblock position that lies outside the frame.
const NoFrag FragIndex = -1

// MaxFrameArea bounds the coded luma area accepted by NewGeometry.
const MaxFrameArea = 1 << 26

// Superblock position of each fragment in coding order, indexed by
// mb*4 + b. The curve visits the four macroblocks in the order bottom-left,
// top-left, top-right, bottom-right, and the fragments of each macroblock
// along the same U shape. y grows upwards.
var (
	hilbertX = [16]int{0, 1, 1, 0, 0, 0, 1, 1, 2, 2, 3, 3, 3, 2, 2, 3}
	hilbertY = [16]int{0, 0, 1, 1, 2, 3, 3, 2, 2, 3, 3, 2, 1, 1, 0, 0}
)

// Macroblock origin inside its superblock, in fragments.
var (
	mbOriginX = [4]int{0, 0, 2, 2}
	mbOriginY = [4]int{0, 2, 2, 0}
)

// Plane describes one colour plane's fragment and superblock layout.
type Plane struct {
	Width, Height int // pixels
	FragW, FragH  int
	FragBase      FragIndex
	SBW, SBH      int
	SBBase        int
}

// NumFrags returns the number of fragments in the plane.
func (p *Plane) NumFrags() int { return p.FragW * p.FragH }

// NumSBs returns the number of superblocks in the plane.
func (p *Plane) NumSBs() int { return p.SBW * p.SBH }

// Macroblock lists the fragments covered by one luma macroblock.
//
// Luma is in raster order from the bottom-left: bottom-left, bottom-right,
// top-left, top-right. Each chroma plane uses the same slots: 4:4:4 fills
// all four, 4:2:2 fills slot 0 (lower) and slot 2 (upper), 4:2:0 fills slot
// 0 only. Unused slots hold NoFrag.
type Macroblock struct {
	X, Y   int // luma macroblock coordinates
	Luma   [4]FragIndex
	Chroma [2][4]FragIndex
}

// Geometry is the fragment, macroblock and superblock layout of a frame.
// It is computed once per stream.
type Geometry struct {
	Format   PixelFormat
	Planes   [3]Plane
	NumFrags int
	NumSBs   int
	MBW, MBH int

	// MBs lists the luma macroblocks in coding order: luma superblocks in
	// raster order, macroblocks along the curve within each.
	MBs []Macroblock

	sbFrags [][16]FragIndex
}

// NewGeometry computes the layout for a coded frame of the given size.
func NewGeometry(width, height int, pf PixelFormat) (*Geometry, error) {
	if width <= 0 || height <= 0 || width%16 != 0 || height%16 != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrGeometry, width, height)
	}
	if width*height > MaxFrameArea {
		return nil, fmt.Errorf("%w: %dx%d exceeds the frame area limit", ErrGeometry, width, height)
	}
	if pf == PFReserved || pf > PF444 {
		return nil, fmt.Errorf("%w: pixel format %v", ErrGeometry, pf)
	}

	g := &Geometry{Format: pf, MBW: width / 16, MBH: height / 16}
	xs, ys := pf.ChromaShift()
	fragBase, sbBase := 0, 0
	for pli := range g.Planes {
		p := &g.Planes[pli]
		p.Width, p.Height = width, height
		if pli > 0 {
			p.Width, p.Height = width>>xs, height>>ys
		}
		p.FragW, p.FragH = p.Width/8, p.Height/8
		p.SBW, p.SBH = (p.FragW+3)/4, (p.FragH+3)/4
		p.FragBase = FragIndex(fragBase)
		p.SBBase = sbBase
		fragBase += p.NumFrags()
		sbBase += p.NumSBs()
	}
	g.NumFrags = fragBase
	g.NumSBs = sbBase

	g.sbFrags = make([][16]FragIndex, g.NumSBs)
	for sb := range g.sbFrags {
		for k := 0; k < 16; k++ {
			g.sbFrags[sb][k] = g.Fragment(sb, k>>2, k&3)
		}
	}
	g.buildMacroblocks()
	return g, nil
}

// PlaneOf returns the plane containing superblock sb.
func (g *Geometry) PlaneOf(sb int) int {
	for pli := 2; pli > 0; pli-- {
		if sb >= g.Planes[pli].SBBase {
			return pli
		}
	}
	return 0
}

// Fragment maps a (superblock, macroblock, block) coordinate to the
// fragment it covers, or NoFrag when that position is outside the plane.
// mb and b are in coding order, 0..3 each.
func (g *Geometry) Fragment(sb, mb, b int) FragIndex {
	if sb < 0 || sb >= g.NumSBs || mb < 0 || mb > 3 || b < 0 || b > 3 {
		return NoFrag
	}
	p := &g.Planes[g.PlaneOf(sb)]
	local := sb - p.SBBase
	k := mb*4 + b
	fx := (local%p.SBW)*4 + hilbertX[k]
	fy := (local/p.SBW)*4 + hilbertY[k]
	if fx >= p.FragW || fy >= p.FragH {
		return NoFrag
	}
	return p.FragBase + FragIndex(fy*p.FragW+fx)
}

// SBFrags returns the 16 fragments of superblock sb in coding order.
func (g *Geometry) SBFrags(sb int) *[16]FragIndex {
	return &g.sbFrags[sb]
}

// FragAt returns the fragment at fragment coordinates (fx, fy) of plane
// pli, or NoFrag outside the plane.
func (g *Geometry) FragAt(pli, fx, fy int) FragIndex {
	p := &g.Planes[pli]
	if fx < 0 || fy < 0 || fx >= p.FragW || fy >= p.FragH {
		return NoFrag
	}
	return p.FragBase + FragIndex(fy*p.FragW+fx)
}

func (g *Geometry) buildMacroblocks() {
	luma := &g.Planes[0]
	g.MBs = make([]Macroblock, 0, g.MBW*g.MBH)
	for sb := 0; sb < luma.NumSBs(); sb++ {
		for mb := 0; mb < 4; mb++ {
			fx := (sb%luma.SBW)*4 + mbOriginX[mb]
			fy := (sb/luma.SBW)*4 + mbOriginY[mb]
			if fx >= luma.FragW || fy >= luma.FragH {
				continue
			}
			m := Macroblock{X: fx / 2, Y: fy / 2}
			for i := 0; i < 4; i++ {
				m.Luma[i] = g.FragAt(0, fx+i&1, fy+i>>1)
			}
			for ci := 0; ci < 2; ci++ {
				pli := ci + 1
				slots := &m.Chroma[ci]
				*slots = [4]FragIndex{NoFrag, NoFrag, NoFrag, NoFrag}
				switch g.Format {
				case PF420:
					slots[0] = g.FragAt(pli, m.X, m.Y)
				case PF422:
					slots[0] = g.FragAt(pli, m.X, 2*m.Y)
					slots[2] = g.FragAt(pli, m.X, 2*m.Y+1)
				default:
					for i := 0; i < 4; i++ {
						slots[i] = g.FragAt(pli, fx+i&1, fy+i>>1)
					}
				}
			}
			g.MBs = append(g.MBs, m)
		}
	}
}
