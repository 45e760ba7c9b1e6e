// Package dsp provides the pixel kernels of the VP3-family decoder: the 8x8
// inverse DCT, residual reconstruction, motion-compensated block copies and
// the in-loop deblocking filter.
//
// Kernels are reached through package-level function variables so that
// platform-specific implementations can replace the pure-Go ones.
//
// All kernels that touch pixels use a full-buffer plus base-offset
// addressing: buf[off] is the bottom-left pixel of the block and rows
// advance by stride. Neighbouring context at negative offsets resolves to a
// valid index as long as the plane carries a border.
package dsp

// BlockSize is the width and height of a fragment.
const BlockSize = 8

// Kernel function variables. Init sets them to the pure-Go versions.
var (
	// IDCT transforms 64 dequantized coefficients in natural order into a
	// residual block.
	IDCT func(in *[64]int16, out *[64]int16)

	// IDCTDC is IDCT specialised for a block whose only nonzero
	// coefficient is DC. The result is the same for every pixel.
	IDCTDC func(dc int16) int16

	// PutIntra writes clamp(res+128) to an 8x8 block.
	PutIntra func(dst []byte, off, stride int, res *[64]int16)

	// AddInter adds res to the prediction already in the 8x8 block at off.
	AddInter func(dst []byte, off, stride int, res *[64]int16)

	// Copy8x8 copies an 8x8 block between planes of possibly different
	// strides.
	Copy8x8 func(dst []byte, doff, dstride int, src []byte, soff, sstride int)

	// Avg8x8 writes the truncating average of two source blocks.
	Avg8x8 func(dst []byte, doff, dstride int, src []byte, soff1, soff2, sstride int)

	// FilterVertical filters across the vertical edge left of buf[off] for
	// the 8 rows above it, inclusive.
	FilterVertical func(buf []byte, off, stride int, lim *Limits)

	// FilterHorizontal filters across the horizontal edge below buf[off]
	// for the 8 columns right of it, inclusive.
	FilterHorizontal func(buf []byte, off, stride int, lim *Limits)
)

// Init initialises all function pointers to their pure-Go implementations.
func Init() {
	initClipTables()

	IDCT = idct8x8
	IDCTDC = idctDC

	PutIntra = putIntra
	AddInter = addInter
	Copy8x8 = copy8x8
	Avg8x8 = avg8x8

	FilterVertical = filterVertical
	FilterHorizontal = filterHorizontal
}

func init() {
	Init()
}
