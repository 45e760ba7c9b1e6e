package dsp

// clip1 clamps [-clipOffset, clipOffset+255] to [0, 255]. The range covers
// a prediction plus a 16-bit residual after the filter and recon arithmetic
// has been bounded by the callers.
var clip1 [clipOffset + 256 + clipOffset]uint8

const clipOffset = 1024

// Kclip1 returns v clamped to [0, 255] for v in [-1024, 1279].
func Kclip1(v int) uint8 { return clip1[clipOffset+v] }

// Clip8b clamps any int to [0, 255].
func Clip8b(v int) uint8 {
	if uint(v) <= 255 {
		return uint8(v)
	}
	// v>>63 is 0 for positive, -1 for negative.
	return uint8(^(v >> 63) & 255)
}

func initClipTables() {
	for i := range clip1 {
		clip1[i] = Clip8b(i - clipOffset)
	}
}
