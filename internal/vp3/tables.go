package vp3

// dezigzag maps a zig-zag scan position to the natural coefficient index
// (row*8 + column, row 0 at the bottom of the block).
var dezigzag = [64]uint8{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// modeAlphabets are the fixed rank-to-mode tables of mode schemes 1..6.
var modeAlphabets = [6][8]Mode{
	{ModeInterLastMV, ModeInterPriorLastMV, ModeInterMV, ModeInterNoMV, ModeIntra, ModeGoldenNoMV, ModeGoldenMV, ModeInterFourMV},
	{ModeInterLastMV, ModeInterPriorLastMV, ModeInterNoMV, ModeInterMV, ModeIntra, ModeGoldenNoMV, ModeGoldenMV, ModeInterFourMV},
	{ModeInterLastMV, ModeInterMV, ModeInterPriorLastMV, ModeInterNoMV, ModeIntra, ModeGoldenNoMV, ModeGoldenMV, ModeInterFourMV},
	{ModeInterLastMV, ModeInterMV, ModeInterNoMV, ModeInterPriorLastMV, ModeIntra, ModeGoldenNoMV, ModeGoldenMV, ModeInterFourMV},
	{ModeInterNoMV, ModeInterLastMV, ModeInterPriorLastMV, ModeInterMV, ModeIntra, ModeGoldenNoMV, ModeGoldenMV, ModeInterFourMV},
	{ModeInterNoMV, ModeGoldenNoMV, ModeInterLastMV, ModeInterPriorLastMV, ModeInterMV, ModeIntra, ModeGoldenMV, ModeInterFourMV},
}

// DC predictor weights for the left, lower-left, lower and lower-right
// neighbours, indexed by the mask of available neighbours (bit 0 left,
// bit 1 lower-left, bit 2 lower, bit 3 lower-right).
var dcWeights = [16]struct {
	w   [4]int
	div int
}{
	{[4]int{0, 0, 0, 0}, 1},
	{[4]int{1, 0, 0, 0}, 1},
	{[4]int{0, 1, 0, 0}, 1},
	{[4]int{1, 0, 0, 0}, 1},
	{[4]int{0, 0, 1, 0}, 1},
	{[4]int{1, 0, 1, 0}, 2},
	{[4]int{0, 0, 1, 0}, 1},
	{[4]int{29, -26, 29, 0}, 32},
	{[4]int{0, 0, 0, 1}, 1},
	{[4]int{75, 0, 0, 53}, 128},
	{[4]int{0, 1, 0, 1}, 2},
	{[4]int{75, 0, 0, 53}, 128},
	{[4]int{0, 0, 1, 0}, 1},
	{[4]int{75, 0, 0, 53}, 128},
	{[4]int{0, 3, 10, 3}, 16},
	{[4]int{29, -26, 29, 0}, 32},
}
