package huffman

// Table layout of the 80 token trees carried by a setup header.
const (
	NumTables    = 80
	DCOffset     = 0  // 16 DC tables
	ACOffset     = 16 // four groups of 16 AC tables
	NumChoices   = 16 // tables selectable per group
	ChoiceBits   = 4
	ACThreshold2 = 5  // last coefficient index using AC group 0
	ACThreshold3 = 14 // last index of group 1
	ACThreshold4 = 27 // last index of group 2
)

// DCT token alphabet.
const (
	TokenEOB        = 0
	TokenEOBPair    = 1
	TokenEOBTriple  = 2
	TokenRepeatRun  = 3 // EOB run of 4..7 blocks
	TokenRepeatRun2 = 4 // 8..15
	TokenRepeatRun3 = 5 // 16..31
	TokenRepeatRun4 = 6 // up to 4095, 0 means every remaining block

	TokenShortZRL = 7 // zero run of 1..8
	TokenZRL      = 8 // zero run of 1..64

	TokenOne      = 9
	TokenMinusOne = 10
	TokenTwo      = 11
	TokenMinusTwo = 12

	TokenCat2 = 13 // ±3..±6, four tokens
	TokenCat3 = 17 // ±7..8
	TokenCat4 = 18 // ±9..12
	TokenCat5 = 19 // ±13..20
	TokenCat6 = 20 // ±21..36
	TokenCat7 = 21 // ±37..68
	TokenCat8 = 22 // ±69..580

	TokenRunCat1  = 23 // zero run of 1..5 then ±1, five tokens
	TokenRunCat1B = 28 // run 6..9 then ±1
	TokenRunCat1C = 29 // run 10..17 then ±1
	TokenRunCat2  = 30 // run 1 then ±2..3
	TokenRunCat2B = 31 // run 2..3 then ±2..3

	NumTokens = 32
)

// ExtraBits is the number of raw bits following each token.
var ExtraBits = [NumTokens]uint8{
	0, 0, 0, 2, 3, 4, 12, 3, 6, // EOB runs and zero runs
	0, 0, 0, 0, // ±1, ±2
	1, 1, 1, 1, 2, 3, 4, 5, 6, 10, // value categories
	1, 1, 1, 1, 1, 3, 4, 2, 3, // run categories
}

// IsEOBRun reports whether tok ends blocks rather than carrying coefficients.
func IsEOBRun(tok int) bool { return tok <= TokenRepeatRun4 }

// ACGroup returns the table group offset for coefficient index ci.
func ACGroup(ci int) int {
	switch {
	case ci <= ACThreshold2:
		return ACOffset
	case ci <= ACThreshold3:
		return ACOffset + NumChoices
	case ci <= ACThreshold4:
		return ACOffset + 2*NumChoices
	}
	return ACOffset + 3*NumChoices
}
