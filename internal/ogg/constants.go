// Package ogg implements the Ogg bitstream framing layer: locating and
// verifying pages in an arbitrary byte stream, reassembling the packets of
// one logical stream from its pages, and writing packets back out as pages.
package ogg

// Page layout.
const (
	CapturePattern = "OggS" // first four bytes of every page
	HeaderSize     = 27     // fixed header bytes before the segment table
	MaxSegments    = 255    // segment table entries per page
	MaxPageSize    = HeaderSize + MaxSegments + MaxSegments*255
)

// Page header flags (byte 5).
const (
	FlagContinued = 0x01 // first packet continues from the previous page
	FlagBOS       = 0x02 // first page of a logical stream
	FlagEOS       = 0x04 // last page of a logical stream
)

// Lacing value markers. The low 8 bits hold the segment size.
const (
	lacingBOS  = 0x100
	lacingEOS  = 0x200
	lacingHole = 0x400
)

// Status is the outcome of a page or packet extraction step.
type Status int

const (
	StatusHole     Status = -1 // data was lost or skipped before this point
	StatusNeedMore Status = 0  // more input is required
	StatusOK       Status = 1  // a page or packet was returned
)

func (s Status) String() string {
	switch s {
	case StatusHole:
		return "hole"
	case StatusNeedMore:
		return "need-more"
	case StatusOK:
		return "ok"
	}
	return "unknown"
}
