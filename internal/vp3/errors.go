package vp3

import "errors"

var (
	// ErrNotFormat is returned for a header packet that does not carry the
	// codec's type flag and magic.
	ErrNotFormat = errors.New("vp3: not a theora header")

	// ErrBadHeader is returned for a header packet that is malformed or
	// arrives out of order.
	ErrBadHeader = errors.New("vp3: bad header")

	// ErrVersion is returned when the identification header declares an
	// incompatible bitstream version.
	ErrVersion = errors.New("vp3: unsupported bitstream version")

	// ErrBadPacket is returned for a data packet that cannot be decoded.
	// The reference frames are left untouched.
	ErrBadPacket = errors.New("vp3: bad packet")

	// ErrNotReady is returned when a data packet arrives before all three
	// header packets have been decoded.
	ErrNotReady = errors.New("vp3: headers incomplete")

	// ErrGeometry is returned for frame dimensions that cannot be decoded.
	ErrGeometry = errors.New("vp3: invalid frame geometry")
)
