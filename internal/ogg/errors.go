package ogg

import "errors"

var (
	// ErrCapture reports bytes that do not begin with the page capture pattern.
	ErrCapture = errors.New("ogg: capture pattern not found")

	// ErrChecksum reports a page whose stored CRC does not match its contents.
	ErrChecksum = errors.New("ogg: page checksum mismatch")

	// ErrSerial reports a page submitted to the stream of another serial number.
	ErrSerial = errors.New("ogg: page serial number does not match stream")

	// ErrVersion reports a page with a non-zero stream structure version.
	ErrVersion = errors.New("ogg: unsupported page version")

	// ErrOverflow reports a Wrote count larger than the buffer handed out.
	ErrOverflow = errors.New("ogg: wrote past end of sync buffer")

	// ErrPacketSize reports a packet too large to describe with lacing values.
	ErrPacketSize = errors.New("ogg: packet too large")
)
