package bitio

import (
	"errors"
	"math/bits"
)

// Exhausted is the value returned by every read and peek method once the
// requested bits extend past the end of the data.
const Exhausted = -1

// MaxReadBits is the widest field a single read can return.
const MaxReadBits = 32

// ErrExhausted reports that a packet was truncated: a read ran past the end
// of the available data.
var ErrExhausted = errors.New("bitio: read past end of data")

// Cursor is a packed bit cursor over a byte buffer.
//
// Two bit orders are supported over the same position state. The LSB-first
// methods (ReadBits, PeekBits) take bits starting from the least significant
// end of each byte; on a byte boundary a 32-bit read is a little-endian
// integer, as the comment header stores its lengths. The MSB-first methods
// (ReadBitsMSB, PeekBitsMSB, ReadBitMSB) take bits starting from the most
// significant end, as the video payload packs them. Mixing the two orders is
// only meaningful at byte boundaries.
//
// A read that would run past the end returns Exhausted but still advances the
// position by the requested width, so callers that keep their own bit
// arithmetic stay consistent. The condition is sticky and reported by
// IsExhausted.
type Cursor struct {
	buf     []byte // backing buffer
	storage int    // number of valid bytes in buf
	pos     int    // current byte position
	bit     int    // bits consumed from buf[pos], always in [0, 8)
	over    bool   // a read ran past storage
}

// NewReader creates a Cursor positioned at the first bit of data.
func NewReader(data []byte) *Cursor {
	c := &Cursor{}
	c.Reset(data)
	return c
}

// Reset rewinds the cursor over a new buffer, reusing the struct.
func (c *Cursor) Reset(data []byte) {
	c.buf = data
	c.storage = len(data)
	c.pos = 0
	c.bit = 0
	c.over = false
}

// avail returns the number of unread bits.
func (c *Cursor) avail() int {
	return (c.storage-c.pos)*8 - c.bit
}

// Skip advances the position by n bits without reading them.
func (c *Cursor) Skip(n int) {
	total := c.bit + n
	c.pos += total >> 3
	c.bit = total & 7
}

// PeekBits returns the next n bits (0..32) in LSB-first order without
// consuming them, or Exhausted if fewer than n bits remain.
func (c *Cursor) PeekBits(n int) int {
	if n <= 0 {
		return 0
	}
	if n > c.avail() {
		return Exhausted
	}
	v := uint64(c.buf[c.pos]) >> uint(c.bit)
	got := 8 - c.bit
	for i := 1; got < n; i++ {
		v |= uint64(c.buf[c.pos+i]) << uint(got)
		got += 8
	}
	return int(v & (1<<uint(n) - 1))
}

// ReadBits consumes n bits (0..32) in LSB-first order.
func (c *Cursor) ReadBits(n int) int {
	v := c.PeekBits(n)
	if v == Exhausted {
		c.over = true
	}
	c.Skip(n)
	return v
}

// PeekBitsMSB returns the next n bits (0..32) in MSB-first order without
// consuming them, or Exhausted if fewer than n bits remain.
func (c *Cursor) PeekBitsMSB(n int) int {
	if n <= 0 {
		return 0
	}
	if n > c.avail() {
		return Exhausted
	}
	v := uint64(c.buf[c.pos] & (0xff >> uint(c.bit)))
	got := 8 - c.bit
	for i := 1; got < n; i++ {
		v = v<<8 | uint64(c.buf[c.pos+i])
		got += 8
	}
	return int(v >> uint(got-n))
}

// ReadBitsMSB consumes n bits (0..32) in MSB-first order.
func (c *Cursor) ReadBitsMSB(n int) int {
	v := c.PeekBitsMSB(n)
	if v == Exhausted {
		c.over = true
	}
	c.Skip(n)
	return v
}

// ReadBitMSB consumes a single bit in MSB-first order.
func (c *Cursor) ReadBitMSB() int {
	if c.pos >= c.storage {
		c.over = true
		c.Skip(1)
		return Exhausted
	}
	v := int(c.buf[c.pos]>>uint(7-c.bit)) & 1
	c.Skip(1)
	return v
}

// IsExhausted reports whether any read has run past the end of the data.
func (c *Cursor) IsExhausted() bool {
	return c.over
}

// Err returns ErrExhausted once a read has run past the end, nil otherwise.
func (c *Cursor) Err() error {
	if c.over {
		return ErrExhausted
	}
	return nil
}

// Bytes returns the number of bytes touched so far, counting a partially
// consumed byte as whole.
func (c *Cursor) Bytes() int {
	return c.pos + (c.bit+7)/8
}

// Bits returns the number of bits consumed (or written) so far.
func (c *Cursor) Bits() int {
	return c.pos*8 + c.bit
}

// BytePos returns the current byte position.
func (c *Cursor) BytePos() int { return c.pos }

// BitOffset returns the number of bits consumed from the current byte.
func (c *Cursor) BitOffset() int { return c.bit }

// Ilog returns the number of bits needed to represent v (0 for v == 0).
func Ilog(v uint32) int {
	return bits.Len32(v)
}
