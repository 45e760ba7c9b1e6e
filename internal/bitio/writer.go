package bitio

// NewWriter creates an empty Cursor for writing, with an initial buffer
// pre-allocated for expectedSize bytes.
func NewWriter(expectedSize int) *Cursor {
	if expectedSize < 256 {
		expectedSize = 256
	}
	return &Cursor{buf: make([]byte, expectedSize)}
}

// grow ensures at least n bytes of zeroed capacity remain at c.pos. The
// buffer grows geometrically so appends stay amortised O(1).
func (c *Cursor) grow(n int) {
	if c.pos+n <= len(c.buf) {
		return
	}
	newSize := len(c.buf) * 3 / 2
	if need := c.pos + n; newSize < need {
		newSize = need
	}
	// Round up to the next 256-byte boundary.
	newSize = ((newSize >> 8) + 1) << 8
	tmp := make([]byte, newSize)
	copy(tmp, c.buf[:c.Bytes()])
	c.buf = tmp
}

// WriteBits appends the low n bits (0..32) of v in LSB-first order.
func (c *Cursor) WriteBits(v uint32, n int) {
	if n <= 0 {
		return
	}
	c.grow(5)
	acc := (uint64(v) & (1<<uint(n) - 1)) << uint(c.bit)
	total := c.bit + n
	i := 0
	for ; total >= 8; total -= 8 {
		c.buf[c.pos+i] |= byte(acc)
		acc >>= 8
		i++
	}
	if total > 0 {
		c.buf[c.pos+i] |= byte(acc)
	}
	c.pos += i
	c.bit = total
	c.storage = c.Bytes()
}

// WriteBitsMSB appends the low n bits (0..32) of v in MSB-first order.
func (c *Cursor) WriteBitsMSB(v uint32, n int) {
	if n <= 0 {
		return
	}
	c.grow(5)
	total := c.bit + n
	// Place the field in a 40-bit window whose top byte is buf[pos].
	acc := (uint64(v) & (1<<uint(n) - 1)) << uint(40-total)
	for i := 0; i < (total+7)/8; i++ {
		c.buf[c.pos+i] |= byte(acc >> uint(32-8*i))
	}
	c.pos += total >> 3
	c.bit = total & 7
	c.storage = c.Bytes()
}

// WriteBytes appends whole bytes in MSB-first order.
func (c *Cursor) WriteBytes(p []byte) {
	for _, b := range p {
		c.WriteBitsMSB(uint32(b), 8)
	}
}

// Data returns the written bytes, including any partial final byte.
func (c *Cursor) Data() []byte {
	return c.buf[:c.Bytes()]
}
