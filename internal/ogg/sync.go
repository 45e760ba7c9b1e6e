package ogg

import "bytes"

// SyncState locates pages in a byte stream that may start mid-page or
// contain corrupt spans. Data is fed with Buffer/Wrote or Write; pages are
// taken out with PageOut or PageSeek.
type SyncState struct {
	data     []byte // backing storage; data[:fill] is valid
	fill     int
	returned int // bytes already consumed from the front

	unsynced    bool
	headerBytes int // size of the page header being assembled, 0 if none
	bodyBytes   int

	ignoreChecksum bool

	skipped int64 // total bytes discarded while searching for a page
	lastErr error // reason for the most recent resync
}

// NewSyncState returns an empty SyncState.
func NewSyncState() *SyncState {
	return &SyncState{}
}

// SetIgnoreChecksum disables CRC verification. Pages with a wrong checksum
// are then returned instead of being skipped.
func (s *SyncState) SetIgnoreChecksum(ignore bool) { s.ignoreChecksum = ignore }

// Reset discards all buffered data and sync state.
func (s *SyncState) Reset() {
	s.fill = 0
	s.returned = 0
	s.unsynced = false
	s.headerBytes = 0
	s.bodyBytes = 0
	s.lastErr = nil
}

// Skipped returns the number of bytes discarded while resynchronising.
func (s *SyncState) Skipped() int64 { return s.skipped }

// Err returns the reason for the most recent resynchronisation: ErrCapture
// or ErrChecksum, or nil if none has happened.
func (s *SyncState) Err() error { return s.lastErr }

// Buffer returns a slice of at least size bytes into which the caller may
// read new data, followed by a call to Wrote. Returned pages are invalidated.
func (s *SyncState) Buffer(size int) []byte {
	if s.returned > 0 {
		s.fill = copy(s.data, s.data[s.returned:s.fill])
		s.returned = 0
	}
	if size > len(s.data)-s.fill {
		// Over-allocate so small refills do not reallocate every time.
		n := size + s.fill + 4096
		tmp := make([]byte, n)
		copy(tmp, s.data[:s.fill])
		s.data = tmp
	}
	return s.data[s.fill : s.fill+size]
}

// Wrote records that n bytes were placed in the slice returned by Buffer.
func (s *SyncState) Wrote(n int) error {
	if n < 0 || s.fill+n > len(s.data) {
		return ErrOverflow
	}
	s.fill += n
	return nil
}

// Write appends p to the stream. It never fails.
func (s *SyncState) Write(p []byte) (int, error) {
	copy(s.Buffer(len(p)), p)
	s.fill += len(p)
	return len(p), nil
}

// Buffered returns the number of bytes not yet returned as pages.
func (s *SyncState) Buffered() int { return s.fill - s.returned }

// PageSeek tries to frame one page at the current position. It returns n > 0
// when a page of n bytes was stored in p, 0 when more data is needed to
// decide, and -n when n bytes were skipped looking for the next page. p may
// be nil to skip the page.
func (s *SyncState) PageSeek(p *Page) int {
	page := s.data[s.returned:s.fill]

	if s.headerBytes == 0 {
		if len(page) < HeaderSize {
			return 0
		}
		if string(page[:4]) != CapturePattern {
			return s.syncFail(page, ErrCapture)
		}
		hb := HeaderSize + int(page[26])
		if len(page) < hb {
			return 0
		}
		body := 0
		for _, v := range page[HeaderSize:hb] {
			body += int(v)
		}
		s.headerBytes = hb
		s.bodyBytes = body
	}

	n := s.headerBytes + s.bodyBytes
	if n > len(page) {
		return 0
	}
	header := page[:s.headerBytes]
	body := page[s.headerBytes:n]

	if !s.ignoreChecksum {
		stored := uint32(header[22]) | uint32(header[23])<<8 | uint32(header[24])<<16 | uint32(header[25])<<24
		if pageChecksum(header, body) != stored {
			return s.syncFail(page, ErrChecksum)
		}
	}

	if p != nil {
		p.Header = header
		p.Body = body
	}
	s.unsynced = false
	s.returned += n
	s.headerBytes = 0
	s.bodyBytes = 0
	return n
}

// syncFail abandons the candidate page at the front of page and skips to the
// next byte that could start a capture pattern.
func (s *SyncState) syncFail(page []byte, reason error) int {
	s.headerBytes = 0
	s.bodyBytes = 0
	s.lastErr = reason

	skip := len(page)
	if i := bytes.IndexByte(page[1:], CapturePattern[0]); i >= 0 {
		skip = i + 1
	}
	s.returned += skip
	s.skipped += int64(skip)
	return -skip
}

// PageOut returns the next page. It reports StatusHole once each time sync
// is lost, then keeps scanning silently on later calls until a page is found.
func (s *SyncState) PageOut(p *Page) Status {
	for {
		n := s.PageSeek(p)
		switch {
		case n > 0:
			return StatusOK
		case n == 0:
			return StatusNeedMore
		}
		if !s.unsynced {
			s.unsynced = true
			return StatusHole
		}
	}
}
