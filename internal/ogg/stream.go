package ogg

// StreamState reassembles the packets of a single logical stream from its
// pages. Pages are submitted in arrival order with PageIn; a gap in the page
// sequence numbers drops the packet it interrupted and is reported once by
// PacketOut as StatusHole.
type StreamState struct {
	serial uint32

	body         []byte
	bodyReturned int

	lacing         []int   // segment sizes plus lacing markers
	granules       []int64 // granule for the segment ending a packet, else -1
	lacingPacket   int     // one past the last segment of a complete packet
	lacingReturned int

	nextPage int64 // expected page sequence, -1 before the first page
	packetNo int64
	eos      bool
}

// NewStreamState returns a StreamState accepting pages with the given
// serial number.
func NewStreamState(serial uint32) *StreamState {
	return &StreamState{serial: serial, nextPage: -1}
}

// Serial returns the stream's serial number.
func (s *StreamState) Serial() uint32 { return s.serial }

// EOS reports whether the end-of-stream page has been submitted.
func (s *StreamState) EOS() bool { return s.eos }

// Reset drops all buffered data and returns to the initial state.
func (s *StreamState) Reset() {
	s.body = s.body[:0]
	s.bodyReturned = 0
	s.lacing = s.lacing[:0]
	s.granules = s.granules[:0]
	s.lacingPacket = 0
	s.lacingReturned = 0
	s.nextPage = -1
	s.packetNo = 0
	s.eos = false
}

// compact releases data already handed out as packets.
func (s *StreamState) compact() {
	if s.bodyReturned > 0 {
		s.body = s.body[:copy(s.body, s.body[s.bodyReturned:])]
		s.bodyReturned = 0
	}
	if r := s.lacingReturned; r > 0 {
		s.lacing = s.lacing[:copy(s.lacing, s.lacing[r:])]
		s.granules = s.granules[:copy(s.granules, s.granules[r:])]
		s.lacingPacket -= r
		s.lacingReturned = 0
	}
}

// PageIn adds the contents of p to the stream.
func (s *StreamState) PageIn(p *Page) error {
	s.compact()

	if p.Serial() != s.serial {
		return ErrSerial
	}
	if p.Version() > 0 {
		return ErrVersion
	}

	lacing := p.Lacing()
	body := p.Body
	bos := p.BOS()
	seq := int64(p.Sequence())

	if seq != s.nextPage {
		// Drop the packet the gap interrupted.
		for _, v := range s.lacing[s.lacingPacket:] {
			s.body = s.body[:len(s.body)-v&0xff]
		}
		s.lacing = s.lacing[:s.lacingPacket]
		s.granules = s.granules[:s.lacingPacket]

		if s.nextPage != -1 {
			s.lacing = append(s.lacing, lacingHole)
			s.granules = append(s.granules, -1)
			s.lacingPacket++
		}
	}

	seg := 0
	if p.Continued() {
		n := len(s.lacing)
		if n < 1 || s.lacing[n-1]&0xff < 255 || s.lacing[n-1] == lacingHole {
			// Nothing to continue: skip the orphaned tail.
			bos = false
			for ; seg < len(lacing); seg++ {
				v := int(lacing[seg])
				body = body[v:]
				if v < 255 {
					seg++
					break
				}
			}
		}
	}

	s.body = append(s.body, body...)

	saved := -1
	for ; seg < len(lacing); seg++ {
		v := int(lacing[seg])
		if bos {
			v |= lacingBOS
			bos = false
		}
		s.lacing = append(s.lacing, v)
		s.granules = append(s.granules, -1)
		if v&0xff < 255 {
			saved = len(s.lacing) - 1
			s.lacingPacket = len(s.lacing)
		}
	}
	if saved != -1 {
		s.granules[saved] = p.GranulePos()
	}

	if p.EOS() {
		s.eos = true
		if n := len(s.lacing); n > 0 {
			s.lacing[n-1] |= lacingEOS
		}
	}

	s.nextPage = seq + 1
	return nil
}

// PacketOut extracts the next complete packet into pkt.
func (s *StreamState) PacketOut(pkt *Packet) Status {
	return s.packetOut(pkt, true)
}

// PacketPeek returns the next packet like PacketOut without consuming it.
// pkt may be nil to only test for availability.
func (s *StreamState) PacketPeek(pkt *Packet) Status {
	return s.packetOut(pkt, false)
}

func (s *StreamState) packetOut(pkt *Packet, advance bool) Status {
	ptr := s.lacingReturned
	if s.lacingPacket <= ptr {
		return StatusNeedMore
	}

	if s.lacing[ptr]&lacingHole != 0 {
		if advance {
			s.lacingReturned++
			s.packetNo++
		}
		return StatusHole
	}

	if pkt == nil && !advance {
		return StatusOK
	}

	v := s.lacing[ptr]
	size := v & 0xff
	n := size
	eos := v&lacingEOS != 0
	bos := v&lacingBOS != 0
	for size == 255 {
		ptr++
		v = s.lacing[ptr]
		size = v & 0xff
		if v&lacingEOS != 0 {
			eos = true
		}
		n += size
	}

	if pkt != nil {
		pkt.Data = s.body[s.bodyReturned : s.bodyReturned+n]
		pkt.BOS = bos
		pkt.EOS = eos
		pkt.GranulePos = s.granules[ptr]
		pkt.PacketNo = s.packetNo
	}

	if advance {
		s.bodyReturned += n
		s.lacingReturned = ptr + 1
		s.packetNo++
	}
	return StatusOK
}
