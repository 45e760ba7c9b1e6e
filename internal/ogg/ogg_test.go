package ogg

import (
	"bytes"
	"errors"
	"testing"
)

// writeStream lays packets out with a PageWriter and returns the bytes.
// With limit 0 every packet gets its own page.
func writeStream(t *testing.T, serial uint32, limit int, packets ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	pw := NewPageWriter(&buf, serial)
	pw.SegmentLimit = limit
	for i, p := range packets {
		if err := pw.WritePacket(p, int64(i)); err != nil {
			t.Fatalf("WritePacket: %v", err)
		}
		if limit == 0 && i < len(packets)-1 {
			if err := pw.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
		}
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

// drain feeds data through a SyncState and StreamState and collects every
// packet, recording holes as nil entries.
func drain(t *testing.T, data []byte, serial uint32) [][]byte {
	t.Helper()
	sy := NewSyncState()
	if _, err := sy.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	st := NewStreamState(serial)
	var out [][]byte
	var pg Page
	for {
		switch sy.PageOut(&pg) {
		case StatusNeedMore:
			return out
		case StatusHole:
			continue
		}
		if err := st.PageIn(&pg); err != nil {
			t.Fatalf("PageIn: %v", err)
		}
		for {
			var pk Packet
			s := st.PacketOut(&pk)
			if s == StatusNeedMore {
				break
			}
			if s == StatusHole {
				out = append(out, nil)
				continue
			}
			out = append(out, append([]byte(nil), pk.Data...))
		}
	}
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	return b
}

func TestChecksum_KnownVector(t *testing.T) {
	// CRC-32/POSIX check value 0x765E7680 without its final inversion.
	if got := Checksum([]byte("123456789")); got != 0x89A1897F {
		t.Errorf("Checksum = 0x%08X, want 0x89A1897F", got)
	}
	if got := Checksum(nil); got != 0 {
		t.Errorf("Checksum(nil) = 0x%08X, want 0", got)
	}
}

func TestPage_ChecksumProperty(t *testing.T) {
	body := pattern(300, 3)
	p := NewPage(FlagBOS, 42, 7, 0, []byte{255, 45}, body)
	if !p.Verify() {
		t.Fatal("fresh page does not verify")
	}

	// Rehashing with the CRC field zeroed reproduces the stored value.
	raw := p.Bytes()
	stored := raw[22:26:26]
	want := uint32(stored[0]) | uint32(stored[1])<<8 | uint32(stored[2])<<16 | uint32(stored[3])<<24
	copy(raw[22:26], []byte{0, 0, 0, 0})
	if got := Checksum(raw); got != want {
		t.Errorf("rehash = 0x%08X, stored 0x%08X", got, want)
	}

	for _, i := range []int{0, 1, 150, 299} {
		q := NewPage(FlagBOS, 42, 7, 0, []byte{255, 45}, append([]byte(nil), body...))
		q.Body[i] ^= 0x01
		if q.Verify() {
			t.Errorf("flipping body byte %d left checksum valid", i)
		}
	}
}

func TestPage_Accessors(t *testing.T) {
	p := NewPage(FlagContinued|FlagEOS, -1, 0xCAFEBABE, 9, []byte{10, 255, 0}, make([]byte, 265))
	if !p.Continued() || !p.EOS() || p.BOS() {
		t.Errorf("flags = %#x", p.Flags())
	}
	if p.GranulePos() != -1 {
		t.Errorf("GranulePos = %d, want -1", p.GranulePos())
	}
	if p.Serial() != 0xCAFEBABE || p.Sequence() != 9 {
		t.Errorf("Serial/Sequence = %#x/%d", p.Serial(), p.Sequence())
	}
	if p.Packets() != 2 {
		t.Errorf("Packets = %d, want 2", p.Packets())
	}
	if p.Len() != HeaderSize+3+265 {
		t.Errorf("Len = %d", p.Len())
	}
}

func TestDemux_SinglePageSinglePacket(t *testing.T) {
	pkt := pattern(100, 1)
	data := writeStream(t, 5, 0, pkt)

	sy := NewSyncState()
	sy.Write(data)
	var pg Page
	if s := sy.PageOut(&pg); s != StatusOK {
		t.Fatalf("PageOut = %v, want ok", s)
	}
	if !pg.BOS() || !pg.EOS() {
		t.Errorf("flags = %#x, want BOS|EOS", pg.Flags())
	}

	st := NewStreamState(5)
	if err := st.PageIn(&pg); err != nil {
		t.Fatalf("PageIn: %v", err)
	}
	var out Packet
	if s := st.PacketOut(&out); s != StatusOK {
		t.Fatalf("PacketOut = %v, want ok", s)
	}
	if !bytes.Equal(out.Data, pkt) {
		t.Error("packet bytes differ")
	}
	if !out.BOS || !out.EOS || out.GranulePos != 0 || out.PacketNo != 0 {
		t.Errorf("packet = bos %v eos %v granule %d no %d", out.BOS, out.EOS, out.GranulePos, out.PacketNo)
	}
	if s := st.PacketOut(&out); s != StatusNeedMore {
		t.Errorf("second PacketOut = %v, want need-more", s)
	}
	if s := sy.PageOut(&pg); s != StatusNeedMore {
		t.Errorf("second PageOut = %v, want need-more", s)
	}
}

func TestSyncState_Buffered(t *testing.T) {
	data := writeStream(t, 5, 0, pattern(100, 1))
	next := writeStream(t, 5, 0, pattern(40, 2))

	sy := NewSyncState()
	sy.Write(data)
	sy.Write(next[:10])
	if n := sy.Buffered(); n != len(data)+10 {
		t.Fatalf("Buffered = %d, want %d", n, len(data)+10)
	}
	var pg Page
	if s := sy.PageOut(&pg); s != StatusOK {
		t.Fatalf("PageOut = %v, want ok", s)
	}
	if n := sy.Buffered(); n != 10 {
		t.Errorf("after one page: Buffered = %d, want 10", n)
	}
	if s := sy.PageOut(&pg); s != StatusNeedMore {
		t.Fatalf("partial PageOut = %v, want need-more", s)
	}
	if n := sy.Buffered(); n != 10 {
		t.Errorf("after partial page: Buffered = %d, want 10", n)
	}
	sy.Write(next[10:])
	if s := sy.PageOut(&pg); s != StatusOK || sy.Buffered() != 0 {
		t.Errorf("PageOut = %v with %d bytes left, want ok with 0", s, sy.Buffered())
	}
}

func TestDemux_PacketSpansPages(t *testing.T) {
	pkt := pattern(700, 9) // lacing 255,255,190
	data := writeStream(t, 1, 2, pkt)

	sy := NewSyncState()
	sy.Write(data)
	var pages []Page
	var pg Page
	for sy.PageOut(&pg) == StatusOK {
		pages = append(pages, pg)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if !pages[1].Continued() {
		t.Error("second page not flagged continued")
	}
	if pages[0].GranulePos() != -1 {
		t.Errorf("first page granule = %d, want -1", pages[0].GranulePos())
	}

	got := drain(t, data, 1)
	if len(got) != 1 || !bytes.Equal(got[0], pkt) {
		t.Fatalf("reassembled %d packets; want the original one", len(got))
	}
}

func TestDemux_MultiplePacketsPerPage(t *testing.T) {
	pkts := [][]byte{pattern(10, 1), pattern(0, 0), pattern(255, 2), pattern(3, 3)}
	var buf bytes.Buffer
	pw := NewPageWriter(&buf, 3)
	for i, p := range pkts {
		pw.WritePacket(p, int64(i))
	}
	pw.Close()

	got := drain(t, buf.Bytes(), 3)
	if len(got) != len(pkts) {
		t.Fatalf("got %d packets, want %d", len(got), len(pkts))
	}
	for i := range pkts {
		if !bytes.Equal(got[i], pkts[i]) {
			t.Errorf("packet %d differs", i)
		}
	}
}

func TestDemux_ByteAtATime(t *testing.T) {
	pkts := [][]byte{pattern(30, 1), pattern(600, 2), pattern(5, 3)}
	data := writeStream(t, 11, 0, pkts...)

	sy := NewSyncState()
	st := NewStreamState(11)
	var got [][]byte
	var pg Page
	for _, b := range data {
		buf := sy.Buffer(1)
		buf[0] = b
		if err := sy.Wrote(1); err != nil {
			t.Fatalf("Wrote: %v", err)
		}
		for sy.PageOut(&pg) == StatusOK {
			st.PageIn(&pg)
			var pk Packet
			for st.PacketOut(&pk) == StatusOK {
				got = append(got, append([]byte(nil), pk.Data...))
			}
		}
	}
	if len(got) != 3 {
		t.Fatalf("got %d packets, want 3", len(got))
	}
	for i := range pkts {
		if !bytes.Equal(got[i], pkts[i]) {
			t.Errorf("packet %d differs", i)
		}
	}
}

func TestDemux_ResyncAfterCorruptCapture(t *testing.T) {
	pkts := [][]byte{pattern(40, 1), pattern(40, 2), pattern(40, 3)}
	data := writeStream(t, 2, 0, pkts...)
	pageLen := HeaderSize + 1 + 40

	// Leading garbage, then break the capture pattern of the second page.
	stream := append([]byte("garbage"), data...)
	stream[7+pageLen] = 'X'

	sy := NewSyncState()
	sy.Write(stream)
	st := NewStreamState(2)
	var pg Page
	var statuses []Status
	var packets [][]byte
	for {
		s := sy.PageOut(&pg)
		statuses = append(statuses, s)
		if s == StatusNeedMore {
			break
		}
		if s == StatusOK {
			st.PageIn(&pg)
			var pk Packet
			for {
				ps := st.PacketOut(&pk)
				if ps == StatusNeedMore {
					break
				}
				if ps == StatusHole {
					packets = append(packets, nil)
					continue
				}
				packets = append(packets, append([]byte(nil), pk.Data...))
			}
		}
	}

	want := []Status{StatusHole, StatusOK, StatusHole, StatusOK, StatusNeedMore}
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", statuses, want)
		}
	}
	if !errors.Is(sy.Err(), ErrCapture) {
		t.Errorf("Err = %v, want ErrCapture", sy.Err())
	}
	if sy.Skipped() != int64(7+pageLen) {
		t.Errorf("Skipped = %d, want %d", sy.Skipped(), 7+pageLen)
	}

	// First packet survives; the gap is reported before the third.
	if len(packets) != 3 || !bytes.Equal(packets[0], pkts[0]) || packets[1] != nil || !bytes.Equal(packets[2], pkts[2]) {
		t.Errorf("packets = %d entries, want [p0, hole, p2]", len(packets))
	}
}

func TestDemux_ChecksumMismatch(t *testing.T) {
	data := writeStream(t, 4, 0, pattern(20, 1))
	data[HeaderSize+1+5] ^= 0xFF

	sy := NewSyncState()
	sy.Write(data)
	var pg Page
	if s := sy.PageOut(&pg); s != StatusHole {
		t.Fatalf("PageOut = %v, want hole", s)
	}
	if !errors.Is(sy.Err(), ErrChecksum) {
		t.Errorf("Err = %v, want ErrChecksum", sy.Err())
	}
	if s := sy.PageOut(&pg); s != StatusNeedMore {
		t.Errorf("PageOut after resync = %v, want need-more", s)
	}

	sy = NewSyncState()
	sy.SetIgnoreChecksum(true)
	sy.Write(data)
	if s := sy.PageOut(&pg); s != StatusOK {
		t.Errorf("PageOut ignoring checksum = %v, want ok", s)
	}
}

func TestStream_SequenceGap(t *testing.T) {
	p0 := NewPage(FlagBOS, 0, 8, 0, []byte{4}, []byte("abcd"))
	p2 := NewPage(0, 2, 8, 2, []byte{3}, []byte("xyz"))

	st := NewStreamState(8)
	st.PageIn(p0)
	st.PageIn(p2)

	var pk Packet
	if s := st.PacketOut(&pk); s != StatusOK || string(pk.Data) != "abcd" {
		t.Fatalf("first = %v %q", s, pk.Data)
	}
	if s := st.PacketPeek(&pk); s != StatusHole {
		t.Fatalf("peek = %v, want hole", s)
	}
	if s := st.PacketOut(&pk); s != StatusHole {
		t.Fatalf("second = %v, want hole", s)
	}
	if s := st.PacketOut(&pk); s != StatusOK || string(pk.Data) != "xyz" || pk.PacketNo != 2 {
		t.Fatalf("third = %v %q no %d", s, pk.Data, pk.PacketNo)
	}
}

func TestStream_GapDropsPartialAndOrphanTail(t *testing.T) {
	// Page 0 starts a packet that page 1 would finish; page 1 is lost and
	// page 2 begins with the tail of yet another packet.
	p0 := NewPage(FlagBOS, -1, 1, 0, []byte{3, 255}, append([]byte("one"), pattern(255, 0)...))
	p2 := NewPage(FlagContinued, 9, 1, 2, []byte{255, 10, 2}, append(append(pattern(255, 1), pattern(10, 2)...), 'o', 'k'))

	st := NewStreamState(1)
	st.PageIn(p0)
	var pk Packet
	if s := st.PacketOut(&pk); s != StatusOK || string(pk.Data) != "one" {
		t.Fatalf("first = %v %q", s, pk.Data)
	}
	if s := st.PacketOut(&pk); s != StatusNeedMore {
		t.Fatalf("partial packet returned early: %v", s)
	}

	st.PageIn(p2)
	if s := st.PacketOut(&pk); s != StatusHole {
		t.Fatalf("expected hole, got %v", s)
	}
	if s := st.PacketOut(&pk); s != StatusOK || string(pk.Data) != "ok" || pk.GranulePos != 9 {
		t.Fatalf("after gap = %v %q granule %d", s, pk.Data, pk.GranulePos)
	}
}

func TestStream_FirstPageMidStream(t *testing.T) {
	// Joining at sequence 17 reports no gap.
	st := NewStreamState(3)
	st.PageIn(NewPage(0, 5, 3, 17, []byte{1}, []byte{0x42}))
	var pk Packet
	if s := st.PacketOut(&pk); s != StatusOK {
		t.Errorf("PacketOut = %v, want ok", s)
	}
}

func TestStream_RejectsForeignPage(t *testing.T) {
	st := NewStreamState(1)
	if err := st.PageIn(NewPage(0, 0, 2, 0, []byte{1}, []byte{0})); !errors.Is(err, ErrSerial) {
		t.Errorf("PageIn foreign serial = %v, want ErrSerial", err)
	}
	p := NewPage(0, 0, 1, 0, []byte{1}, []byte{0})
	p.Header[4] = 1
	if err := st.PageIn(p); !errors.Is(err, ErrVersion) {
		t.Errorf("PageIn version 1 = %v, want ErrVersion", err)
	}
}

func TestPageWriter_LacingBoundaries(t *testing.T) {
	for _, n := range []int{0, 1, 254, 255, 256, 510, 1000} {
		data := writeStream(t, 6, 0, pattern(n, byte(n)))
		got := drain(t, data, 6)
		if len(got) != 1 || !bytes.Equal(got[0], pattern(n, byte(n))) {
			t.Errorf("size %d: reassembled %d packets", n, len(got))
		}
	}
}
