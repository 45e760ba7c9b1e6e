package ogg

// Packet is one reassembled codec packet. Data aliases the StreamState body
// buffer and is valid until the next PageIn on that stream.
type Packet struct {
	Data       []byte
	BOS        bool  // first packet of the logical stream
	EOS        bool  // last packet of the logical stream
	GranulePos int64 // granule of the page the packet ends on, -1 if not the last on it
	PacketNo   int64 // sequence number within the stream, counting holes
}
