package ogg

// The page checksum is an unreflected CRC-32 with polynomial 0x04C11DB7,
// zero initial value and no final xor. It differs from hash/crc32's IEEE
// table, which is the bit-reversed form.

var crcTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := range crcTable {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = r<<1 ^ poly
			} else {
				r <<= 1
			}
		}
		crcTable[i] = r
	}
}

// Checksum returns the Ogg CRC-32 of data.
func Checksum(data []byte) uint32 {
	return crcUpdate(0, data)
}

func crcUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

var zeroCRC [4]byte

// pageChecksum computes the CRC of a page as if its CRC field were zero,
// without modifying the header.
func pageChecksum(header, body []byte) uint32 {
	crc := crcUpdate(0, header[:22])
	crc = crcUpdate(crc, zeroCRC[:])
	crc = crcUpdate(crc, header[26:])
	return crcUpdate(crc, body)
}
