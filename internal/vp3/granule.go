package vp3

// Granule returns the granule position of the most recent data packet, or
// -1 before the first one.
func (d *Decoder) Granule() int64 { return d.granule }

// advanceGranule moves the granule position past one data packet. A key
// frame starts a new keyframe count and resets the inter frame count. An
// explicit position from the container overrides the running one.
func (d *Decoder) advanceGranule(key bool, explicit int64) {
	shift := uint(d.info.KeyframeGranuleShift)
	switch {
	case d.granule < 0:
		d.granule = 0
	case key:
		frames := d.granule & (1<<shift - 1)
		d.granule >>= shift
		d.granule += frames + 1
		d.granule <<= shift
	default:
		d.granule++
	}
	if explicit > -1 {
		d.granule = explicit
	}
}

// FrameIndex returns the frame number encoded in a granule position, or -1
// for a negative position.
func FrameIndex(granule int64, shift int) int64 {
	if granule < 0 {
		return -1
	}
	iframe := granule >> uint(shift)
	pframe := granule - iframe<<uint(shift)
	return iframe + pframe
}

// GranuleTime converts a granule position to seconds, or -1 for a negative
// position.
func (d *Decoder) GranuleTime(granule int64) float64 {
	return GranuleTime(&d.info, granule)
}

// GranuleTime converts a granule position to seconds using the stream's
// frame rate, or returns -1 for a negative position.
func GranuleTime(info *Info, granule int64) float64 {
	if granule < 0 || info.FPSNum == 0 {
		return -1
	}
	n := FrameIndex(granule, info.KeyframeGranuleShift)
	return float64(n) * float64(info.FPSDen) / float64(info.FPSNum)
}
