package theora

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/deepteams/theora/internal/ogg"
	"github.com/deepteams/theora/internal/vp3"
)

func init() {
	image.RegisterFormat("theora", ogg.CapturePattern, Decode, DecodeConfig)
}

// Errors returned by the decoder. The header and packet errors are shared
// with the codec layer, so errors.Is matches them however deeply wrapped.
var (
	ErrNotFormat = vp3.ErrNotFormat
	ErrBadHeader = vp3.ErrBadHeader
	ErrVersion   = vp3.ErrVersion
	ErrBadPacket = vp3.ErrBadPacket
	ErrNotReady  = vp3.ErrNotReady

	ErrStreamLoss = errors.New("theora: stream data lost")
	ErrNoStream   = errors.New("theora: no theora stream found")
	ErrNoFrames   = errors.New("theora: no video frames found")
)

// Codec types re-exported for callers.
type (
	Info        = vp3.Info
	Comment     = vp3.Comment
	PixelFormat = vp3.PixelFormat
	ColorSpace  = vp3.ColorSpace
)

// Chroma subsampling modes.
const (
	PF420 = vp3.PF420
	PF422 = vp3.PF422
	PF444 = vp3.PF444
)

// Decode reads the first frame of the first Theora stream in r and returns
// it as an *image.YCbCr cropped to the picture region.
func Decode(r io.Reader) (image.Image, error) {
	rd := NewReader(r, nil)
	defer rd.Close()

	f, err := rd.ReadFrame()
	if err == io.EOF {
		return nil, ErrNoFrames
	}
	if err != nil {
		return nil, err
	}
	return f.YCbCr(), nil
}

// DecodeConfig returns the picture size of the first Theora stream in r
// without decoding any frame.
func DecodeConfig(r io.Reader) (image.Config, error) {
	rd := NewReader(r, nil)
	defer rd.Close()

	info, err := rd.Info()
	if err != nil {
		return image.Config{}, fmt.Errorf("theora: reading headers: %w", err)
	}
	return image.Config{
		ColorModel: color.YCbCrModel,
		Width:      info.PicWidth,
		Height:     info.PicHeight,
	}, nil
}

// GranuleTime converts a granule position of a stream with the given
// headers to seconds. It returns -1 for a negative position.
func GranuleTime(info *Info, granule int64) float64 {
	return vp3.GranuleTime(info, granule)
}

// FrameIndex returns the zero-based frame number a granule position refers
// to, or -1 for a negative position.
func FrameIndex(info *Info, granule int64) int64 {
	return vp3.FrameIndex(granule, info.KeyframeGranuleShift)
}

// IsKeyframe reports whether a data packet holds a key frame. Header
// packets and empty packets report false.
func IsKeyframe(packet []byte) bool {
	return vp3.IsKeyframe(packet)
}
