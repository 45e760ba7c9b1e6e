package theora

import "log/slog"

// DefaultBufferSize is the number of bytes requested from the source on each
// refill when Options.BufferSize is zero.
const DefaultBufferSize = 8192

// Options configures a Reader. A nil *Options uses the defaults.
type Options struct {
	// BufferSize is the number of bytes read from the source per refill
	// (default 8192).
	BufferSize int

	// IgnoreChecksum accepts pages whose CRC does not match their
	// contents. By default such pages are treated as corrupt and skipped.
	IgnoreChecksum bool

	// Strict makes ReadFrame return recoverable errors (sequence gaps,
	// undecodable packets, header failures) instead of skipping them.
	// Reading may continue after such an error.
	Strict bool

	// Logger receives recoverable events. nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the options used for a nil *Options.
func DefaultOptions() *Options {
	return &Options{BufferSize: DefaultBufferSize}
}

func (o *Options) bufferSize() int {
	if o.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return o.BufferSize
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
