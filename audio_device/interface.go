package audio_device

import "context"

// Source opens microphone capture streams.
type Source interface {
	Open(sampleRate int, frameLength int) (Stream, error)
}

// Stream is a running capture. Read blocks until one full frame of signed
// 16-bit mono samples is available; the returned slice is only valid until
// the next call to Read.
type Stream interface {
	Read() ([]int16, error)
	Close() error
}

// Player plays an audio file through the configured output device.
type Player interface {
	Play(ctx context.Context, path string) error
}
