package wake_word

import "context"

// Detector scans fixed-size frames of 16-bit mono audio for the wake word.
// Process returns the index of the detected keyword, or -1 when none was heard.
type Detector interface {
	Process(frame []int16) (int, error)
	SampleRate() int
	FrameLength() int
	Close() error
}

type Speaker interface {
	Speak(ctx context.Context, text string, language string)
}

// WakeFunc runs the interaction that follows a detection. The gate does not
// listen for the wake word again until it returns.
type WakeFunc func(ctx context.Context) error

type Interface interface {
	Run(ctx context.Context, onWake WakeFunc) error
}
