package text_to_speech

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a synthesizer that lacks credentials.
var ErrNotConfigured = errors.New("synthesizer not configured")

// ErrPlayback is returned when speech was synthesized but the output device
// failed to play it. The clip may have been partly heard.
var ErrPlayback = errors.New("playback failed")

// Synthesizer turns text into audible speech on the output device.
type Synthesizer interface {
	Name() string
	Speak(ctx context.Context, text string, language string) error
}

// Interface is the speech output used by the assistant. It never fails:
// problems are logged and the caller carries on as if speech completed.
type Interface interface {
	Speak(ctx context.Context, text string, language string)
}
