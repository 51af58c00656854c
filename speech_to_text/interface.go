package speech_to_text

import (
	"context"

	"github.com/go-audio/audio"
)

type Interface interface {
	// Transcribe returns the recognized text of one utterance. Empty text
	// with a nil error means nothing intelligible was heard.
	Transcribe(ctx context.Context, utterance audio.Buffer) (string, error)
	Close() error
}
