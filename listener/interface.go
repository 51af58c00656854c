package listener

import (
	"context"

	"github.com/go-audio/audio"
)

// Interface captures one utterance from the microphone and turns it into text.
type Interface interface {
	// Listen returns the recognized text, or "" for every kind of failure.
	Listen(ctx context.Context) string
	// Recognize is Listen with the failure kind preserved.
	Recognize(ctx context.Context) (string, error)
}

// Recognizer is the speech recognition service.
type Recognizer interface {
	Transcribe(ctx context.Context, utterance audio.Buffer) (string, error)
}
