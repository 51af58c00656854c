package session

import "context"

// Mode is the assistant's operating state.
type Mode string

const (
	ModeIdle        Mode = "idle"
	ModeTranslating Mode = "translating"
)

type Interface interface {
	// RunCommandLoop runs one session: it announces the commands and
	// handles utterances until the context ends, or, when configured to
	// return to the wake word, until a translation session has finished.
	RunCommandLoop(ctx context.Context) error
	// Mode reports the current state. It is Idle whenever no session runs.
	Mode() Mode
}

type Listener interface {
	Listen(ctx context.Context) string
}

type Speaker interface {
	Speak(ctx context.Context, text string, language string)
}

type Translator interface {
	Translate(ctx context.Context, text string, targetLanguage string) string
}

type Detector interface {
	Detect(text string) string
}
