package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jarvis-translator/language_detection"
)

const (
	DefaultStartPhrase      = "start translation"
	DefaultStopPhrase       = "stop translation"
	DefaultAnnouncement     = "Say 'Jarvis, start translation' or 'Jarvis, stop translation'"
	DefaultStopConfirmation = "Translation mode stopped."
	DefaultPromptLanguage   = "en"
)

// sessionImpl is driven by a single goroutine; mode needs no locking because
// the command loop and the translation loop never run at the same time.
type sessionImpl struct {
	listener   Listener
	speaker    Speaker
	translator Translator
	detector   Detector
	languages  language_detection.Pair
	logger     *zap.SugaredLogger

	startPhrase      string
	stopPhrase       string
	announcement     string
	stopConfirmation string
	promptLanguage   string
	returnToWakeWord bool

	mode Mode
}

type Config struct {
	Listener   Listener
	Speaker    Speaker
	Translator Translator
	Detector   Detector
	Languages  language_detection.Pair
	Logger     *zap.SugaredLogger

	StartPhrase      string
	StopPhrase       string
	Announcement     string
	StopConfirmation string
	// PromptLanguage is the language the announcement and the stop
	// confirmation are written in.
	PromptLanguage string
	// ReturnToWakeWord ends the session once translation mode is stopped so
	// that the wake word is required again. Otherwise the command loop keeps
	// listening for commands.
	ReturnToWakeWord bool
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Listener == nil {
		return nil, fmt.Errorf("listener is nil")
	}

	if cfg.Speaker == nil {
		return nil, fmt.Errorf("speaker is nil")
	}

	if cfg.Translator == nil {
		return nil, fmt.Errorf("translator is nil")
	}

	if cfg.Detector == nil {
		return nil, fmt.Errorf("detector is nil")
	}

	if cfg.Languages.Primary == "" || cfg.Languages.Secondary == "" {
		return nil, fmt.Errorf("language pair is incomplete")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &sessionImpl{
		listener:         cfg.Listener,
		speaker:          cfg.Speaker,
		translator:       cfg.Translator,
		detector:         cfg.Detector,
		languages:        cfg.Languages,
		logger:           logger,
		startPhrase:      strings.ToLower(strings.TrimSpace(cfg.StartPhrase)),
		stopPhrase:       strings.ToLower(strings.TrimSpace(cfg.StopPhrase)),
		announcement:     cfg.Announcement,
		stopConfirmation: cfg.StopConfirmation,
		promptLanguage:   cfg.PromptLanguage,
		returnToWakeWord: cfg.ReturnToWakeWord,
		mode:             ModeIdle,
	}

	if s.startPhrase == "" {
		s.startPhrase = DefaultStartPhrase
	}
	if s.stopPhrase == "" {
		s.stopPhrase = DefaultStopPhrase
	}
	if s.announcement == "" {
		s.announcement = DefaultAnnouncement
	}
	if s.stopConfirmation == "" {
		s.stopConfirmation = DefaultStopConfirmation
	}
	if s.promptLanguage == "" {
		s.promptLanguage = DefaultPromptLanguage
	}

	return s, nil
}

func (s *sessionImpl) Mode() Mode {
	return s.mode
}

// RunCommandLoop owns the Idle -> Translating transition. Whenever it holds
// control the mode is Idle, because the translation loop only returns after
// switching back. A session ended by ctx is left Idle as well.
func (s *sessionImpl) RunCommandLoop(ctx context.Context) error {
	s.mode = ModeIdle

	s.logger.Infow("session started", "announcement", s.announcement)
	s.speaker.Speak(ctx, s.announcement, s.promptLanguage)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		command := strings.ToLower(strings.TrimSpace(s.listener.Listen(ctx)))
		if command == "" {
			continue
		}

		switch {
		case strings.Contains(command, s.startPhrase):
			if s.mode == ModeTranslating {
				s.logger.Infow("already in translation mode")
				continue
			}

			s.setMode(ModeTranslating)

			if err := s.runTranslationLoop(ctx); err != nil {
				s.setMode(ModeIdle)
				return err
			}

			if s.returnToWakeWord {
				s.logger.Infow("session finished, waiting for wake word")
				return nil
			}

		case strings.Contains(command, s.stopPhrase):
			s.logger.Infow("not in translation mode", "command", command)

		default:
			s.logger.Infow("unrecognized command", "command", command)
		}
	}
}

// runTranslationLoop owns the Translating -> Idle transition.
func (s *sessionImpl) runTranslationLoop(ctx context.Context) error {
	for s.mode == ModeTranslating {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.logger.Infow("speak to translate", "primary", s.languages.Primary, "secondary", s.languages.Secondary)

		text := strings.TrimSpace(s.listener.Listen(ctx))
		if text == "" {
			continue
		}

		if strings.Contains(strings.ToLower(text), s.stopPhrase) {
			s.setMode(ModeIdle)
			s.speaker.Speak(ctx, s.stopConfirmation, s.promptLanguage)

			return nil
		}

		s.translate(ctx, text)
	}

	return nil
}

func (s *sessionImpl) translate(ctx context.Context, text string) {
	detected := s.detector.Detect(text)
	target := s.languages.Target(detected)

	translated := s.translator.Translate(ctx, text, target)
	if strings.TrimSpace(translated) == "" {
		s.logger.Warnw("nothing to speak, translation came back empty", "from", detected, "to", target)
		return
	}

	s.logger.Infow("translated",
		"from", detected,
		"to", target,
		"source", text,
		"translation", translated,
	)

	s.speaker.Speak(ctx, translated, target)
}

func (s *sessionImpl) setMode(mode Mode) {
	s.logger.Infow("mode changed", "from", s.mode, "to", mode)
	s.mode = mode
}
