package text_to_speech

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type speakerImpl struct {
	synthesizer Synthesizer
	logger      *zap.SugaredLogger
}

type Config struct {
	Synthesizer Synthesizer
	Logger      *zap.SugaredLogger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Synthesizer == nil {
		return nil, fmt.Errorf("synthesizer is nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &speakerImpl{
		synthesizer: cfg.Synthesizer,
		logger:      logger,
	}, nil
}

func (s *speakerImpl) Speak(ctx context.Context, text string, language string) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Warnw("skipped empty text")
		return
	}

	s.logger.Infow("speaking", "text", text, "language", language, "synthesizer", s.synthesizer.Name())

	if err := s.synthesizer.Speak(ctx, text, language); err != nil {
		s.logger.Errorw("failed to speak", "language", language, "error", err)
	}
}
