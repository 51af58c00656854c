package text_to_speech

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	ProviderCloud = "elevenlabs"
	ProviderLocal = "local"
)

type fallbackImpl struct {
	primary   Synthesizer
	secondary Synthesizer
	logger    *zap.SugaredLogger
}

// NewFallback tries primary first and retries on secondary when primary is
// not configured or could not synthesize. A playback failure is returned
// as is, since the secondary would play through the same device.
func NewFallback(primary Synthesizer, secondary Synthesizer, logger *zap.SugaredLogger) Synthesizer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &fallbackImpl{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (f *fallbackImpl) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *fallbackImpl) Speak(ctx context.Context, text string, language string) error {
	err := f.primary.Speak(ctx, text, language)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if errors.Is(err, ErrPlayback) {
		return err
	}

	if errors.Is(err, ErrNotConfigured) {
		f.logger.Debugw("primary synthesizer not configured", "primary", f.primary.Name(), "fallback", f.secondary.Name())
	} else {
		f.logger.Warnw("primary synthesizer failed, falling back", "primary", f.primary.Name(), "fallback", f.secondary.Name(), "error", err)
	}

	return f.secondary.Speak(ctx, text, language)
}

// Select picks the synthesizer for a configured provider name. The cloud
// provider always falls back to the local one.
func Select(provider string, cloud Synthesizer, local Synthesizer, logger *zap.SugaredLogger) (Synthesizer, error) {
	switch provider {
	case ProviderCloud, "":
		return NewFallback(cloud, local, logger), nil
	case ProviderLocal:
		return local, nil
	default:
		return nil, fmt.Errorf("unknown tts provider %q", provider)
	}
}
