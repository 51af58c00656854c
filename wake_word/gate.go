package wake_word

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jarvis-translator/audio_device"
)

const (
	DefaultConfirmation = "Wake word detected. You can say start translation to begin."
	DefaultResumeDelay  = 500 * time.Millisecond
	DefaultRestartDelay = 500 * time.Millisecond
)

type gateImpl struct {
	source       audio_device.Source
	detector     Detector
	speaker      Speaker
	logger       *zap.SugaredLogger
	confirmation string
	language     string
	resumeDelay  time.Duration
	restartDelay time.Duration
}

type Config struct {
	Source   audio_device.Source
	Detector Detector
	Speaker  Speaker
	Logger   *zap.SugaredLogger

	// Confirmation is spoken in Language right after a detection.
	Confirmation string
	Language     string

	// ResumeDelay is waited after a session ends before the microphone is
	// reopened. RestartDelay is waited after a stream failure.
	ResumeDelay  time.Duration
	RestartDelay time.Duration
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Source == nil {
		return nil, fmt.Errorf("source is nil")
	}

	if cfg.Detector == nil {
		return nil, fmt.Errorf("detector is nil")
	}

	if cfg.Speaker == nil {
		return nil, fmt.Errorf("speaker is nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	g := &gateImpl{
		source:       cfg.Source,
		detector:     cfg.Detector,
		speaker:      cfg.Speaker,
		logger:       logger,
		confirmation: cfg.Confirmation,
		language:     cfg.Language,
		resumeDelay:  cfg.ResumeDelay,
		restartDelay: cfg.RestartDelay,
	}

	if g.confirmation == "" {
		g.confirmation = DefaultConfirmation
	}
	if g.language == "" {
		g.language = "en"
	}
	if g.resumeDelay <= 0 {
		g.resumeDelay = DefaultResumeDelay
	}
	if g.restartDelay <= 0 {
		g.restartDelay = DefaultRestartDelay
	}

	return g, nil
}

// Run blocks until ctx is cancelled. The detector is released when Run
// returns, so a gate can only be run once.
func (g *gateImpl) Run(ctx context.Context, onWake WakeFunc) error {
	defer func() {
		if err := g.detector.Close(); err != nil {
			g.logger.Warnw("failed to release wake word detector", "error", err)
		}
	}()

	g.logger.Infow("wake word detection started",
		"sampleRate", g.detector.SampleRate(),
		"frameLength", g.detector.FrameLength(),
	)

	for {
		if ctx.Err() != nil {
			g.logger.Infow("wake word detection stopped")
			return nil
		}

		woke, err := g.awaitWakeWord(ctx)
		if err != nil {
			g.logger.Errorw("wake word stream error", "error", err)

			sleep(ctx, g.restartDelay)
			continue
		}

		if !woke {
			continue
		}

		g.logger.Infow("wake word detected")
		g.speaker.Speak(ctx, g.confirmation, g.language)

		if err := onWake(ctx); err != nil && !errors.Is(err, context.Canceled) {
			g.logger.Errorw("session ended with error", "error", err)
		}

		sleep(ctx, g.resumeDelay)
	}
}

// awaitWakeWord opens a stream and reads frames until the wake word is heard
// or ctx ends. The stream is always closed before it returns, so the
// microphone is free for whatever runs next.
func (g *gateImpl) awaitWakeWord(ctx context.Context) (bool, error) {
	stream, err := g.source.Open(g.detector.SampleRate(), g.detector.FrameLength())
	if err != nil {
		return false, fmt.Errorf("open stream: %w", err)
	}

	defer func() {
		if err := stream.Close(); err != nil {
			g.logger.Warnw("failed to close wake word stream", "error", err)
		}
	}()

	for ctx.Err() == nil {
		frame, err := stream.Read()
		if err != nil {
			return false, fmt.Errorf("read frame: %w", err)
		}

		index, err := g.detector.Process(frame)
		if err != nil {
			return false, fmt.Errorf("process frame: %w", err)
		}

		if index >= 0 {
			return true, nil
		}
	}

	return false, nil
}

// sleep waits for d and reports whether it ran to completion.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
