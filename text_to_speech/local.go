package text_to_speech

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"jarvis-translator/audio_device"
)

const (
	DefaultLocalCommand = "espeak-ng"
	DefaultSettleDelay  = 500 * time.Millisecond
)

type localImpl struct {
	command     string
	voices      map[string]string
	settleDelay time.Duration
	run         audio_device.CommandRunner
	clips       *clipPlayer
	logger      *zap.SugaredLogger
}

type LocalConfig struct {
	// Command is an espeak compatible synthesizer writing wave data to stdout.
	Command string
	// Voices maps a language code to an espeak voice; unmapped languages use the code itself.
	Voices map[string]string
	// SettleDelay is waited after playback so the output device is released
	// before the microphone is opened again.
	SettleDelay time.Duration
	Runner      audio_device.CommandRunner

	FileSys afero.Fs
	TempDir string
	Player  audio_device.Player
	Logger  *zap.SugaredLogger
}

// NewLocal builds the offline espeak-ng synthesizer.
func NewLocal(cfg *LocalConfig) (Synthesizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	clips, err := newClipPlayer(cfg.FileSys, cfg.TempDir, cfg.Player, cfg.Logger)
	if err != nil {
		return nil, err
	}

	l := &localImpl{
		command:     cfg.Command,
		voices:      cfg.Voices,
		settleDelay: cfg.SettleDelay,
		run:         cfg.Runner,
		clips:       clips,
		logger:      clips.logger,
	}

	if l.command == "" {
		l.command = DefaultLocalCommand
	}
	if l.settleDelay < 0 {
		l.settleDelay = 0
	}
	if l.run == nil {
		l.run = audio_device.ExecRunner
	}

	return l, nil
}

func (l *localImpl) Name() string {
	return "espeak"
}

func (l *localImpl) Speak(ctx context.Context, text string, language string) error {
	voice := strings.ToLower(language)
	if mapped, ok := l.voices[voice]; ok && mapped != "" {
		voice = mapped
	}

	data, err := l.run(ctx, l.command, "-v", voice, "--stdout", text)
	if err != nil {
		return err
	}

	if len(data) == 0 {
		return fmt.Errorf("%s produced no audio", l.command)
	}

	err = l.clips.play(ctx, func(f afero.File) error {
		_, err := f.Write(data)
		return err
	})
	if err != nil {
		return err
	}

	if l.settleDelay == 0 {
		return nil
	}

	timer := time.NewTimer(l.settleDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}

	return nil
}
