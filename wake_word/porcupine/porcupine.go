// Package porcupine runs Picovoice Porcupine as a wake_word.Detector.
package porcupine

import (
	"fmt"

	pv "github.com/Picovoice/porcupine/binding/go/v3"
	"github.com/spf13/afero"

	"jarvis-translator/wake_word"
)

type Config struct {
	AccessKey   string
	KeywordPath string
	// Sensitivity in [0, 1]; zero keeps the library default.
	Sensitivity float32
	FileSys     afero.Fs
}

type detector struct {
	engine *pv.Porcupine
}

func New(cfg *Config) (wake_word.Detector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.AccessKey == "" {
		return nil, fmt.Errorf("access key is empty")
	}

	fs := cfg.FileSys
	if fs == nil {
		fs = afero.NewOsFs()
	}

	exists, err := afero.Exists(fs, cfg.KeywordPath)
	if err != nil {
		return nil, fmt.Errorf("check keyword file: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("keyword file %q not found", cfg.KeywordPath)
	}

	engine := &pv.Porcupine{
		AccessKey:    cfg.AccessKey,
		KeywordPaths: []string{cfg.KeywordPath},
	}

	if cfg.Sensitivity > 0 {
		engine.Sensitivities = []float32{cfg.Sensitivity}
	}

	if err := engine.Init(); err != nil {
		return nil, fmt.Errorf("init porcupine: %w", err)
	}

	return &detector{engine: engine}, nil
}

func (d *detector) Process(frame []int16) (int, error) {
	return d.engine.Process(frame)
}

func (d *detector) SampleRate() int {
	return pv.SampleRate
}

func (d *detector) FrameLength() int {
	return pv.FrameLength
}

func (d *detector) Close() error {
	return d.engine.Delete()
}
