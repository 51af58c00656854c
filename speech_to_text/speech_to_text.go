package speech_to_text

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/go-audio/audio"
	"go.uber.org/zap"
)

type sttImpl struct {
	model    whisper.Model
	language string
	logger   *zap.SugaredLogger
}

type Config struct {
	Model whisper.Model
	// Language is a whisper language code, "auto" lets the model decide.
	Language string
	Logger   *zap.SugaredLogger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	language := cfg.Language
	if language == "" {
		language = "auto"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &sttImpl{
		model:    cfg.Model,
		language: language,
		logger:   logger,
	}, nil
}

// Open loads a whisper model from disk.
func Open(modelPath string) (whisper.Model, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model %s: %w", modelPath, err)
	}

	return model, nil
}

func (stt *sttImpl) Transcribe(ctx context.Context, utterance audio.Buffer) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Create processing context
	wctx, err := stt.model.NewContext()
	if err != nil {
		return "", err
	}

	// english-only models reject any language setting
	if stt.model.IsMultilingual() {
		if err := wctx.SetLanguage(stt.language); err != nil {
			return "", fmt.Errorf("set language %q: %w", stt.language, err)
		}
	}

	data := utterance.AsFloat32Buffer().Data

	var cb whisper.SegmentCallback

	err = wctx.Process(data, cb)
	if err != nil {
		return "", err
	}

	segments, err := collectSegments(wctx)
	if err != nil {
		return "", err
	}

	for _, segment := range segments {
		stt.logger.Debugw("segment",
			"start", segment.Start,
			"end", segment.End,
			"text", segment.Text,
		)
	}

	return joinSegments(segments), nil
}

func (stt *sttImpl) Close() error {
	return stt.model.Close()
}

func collectSegments(wctx whisper.Context) ([]whisper.Segment, error) {
	segments := make([]whisper.Segment, 0)

	for {
		segment, err := wctx.NextSegment()
		if err == io.EOF {
			return cleanSegments(segments), nil
		} else if err != nil {
			return nil, err
		}

		segments = append(segments, segment)
	}
}

// cleanSegments drops non-speech annotations such as [BLANK_AUDIO] or (music)
// and segments whose text was already seen.
func cleanSegments(segments []whisper.Segment) []whisper.Segment {
	seenText := make(map[string]bool)

	kept := make([]whisper.Segment, 0, len(segments))

	for _, segment := range segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" || isAnnotation(text) {
			continue
		}

		if seenText[text] {
			continue
		}
		seenText[text] = true

		kept = append(kept, segment)
	}

	return kept
}

func isAnnotation(text string) bool {
	first, last := text[0], text[len(text)-1]

	return first == '(' || first == '[' || last == ')' || last == ']'
}

func joinSegments(segments []whisper.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		parts = append(parts, strings.TrimSpace(segment.Text))
	}

	return strings.Join(parts, " ")
}
