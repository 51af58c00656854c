package listener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"go.uber.org/zap"

	"jarvis-translator/audio_device"
	"jarvis-translator/ring_buffer"
	"jarvis-translator/speech_extraction"
	"jarvis-translator/vad"
)

const (
	defaultSampleRate          = 16000
	defaultFrameLength         = 512
	defaultCalibrationDuration = 500 * time.Millisecond
	defaultTimeout             = 5 * time.Second
	defaultPhraseTimeLimit     = 10 * time.Second
	defaultPauseDuration       = 800 * time.Millisecond
	defaultPreRoll             = 300 * time.Millisecond
)

var (
	ErrWaitTimeout    = errors.New("no speech before timeout")
	ErrUnintelligible = errors.New("speech could not be understood")
	ErrRecognition    = errors.New("recognition service error")
	ErrCapture        = errors.New("audio capture error")
)

type listenerImpl struct {
	source     audio_device.Source
	recognizer Recognizer
	archive    speech_extraction.Archive
	logger     *zap.SugaredLogger

	sampleRate          int
	frameLength         int
	calibrationDuration time.Duration
	timeout             time.Duration
	phraseTimeLimit     time.Duration
	pauseDuration       time.Duration
	preRoll             time.Duration
}

type Config struct {
	Source     audio_device.Source
	Recognizer Recognizer
	// Archive is optional; when set every captured utterance is saved.
	Archive speech_extraction.Archive
	Logger  *zap.SugaredLogger

	SampleRate          int
	FrameLength         int
	CalibrationDuration time.Duration
	// Timeout bounds the wait for speech to start.
	Timeout time.Duration
	// PhraseTimeLimit bounds the length of one utterance.
	PhraseTimeLimit time.Duration
	// PauseDuration of non-speech ends the utterance.
	PauseDuration time.Duration
	PreRoll       time.Duration
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Source == nil {
		return nil, fmt.Errorf("source is nil")
	}

	if cfg.Recognizer == nil {
		return nil, fmt.Errorf("recognizer is nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	l := &listenerImpl{
		source:              cfg.Source,
		recognizer:          cfg.Recognizer,
		archive:             cfg.Archive,
		logger:              logger,
		sampleRate:          cfg.SampleRate,
		frameLength:         cfg.FrameLength,
		calibrationDuration: cfg.CalibrationDuration,
		timeout:             cfg.Timeout,
		phraseTimeLimit:     cfg.PhraseTimeLimit,
		pauseDuration:       cfg.PauseDuration,
		preRoll:             cfg.PreRoll,
	}

	if l.sampleRate <= 0 {
		l.sampleRate = defaultSampleRate
	}
	if l.frameLength <= 0 {
		l.frameLength = defaultFrameLength
	}
	if l.calibrationDuration <= 0 {
		l.calibrationDuration = defaultCalibrationDuration
	}
	if l.timeout <= 0 {
		l.timeout = defaultTimeout
	}
	if l.phraseTimeLimit <= 0 {
		l.phraseTimeLimit = defaultPhraseTimeLimit
	}
	if l.pauseDuration <= 0 {
		l.pauseDuration = defaultPauseDuration
	}
	if l.preRoll <= 0 {
		l.preRoll = defaultPreRoll
	}

	return l, nil
}

func (l *listenerImpl) Listen(ctx context.Context) string {
	l.logger.Infow("listening")

	text, err := l.Recognize(ctx)

	switch {
	case err == nil:
		l.logger.Infow("recognized", "text", text)
	case errors.Is(err, ErrWaitTimeout):
		l.logger.Warnw("no speech detected", "timeout", l.timeout)
	case errors.Is(err, ErrUnintelligible):
		l.logger.Warnw("could not understand speech")
	case errors.Is(err, ErrRecognition):
		l.logger.Errorw("speech recognition failed", "error", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		l.logger.Debugw("listening cancelled", "error", err)
	default:
		l.logger.Errorw("microphone error", "error", err)
	}

	return text
}

func (l *listenerImpl) Recognize(ctx context.Context) (string, error) {
	samples, err := l.capture(ctx)
	if err != nil {
		return "", err
	}

	if l.archive != nil {
		path, saveErr := l.archive.Save(samples, l.sampleRate)
		if saveErr != nil {
			l.logger.Warnw("failed to archive utterance", "error", saveErr)
		} else {
			l.logger.Debugw("utterance archived", "path", path)
		}
	}

	text, err := l.recognizer.Transcribe(ctx, l.toBuffer(samples))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrRecognition, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrUnintelligible
	}

	return text, nil
}

// capture calibrates against ambient noise, waits for speech onset and then
// records until a pause or the phrase limit. Durations are measured in
// captured samples so that slow consumers do not shorten the windows.
func (l *listenerImpl) capture(ctx context.Context) ([]int16, error) {
	stream, err := l.source.Open(l.sampleRate, l.frameLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}

	defer func() {
		if closeErr := stream.Close(); closeErr != nil {
			l.logger.Warnw("failed to close input stream", "error", closeErr)
		}
	}()

	read := func() ([]int16, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := stream.Read()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCapture, err)
		}

		return frame, nil
	}

	detector := vad.New(vad.Config{SampleRate: l.sampleRate, FrameLength: l.frameLength})

	ambient := make([][]int16, 0, l.framesFor(l.calibrationDuration))
	for i := 0; i < l.framesFor(l.calibrationDuration); i++ {
		frame, err := read()
		if err != nil {
			return nil, err
		}

		ambient = append(ambient, append([]int16(nil), frame...))
	}

	threshold := detector.Calibrate(ambient)
	l.logger.Debugw("calibrated for ambient noise", "threshold", threshold)

	// keep the audio heard just before onset so the first syllable is not lost
	preRoll := ring_buffer.New(l.samplesFor(l.preRoll))

	var utterance []int16

	for i := 0; i < l.framesFor(l.timeout); i++ {
		frame, err := read()
		if err != nil {
			return nil, err
		}

		if detector.IsSpeech(frame) {
			utterance = append(preRoll.Read(), frame...)
			break
		}

		preRoll.Add(frame)
	}

	if utterance == nil {
		return nil, ErrWaitTimeout
	}

	var (
		maxSamples   = l.samplesFor(l.phraseTimeLimit)
		pauseFrames  = l.framesFor(l.pauseDuration)
		silentFrames int
	)

	for len(utterance) < maxSamples {
		frame, err := read()
		if err != nil {
			return nil, err
		}

		utterance = append(utterance, frame...)

		if detector.IsSpeech(frame) {
			silentFrames = 0
			continue
		}

		silentFrames++
		if silentFrames >= pauseFrames {
			break
		}
	}

	return utterance, nil
}

func (l *listenerImpl) framesFor(d time.Duration) int {
	return (l.samplesFor(d) + l.frameLength - 1) / l.frameLength
}

func (l *listenerImpl) samplesFor(d time.Duration) int {
	return int(int64(d) * int64(l.sampleRate) / int64(time.Second))
}

func (l *listenerImpl) toBuffer(samples []int16) *audio.IntBuffer {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  l.sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
}
