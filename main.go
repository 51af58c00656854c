package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"jarvis-translator/audio_device"
	"jarvis-translator/audio_device/port_audio"
	"jarvis-translator/clients/translator"
	"jarvis-translator/config"
	"jarvis-translator/language_detection"
	"jarvis-translator/listener"
	"jarvis-translator/session"
	"jarvis-translator/speech_extraction"
	"jarvis-translator/speech_to_text"
	"jarvis-translator/text_to_speech"
	"jarvis-translator/wake_word"
	"jarvis-translator/wake_word/porcupine"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	osFs := afero.NewOsFs()

	player, err := audio_device.NewPlayer(&audio_device.PlayerConfig{
		Command: cfg.PaplayCommand,
		Device:  cfg.SpeakerDevice,
	})
	if err != nil {
		logger.Fatalw("failed to create audio player", "error", err)
	}

	cloudVoice, err := text_to_speech.NewCloud(&text_to_speech.CloudConfig{
		APIKey:       cfg.ElevenLabs.APIKey,
		Endpoint:     cfg.ElevenLabs.Endpoint,
		Model:        cfg.ElevenLabs.Model,
		Voices:       cfg.ElevenLabs.Voices,
		DefaultVoice: cfg.ElevenLabs.DefaultVoice,
		FileSys:      osFs,
		Player:       player,
		Logger:       logger.Named("elevenlabs"),
	})
	if err != nil {
		logger.Fatalw("failed to create cloud speech", "error", err)
	}

	localVoice, err := text_to_speech.NewLocal(&text_to_speech.LocalConfig{
		Command:     cfg.EspeakCommand,
		SettleDelay: cfg.SettleDelay,
		FileSys:     osFs,
		Player:      player,
		Logger:      logger.Named("espeak"),
	})
	if err != nil {
		logger.Fatalw("failed to create local speech", "error", err)
	}

	synthesizer, err := text_to_speech.Select(cfg.TTSProvider, cloudVoice, localVoice, logger.Named("tts"))
	if err != nil {
		logger.Fatalw("failed to select speech provider", "error", err)
	}

	speaker, err := text_to_speech.New(&text_to_speech.Config{
		Synthesizer: synthesizer,
		Logger:      logger.Named("speaker"),
	})
	if err != nil {
		logger.Fatalw("failed to create speaker", "error", err)
	}

	microphone, err := port_audio.New(&port_audio.Config{
		DeviceIndex: cfg.MicDeviceIndex,
		Logger:      logger.Named("microphone"),
	})
	if err != nil {
		logger.Fatalw("failed to create microphone", "error", err)
	}
	defer func() {
		if err := microphone.Close(); err != nil {
			logger.Errorw("failed to release microphone", "error", err)
		}
	}()

	model, err := speech_to_text.Open(cfg.WhisperModel)
	if err != nil {
		logger.Fatalw("failed to load speech recognition model", "error", err)
	}

	sttEngine, err := speech_to_text.New(&speech_to_text.Config{
		Model:  model,
		Logger: logger.Named("whisper"),
	})
	if err != nil {
		logger.Fatalw("failed to create speech recognition", "error", err)
	}
	defer func() { _ = sttEngine.Close() }()

	var archive speech_extraction.Archive
	if cfg.RecordingsDir != "" {
		archive, err = speech_extraction.New(&speech_extraction.Config{
			FileSys: osFs,
			Dir:     cfg.RecordingsDir,
		})
		if err != nil {
			logger.Fatalw("failed to create recordings archive", "error", err, "dir", cfg.RecordingsDir)
		}
	}

	ears, err := listener.New(&listener.Config{
		Source:              microphone,
		Recognizer:          sttEngine,
		Archive:             archive,
		Logger:              logger.Named("listener"),
		CalibrationDuration: cfg.CalibrationDuration,
		Timeout:             cfg.ListenTimeout,
		PhraseTimeLimit:     cfg.PhraseTimeLimit,
	})
	if err != nil {
		logger.Fatalw("failed to create listener", "error", err)
	}

	translatorClient, err := translator.NewClient(&translator.Config{
		ApiHost: cfg.AzureTranslatorEndpoint,
		ApiKey:  cfg.AzureTranslatorKey,
		Region:  cfg.AzureRegion,
		Logger:  logger.Named("translator"),
	})
	if err != nil {
		logger.Fatalw("failed to create translator", "error", err)
	}

	assistant, err := session.New(&session.Config{
		Listener:   ears,
		Speaker:    speaker,
		Translator: translatorClient,
		Detector:   language_detection.New(cfg.PrimaryLanguage, cfg.SecondaryLanguage),
		Languages: language_detection.Pair{
			Primary:   cfg.PrimaryLanguage,
			Secondary: cfg.SecondaryLanguage,
		},
		Logger:           logger.Named("session"),
		ReturnToWakeWord: cfg.ReturnToWakeWord,
	})
	if err != nil {
		logger.Fatalw("failed to create session", "error", err)
	}

	detector, err := porcupine.New(&porcupine.Config{
		AccessKey:   cfg.PorcupineAccessKey,
		KeywordPath: cfg.KeywordPath,
		FileSys:     osFs,
	})
	if err != nil {
		logger.Fatalw("failed to create wake word detector", "error", err, "keyword", cfg.KeywordPath)
	}

	gate, err := wake_word.New(&wake_word.Config{
		Source:   microphone,
		Detector: detector,
		Speaker:  speaker,
		Logger:   logger.Named("wake_word"),
	})
	if err != nil {
		_ = detector.Close()
		logger.Fatalw("failed to create wake word gate", "error", err)
	}

	logger.Infow("assistant ready",
		"primary", cfg.PrimaryLanguage,
		"secondary", cfg.SecondaryLanguage,
		"tts", synthesizer.Name(),
	)

	if err := gate.Run(ctx, assistant.RunCommandLoop); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorw("assistant stopped", "error", err)
	}

	logger.Infow("shutting down")
}

func newLogger(level string, format string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}

	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case "warn", "warning":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger.Sugar()
}
