// Package config assembles the assistant settings from .env files, the
// environment and command line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

// ErrMissing is returned when a required setting has no value.
var ErrMissing = errors.New("required setting missing")

const (
	DefaultKeywordPath = "models/porcupine/jarvis_raspberry-pi.ppn"

	voiceEnvPrefix = "ELEVENLABS_VOICE_"
)

type ElevenLabs struct {
	APIKey       string
	Endpoint     string
	Model        string
	DefaultVoice string
	// Voices maps a lowercase language code to a voice id.
	Voices map[string]string
}

type Config struct {
	AzureTranslatorKey      string
	AzureRegion             string
	AzureTranslatorEndpoint string

	PorcupineAccessKey string
	KeywordPath        string
	WhisperModel       string

	MicDeviceIndex int
	SpeakerDevice  string

	TTSProvider   string
	ElevenLabs    ElevenLabs
	EspeakCommand string
	PaplayCommand string

	PrimaryLanguage   string
	SecondaryLanguage string
	ReturnToWakeWord  bool
	RecordingsDir     string

	ListenTimeout       time.Duration
	PhraseTimeLimit     time.Duration
	CalibrationDuration time.Duration
	SettleDelay         time.Duration

	LogLevel  string
	LogFormat string
}

// executableDir is replaced in tests.
var executableDir = func() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", err
	}

	path, err = filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}

	return filepath.Dir(path), nil
}

// Load parses args (without the program name), loads .env files and reads
// the environment. Values already present in the environment win over .env
// files, and flags win over both.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("jarvis-translator", flag.ContinueOnError)
	envFile := fs.String("env", "", "path to a .env file")
	model := fs.String("model", "", "whisper model file (overrides WHISPER_MODEL)")
	keyword := fs.String("keyword", "", "porcupine keyword file (overrides KEYWORD_PATH)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := loadEnvFiles(*envFile); err != nil {
		return nil, err
	}

	var errs error

	cfg := &Config{
		AzureTranslatorKey:      os.Getenv("AZURE_TRANSLATOR_KEY"),
		AzureRegion:             os.Getenv("AZURE_REGION"),
		AzureTranslatorEndpoint: os.Getenv("AZURE_TRANSLATOR_ENDPOINT"),
		PorcupineAccessKey:      os.Getenv("PORCUPINE_ACCESS_KEY"),
		KeywordPath:             envOrDefault("KEYWORD_PATH", DefaultKeywordPath),
		WhisperModel:            os.Getenv("WHISPER_MODEL"),
		SpeakerDevice:           os.Getenv("SPEAKER_DEVICE"),
		TTSProvider:             strings.ToLower(envOrDefault("TTS_PROVIDER", "elevenlabs")),
		ElevenLabs: ElevenLabs{
			APIKey:       os.Getenv("ELEVENLABS_API_KEY"),
			Endpoint:     os.Getenv("ELEVENLABS_ENDPOINT"),
			Model:        os.Getenv("ELEVENLABS_MODEL"),
			DefaultVoice: os.Getenv("ELEVENLABS_DEFAULT_VOICE"),
			Voices:       voicesFromEnv(os.Environ()),
		},
		EspeakCommand:     os.Getenv("ESPEAK_COMMAND"),
		PaplayCommand:     os.Getenv("PAPLAY_COMMAND"),
		PrimaryLanguage:   strings.ToLower(envOrDefault("PRIMARY_LANGUAGE", "en")),
		SecondaryLanguage: strings.ToLower(envOrDefault("SECONDARY_LANGUAGE", "ar")),
		RecordingsDir:     os.Getenv("RECORDINGS_DIR"),
		LogLevel:          strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(envOrDefault("LOG_FORMAT", "console")),
	}

	cfg.MicDeviceIndex, errs = intEnv("MIC_DEVICE_INDEX", -1, errs)
	cfg.ReturnToWakeWord, errs = boolEnv("RETURN_TO_WAKE_WORD", false, errs)
	cfg.ListenTimeout, errs = durationEnv("LISTEN_TIMEOUT", 5*time.Second, errs)
	cfg.PhraseTimeLimit, errs = durationEnv("PHRASE_TIME_LIMIT", 10*time.Second, errs)
	cfg.CalibrationDuration, errs = durationEnv("CALIBRATION_DURATION", 500*time.Millisecond, errs)
	cfg.SettleDelay, errs = durationEnv("SETTLE_DELAY", 500*time.Millisecond, errs)

	if *model != "" {
		cfg.WhisperModel = *model
	}

	if *keyword != "" {
		cfg.KeywordPath = *keyword
	} else if !filepath.IsAbs(cfg.KeywordPath) {
		dir, err := executableDir()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("resolve keyword path: %w", err))
		} else {
			cfg.KeywordPath = filepath.Join(dir, cfg.KeywordPath)
		}
	}

	if errs != nil {
		return nil, errs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"AZURE_TRANSLATOR_KEY", c.AzureTranslatorKey},
		{"AZURE_REGION", c.AzureRegion},
		{"PORCUPINE_ACCESS_KEY", c.PorcupineAccessKey},
		{"WHISPER_MODEL", c.WhisperModel},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}

	if c.PrimaryLanguage == c.SecondaryLanguage {
		return fmt.Errorf("primary and secondary language are both %q", c.PrimaryLanguage)
	}

	return nil
}

// loadEnvFiles loads an explicit file, which must exist, or else the
// optional .env in the working directory and next to the executable.
func loadEnvFiles(explicit string) error {
	if explicit != "" {
		if err := godotenv.Load(explicit); err != nil {
			return fmt.Errorf("load env file %s: %w", explicit, err)
		}
		return nil
	}

	candidates := []string{".env"}
	if dir, err := executableDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	return nil
}

func voicesFromEnv(environ []string) map[string]string {
	voices := make(map[string]string)

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" || !strings.HasPrefix(key, voiceEnvPrefix) {
			continue
		}

		language := strings.ToLower(strings.TrimPrefix(key, voiceEnvPrefix))
		if language != "" {
			voices[language] = value
		}
	}

	return voices
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int, errs error) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, errs
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, multierr.Append(errs, fmt.Errorf("invalid integer for %s: %w", key, err))
	}

	return n, errs
}

func boolEnv(key string, fallback bool, errs error) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, errs
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, multierr.Append(errs, fmt.Errorf("invalid boolean for %s: %w", key, err))
	}

	return b, errs
}

func durationEnv(key string, fallback time.Duration, errs error) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, errs
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, multierr.Append(errs, fmt.Errorf("invalid duration for %s: %w", key, err))
	}

	if d <= 0 {
		return fallback, multierr.Append(errs, fmt.Errorf("%s must be positive, got %s", key, value))
	}

	return d, errs
}
