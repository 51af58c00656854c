package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var managedKeys = []string{
	"AZURE_TRANSLATOR_KEY", "AZURE_REGION", "AZURE_TRANSLATOR_ENDPOINT",
	"PORCUPINE_ACCESS_KEY", "KEYWORD_PATH", "WHISPER_MODEL",
	"MIC_DEVICE_INDEX", "SPEAKER_DEVICE", "TTS_PROVIDER",
	"ELEVENLABS_API_KEY", "ELEVENLABS_ENDPOINT", "ELEVENLABS_MODEL", "ELEVENLABS_DEFAULT_VOICE",
	"ESPEAK_COMMAND", "PAPLAY_COMMAND", "PRIMARY_LANGUAGE", "SECONDARY_LANGUAGE",
	"RETURN_TO_WAKE_WORD", "RECORDINGS_DIR", "LISTEN_TIMEOUT", "PHRASE_TIME_LIMIT",
	"CALIBRATION_DURATION", "SETTLE_DELAY", "LOG_LEVEL", "LOG_FORMAT",
}

// cleanEnv unsets every setting for the duration of the test and points the
// executable directory at a temporary one.
func cleanEnv(t *testing.T) string {
	t.Helper()

	for _, key := range managedKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}

	dir := t.TempDir()

	previous := executableDir
	executableDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { executableDir = previous })

	return dir
}

func setRequired(t *testing.T) {
	t.Helper()

	t.Setenv("AZURE_TRANSLATOR_KEY", "azure-key")
	t.Setenv("AZURE_REGION", "westeurope")
	t.Setenv("PORCUPINE_ACCESS_KEY", "porcupine-key")
	t.Setenv("WHISPER_MODEL", "/models/ggml-base.bin")
}

func TestLoad_Defaults(t *testing.T) {
	dir := cleanEnv(t)
	setRequired(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MicDeviceIndex != -1 {
		t.Errorf("expected default input device, got %d", cfg.MicDeviceIndex)
	}
	if cfg.TTSProvider != "elevenlabs" {
		t.Errorf("expected elevenlabs provider, got %q", cfg.TTSProvider)
	}
	if cfg.PrimaryLanguage != "en" || cfg.SecondaryLanguage != "ar" {
		t.Errorf("expected en/ar, got %s/%s", cfg.PrimaryLanguage, cfg.SecondaryLanguage)
	}
	if cfg.ReturnToWakeWord {
		t.Error("expected to stay in the command loop by default")
	}
	if cfg.ListenTimeout != 5*time.Second || cfg.PhraseTimeLimit != 10*time.Second {
		t.Errorf("unexpected listen limits %s/%s", cfg.ListenTimeout, cfg.PhraseTimeLimit)
	}
	if cfg.CalibrationDuration != 500*time.Millisecond || cfg.SettleDelay != 500*time.Millisecond {
		t.Errorf("unexpected delays %s/%s", cfg.CalibrationDuration, cfg.SettleDelay)
	}

	expectedKeyword := filepath.Join(dir, DefaultKeywordPath)
	if cfg.KeywordPath != expectedKeyword {
		t.Errorf("expected keyword next to the executable %q, got %q", expectedKeyword, cfg.KeywordPath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cleanEnv(t)
	setRequired(t)

	t.Setenv("MIC_DEVICE_INDEX", "2")
	t.Setenv("TTS_PROVIDER", "LOCAL")
	t.Setenv("RETURN_TO_WAKE_WORD", "true")
	t.Setenv("LISTEN_TIMEOUT", "3s")
	t.Setenv("KEYWORD_PATH", "/opt/jarvis.ppn")
	t.Setenv("ELEVENLABS_VOICE_AR", "arabic-voice")

	cfg, err := Load([]string{"-model", "/tmp/ggml-small.bin"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MicDeviceIndex != 2 {
		t.Errorf("expected device 2, got %d", cfg.MicDeviceIndex)
	}
	if cfg.TTSProvider != "local" {
		t.Errorf("expected local provider, got %q", cfg.TTSProvider)
	}
	if !cfg.ReturnToWakeWord {
		t.Error("expected return to wake word")
	}
	if cfg.ListenTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %s", cfg.ListenTimeout)
	}
	if cfg.KeywordPath != "/opt/jarvis.ppn" {
		t.Errorf("expected absolute keyword path kept, got %q", cfg.KeywordPath)
	}
	if cfg.WhisperModel != "/tmp/ggml-small.bin" {
		t.Errorf("expected flag to override model, got %q", cfg.WhisperModel)
	}
	if cfg.ElevenLabs.Voices["ar"] != "arabic-voice" {
		t.Errorf("expected arabic voice, got %v", cfg.ElevenLabs.Voices)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	cleanEnv(t)
	t.Setenv("AZURE_REGION", "westeurope")

	_, err := Load(nil)
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}

	for _, name := range []string{"AZURE_TRANSLATOR_KEY", "PORCUPINE_ACCESS_KEY", "WHISPER_MODEL"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("expected %s in %q", name, err.Error())
		}
	}

	if strings.Contains(err.Error(), "AZURE_REGION") {
		t.Errorf("AZURE_REGION is set and must not be reported: %q", err.Error())
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cleanEnv(t)
	setRequired(t)

	t.Setenv("MIC_DEVICE_INDEX", "usb")
	t.Setenv("LISTEN_TIMEOUT", "soon")
	t.Setenv("SETTLE_DELAY", "-1s")

	_, err := Load(nil)
	if err == nil {
		t.Fatal("expected error")
	}

	for _, name := range []string{"MIC_DEVICE_INDEX", "LISTEN_TIMEOUT", "SETTLE_DELAY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("expected %s in %q", name, err.Error())
		}
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := cleanEnv(t)

	envFile := filepath.Join(t.TempDir(), "jarvis.env")
	content := strings.Join([]string{
		"AZURE_TRANSLATOR_KEY=file-key",
		"AZURE_REGION=file-region",
		"PORCUPINE_ACCESS_KEY=file-porcupine",
		"WHISPER_MODEL=/file/model.bin",
		"SECONDARY_LANGUAGE=fr",
	}, "\n")
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	// the real environment wins over the file
	t.Setenv("AZURE_REGION", "env-region")

	cfg, err := Load([]string{"-env", envFile, "-keyword", "jarvis.ppn"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AzureTranslatorKey != "file-key" {
		t.Errorf("expected key from file, got %q", cfg.AzureTranslatorKey)
	}
	if cfg.AzureRegion != "env-region" {
		t.Errorf("expected environment to win, got %q", cfg.AzureRegion)
	}
	if cfg.SecondaryLanguage != "fr" {
		t.Errorf("expected fr, got %q", cfg.SecondaryLanguage)
	}
	if cfg.KeywordPath != "jarvis.ppn" {
		t.Errorf("expected flag keyword path as given, got %q", cfg.KeywordPath)
	}
	if strings.HasPrefix(cfg.KeywordPath, dir) {
		t.Errorf("flag keyword path must not be moved next to the executable")
	}
}

func TestLoad_EnvFileNextToExecutable(t *testing.T) {
	dir := cleanEnv(t)

	content := "AZURE_TRANSLATOR_KEY=a\nAZURE_REGION=b\nPORCUPINE_ACCESS_KEY=c\nWHISPER_MODEL=d\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.WhisperModel != "d" {
		t.Errorf("expected model from executable dir .env, got %q", cfg.WhisperModel)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	cleanEnv(t)

	if _, err := Load([]string{"-env", filepath.Join(t.TempDir(), "absent.env")}); err == nil {
		t.Fatal("expected error for a missing explicit env file")
	}
}

func TestValidate_SameLanguages(t *testing.T) {
	cfg := &Config{
		AzureTranslatorKey: "k",
		AzureRegion:        "r",
		PorcupineAccessKey: "p",
		WhisperModel:       "m",
		PrimaryLanguage:    "en",
		SecondaryLanguage:  "en",
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for identical languages")
	}
}

func TestVoicesFromEnv(t *testing.T) {
	voices := voicesFromEnv([]string{
		"ELEVENLABS_VOICE_EN=english",
		"ELEVENLABS_VOICE_AR=arabic",
		"ELEVENLABS_VOICE_=ignored",
		"ELEVENLABS_VOICE_FR=",
		"HOME=/root",
	})

	if len(voices) != 2 || voices["en"] != "english" || voices["ar"] != "arabic" {
		t.Errorf("unexpected voices %v", voices)
	}
}
