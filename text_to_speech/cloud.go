package text_to_speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"jarvis-translator/audio_device"
)

const (
	DefaultCloudEndpoint = "https://api.elevenlabs.io"
	DefaultCloudModel    = "eleven_multilingual_v2"
	// DefaultCloudVoice is the baseline voice used for unmapped languages.
	DefaultCloudVoice = "21m00Tcm4TlvDq8ikWAM"

	cloudSampleRate   = 16000
	cloudOutputFormat = "pcm_16000"
	cloudTimeout      = 30 * time.Second
)

type cloudImpl struct {
	apiKey          string
	endpoint        string
	model           string
	voices          map[string]string
	defaultVoice    string
	stability       float64
	similarityBoost float64
	httpClient      *http.Client
	clips           *clipPlayer
	logger          *zap.SugaredLogger
}

type CloudConfig struct {
	// APIKey may be empty, in which case Speak reports ErrNotConfigured.
	APIKey       string
	Endpoint     string
	Model        string
	Voices       map[string]string
	DefaultVoice string

	Stability       float64
	SimilarityBoost float64

	HTTPClient *http.Client
	FileSys    afero.Fs
	TempDir    string
	Player     audio_device.Player
	Logger     *zap.SugaredLogger
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type cloudRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// NewCloud builds the ElevenLabs neural voice synthesizer.
func NewCloud(cfg *CloudConfig) (Synthesizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	clips, err := newClipPlayer(cfg.FileSys, cfg.TempDir, cfg.Player, cfg.Logger)
	if err != nil {
		return nil, err
	}

	c := &cloudImpl{
		apiKey:          strings.TrimSpace(cfg.APIKey),
		endpoint:        strings.TrimRight(cfg.Endpoint, "/"),
		model:           cfg.Model,
		voices:          cfg.Voices,
		defaultVoice:    cfg.DefaultVoice,
		stability:       cfg.Stability,
		similarityBoost: cfg.SimilarityBoost,
		httpClient:      cfg.HTTPClient,
		clips:           clips,
		logger:          clips.logger,
	}

	if c.endpoint == "" {
		c.endpoint = DefaultCloudEndpoint
	}
	if c.model == "" {
		c.model = DefaultCloudModel
	}
	if c.defaultVoice == "" {
		c.defaultVoice = DefaultCloudVoice
	}
	if c.stability == 0 {
		c.stability = 0.5
	}
	if c.similarityBoost == 0 {
		c.similarityBoost = 0.75
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cloudTimeout}
	}

	return c, nil
}

func (c *cloudImpl) Name() string {
	return "elevenlabs"
}

func (c *cloudImpl) Speak(ctx context.Context, text string, language string) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	voice := c.voiceFor(language)

	pcm, err := c.synthesize(ctx, text, voice)
	if err != nil {
		return err
	}

	c.logger.Debugw("synthesized speech", "provider", c.Name(), "voice", voice, "bytes", len(pcm))

	return c.clips.play(ctx, func(f afero.File) error {
		return writeWave(f, pcm, cloudSampleRate)
	})
}

func (c *cloudImpl) voiceFor(language string) string {
	if voice, ok := c.voices[strings.ToLower(language)]; ok && voice != "" {
		return voice
	}

	return c.defaultVoice
}

func (c *cloudImpl) synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	body, err := json.Marshal(cloudRequest{
		Text:    text,
		ModelID: c.model,
		VoiceSettings: voiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarityBoost,
		},
	})
	if err != nil {
		return nil, err
	}

	endpoint := c.endpoint + "/v1/text-to-speech/" + url.PathEscape(voice) + "?output_format=" + cloudOutputFormat

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/pcm")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("elevenlabs: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if len(data) < 2 {
		return nil, fmt.Errorf("elevenlabs: empty audio response")
	}

	return data, nil
}

// writeWave wraps signed 16-bit little-endian mono PCM in a wave container.
func writeWave(f afero.File, pcm []byte, sampleRate int) error {
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	encoder := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	err := encoder.Write(&audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	})
	if err != nil {
		return err
	}

	return encoder.Close()
}
