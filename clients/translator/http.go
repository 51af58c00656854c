package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "https://api.cognitive.microsofttranslator.com"

	apiVersion     = "3.0"
	requestTimeout = 15 * time.Second
)

type clientImpl struct {
	apiHost    string
	apiKey     string
	region     string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

type Config struct {
	ApiHost    string
	ApiKey     string
	Region     string
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

type translateItem struct {
	Text string `json:"text"`
}

type translateResult struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

func NewClient(cfg *Config) (TranslatorAPI, error) {
	if cfg == nil {
		return nil, errors.New("missing parameter: cfg")
	}

	if cfg.ApiKey == "" {
		return nil, errors.New("missing parameter: cfg.ApiKey")
	}

	if cfg.Region == "" {
		return nil, errors.New("missing parameter: cfg.Region")
	}

	apiHost := strings.TrimRight(cfg.ApiHost, "/")
	if apiHost == "" {
		apiHost = DefaultEndpoint
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &clientImpl{
		apiHost:    apiHost,
		apiKey:     cfg.ApiKey,
		region:     cfg.Region,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (client *clientImpl) Translate(ctx context.Context, text string, targetLanguage string) string {
	translated, err := client.translate(ctx, text, targetLanguage)
	if err != nil {
		client.logger.Errorw("translation failed", "to", targetLanguage, "error", err)
		return ""
	}

	return translated
}

func (client *clientImpl) translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	body, err := json.Marshal([]translateItem{{Text: text}})
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Add("api-version", apiVersion)
	q.Add("to", targetLanguage)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.apiHost+"/translate?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", client.apiKey)
	req.Header.Set("Ocp-Apim-Subscription-Region", client.region)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return "", err
	}

	defer resp.Body.Close()

	// get the response body
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var results []translateResult
	if err := json.Unmarshal(data, &results); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(results) == 0 || len(results[0].Translations) == 0 {
		return "", errors.New("response has no translations")
	}

	return results[0].Translations[0].Text, nil
}
