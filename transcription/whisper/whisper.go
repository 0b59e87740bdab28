// Package whisper implements the transcription provider against an
// OpenAI-compatible audio transcription API.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/geniuslabs/voiceapi/storage"
	"github.com/geniuslabs/voiceapi/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"

	// maxErrorBodyBytes caps how much of an error response we keep.
	maxErrorBodyBytes = 2048
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	// BaseURL is the API root, e.g. https://api.openai.com/v1.
	BaseURL string `mapstructure:"base_url"`
	// APIKey is the bearer token for the API.
	APIKey string `mapstructure:"api_key"`
	// Model is the transcription model name.
	Model string `mapstructure:"model"`
}

// Provider implements transcription.Provider using the Whisper HTTP API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Provider{
		cfg: cfg,
		// No client timeout: attempt deadlines come from the caller's context.
		client: &http.Client{},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// Transcribe sends one audio clip to the Whisper API and returns the result.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := "audio." + storage.ExtensionForMime(req.MimeType)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	_ = writer.WriteField("model", p.cfg.Model)
	_ = writer.WriteField("response_format", "verbose_json")
	if req.Language != "" {
		_ = writer.WriteField("language", req.Language)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &transcription.ProviderError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	return &transcription.Result{
		Text:     result.Text,
		Language: result.Language,
		Duration: result.Duration,
	}, nil
}

// whisperResponse is the verbose_json response shape.
type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

var _ transcription.Provider = (*Provider)(nil)
