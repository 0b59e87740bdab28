package transcription

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/geniuslabs/voiceapi/logger"
	"github.com/geniuslabs/voiceapi/observability"
	"github.com/geniuslabs/voiceapi/resilience"
	"github.com/geniuslabs/voiceapi/storage"
)

// ClientConfig tunes the retrying transcription client.
type ClientConfig struct {
	// MaxAttempts is the number of provider calls before giving up.
	MaxAttempts int `mapstructure:"max_attempts"`
	// AttemptTimeout bounds each individual provider call.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	// BackoffFactor is the multiplier for exponential backoff.
	BackoffFactor float64 `mapstructure:"backoff_factor"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *ClientConfig) ApplyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 60 * time.Second
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 2 * time.Second
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = 2.0
	}
}

// Client wraps a Provider with per-attempt timeouts, retry with exponential
// backoff, and audio retrieval from storage.
type Client struct {
	provider Provider
	audio    *storage.AudioStore
	cfg      ClientConfig
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewClient creates a retrying transcription client.
func NewClient(provider Provider, audio *storage.AudioStore, cfg ClientConfig, log *logger.Logger) *Client {
	cfg.ApplyDefaults()
	return &Client{
		provider: provider,
		audio:    audio,
		cfg:      cfg,
		log:      log.WithComponent("transcription"),
	}
}

// SetMetrics attaches metric instruments. Optional; nil disables recording.
func (c *Client) SetMetrics(m *observability.Metrics) { c.metrics = m }

// Transcribe fetches the audio at ref from storage and transcribes it.
func (c *Client) Transcribe(ctx context.Context, ref, language string) (*Result, error) {
	data, err := c.audio.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return c.TranscribeBuffer(ctx, data, storage.MimeForRef(ref), language)
}

// TranscribeBuffer transcribes in-memory audio. Transient provider failures
// are retried with exponential backoff; terminal failures abort immediately.
func (c *Client) TranscribeBuffer(ctx context.Context, audio []byte, mimeType, language string) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrProvider, c.provider.Name()))

	req := Request{
		Audio:    audio,
		MimeType: mimeType,
		Language: NormalizeLanguage(language),
	}

	retryCfg := resilience.RetryConfig{
		MaxAttempts:    c.cfg.MaxAttempts,
		InitialBackoff: c.cfg.InitialBackoff,
		BackoffFactor:  c.cfg.BackoffFactor,
		RetryIf:        IsRetryable,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			if c.metrics != nil {
				c.metrics.RecordRetry(ctx, c.provider.Name())
			}
			c.log.Warn("Transcription attempt failed, retrying", map[string]interface{}{
				logger.FieldAttempt: attempt,
				"error":             err.Error(),
				"backoff":           backoff.String(),
			})
		},
	}

	start := time.Now()
	res, err := resilience.Retry(ctx, retryCfg, func() (*Result, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		defer cancel()
		return c.provider.Transcribe(attemptCtx, req)
	})
	if c.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		c.metrics.RecordTranscription(ctx, c.provider.Name(), outcome, time.Since(start))
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return res, err
}
