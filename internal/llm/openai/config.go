package openai

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/schedule-ingest/internal/llm"
)

const ProviderName = "openai"

// Config for the OpenAI client. The model is chosen per call by the cascade.
type Config struct {
	APIKey      string
	BaseURL     string        // default https://api.openai.com/v1
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	poster llm.JSONPoster
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg: cfg,
		poster: llm.JSONPoster{
			Provider: ProviderName,
			Client:   &http.Client{Timeout: cfg.Timeout},
			Headers:  map[string]string{"Authorization": "Bearer " + cfg.APIKey},
			Logger:   logger,
		},
		logger: logger,
	}
}

func (c *Client) Provider() string { return ProviderName }
