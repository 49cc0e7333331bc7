package openai

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config for the OpenAI-compatible gateway.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // e.g. http://localhost:1234/v1 for LM Studio
	Model       string        // e.g. "google/gemma-3-4b"
	Temperature float32       // 0 keeps extraction deterministic
	Timeout     time.Duration // per request; 0 leaves it to the caller's context
}

// Client implements llm.Gateway over chat completions.
type Client struct {
	cfg    Config
	api    openai.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "google/gemma-3-4b"
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// the pipeline records failed calls instead of retrying them
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		cfg:    cfg,
		api:    openai.NewClient(opts...),
		logger: logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}
