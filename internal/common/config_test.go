package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"SEGMENT_MAX_CHARS", "SEGMENT_OVERLAP", "PIPELINE_WORKERS", "LLM_CALL_TIMEOUT",
		"PIPELINE_CANCEL_POLICY", "REF_PATTERN", "LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL", "LLM_TEMPERATURE", "DB_URL",
		"OCR_DPI", "OCR_DISABLE", "TESSERACT_LANG", "OCR_MIN_PAGE_CHARS"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, 4000, cfg.Segment.MaxChars)
	assert.Equal(t, 0, cfg.Segment.Overlap)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 60*time.Second, cfg.Pipeline.CallTimeout)
	assert.Equal(t, "discard", cfg.Pipeline.CancelPolicy)
	assert.Equal(t, "strict", cfg.Pipeline.RefPattern)
	assert.Equal(t, "http://localhost:1234/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "lm-studio", cfg.LLM.APIKey)
	assert.Equal(t, "google/gemma-3-4b", cfg.LLM.Model)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, 20, cfg.OCR.MinPageChars)
	assert.Equal(t, "spa", cfg.OCR.TesseractLang)
	assert.False(t, cfg.OCR.Disable)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SEGMENT_MAX_CHARS", "1200")
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("LLM_CALL_TIMEOUT", "5s")
	t.Setenv("PIPELINE_CANCEL_POLICY", "BEST_EFFORT")
	t.Setenv("LLM_TEMPERATURE", "not-a-number")
	t.Setenv("OCR_DISABLE", "true")
	t.Setenv("TESSERACT_LANG", "spa+eng")

	cfg := LoadConfig()
	assert.Equal(t, 1200, cfg.Segment.MaxChars)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.CallTimeout)
	assert.Equal(t, "best_effort", cfg.Pipeline.CancelPolicy)
	assert.Equal(t, float32(0), cfg.LLM.Temperature)
	assert.True(t, cfg.OCR.Disable)
	assert.Equal(t, "spa+eng", cfg.OCR.TesseractLang)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero segment size", func(c *Config) { c.Segment.MaxChars = 0 }},
		{"overlap too large", func(c *Config) { c.Segment.Overlap = c.Segment.MaxChars }},
		{"no workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"bad cancel policy", func(c *Config) { c.Pipeline.CancelPolicy = "retry" }},
		{"bad pattern", func(c *Config) { c.Pipeline.RefPattern = "fuzzy" }},
		{"no model", func(c *Config) { c.LLM.Model = "" }},
		{"zero dpi", func(c *Config) { c.OCR.DPI = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Segment:  SegmentConfig{MaxChars: 4000},
				Pipeline: PipelineConfig{Workers: 4, CallTimeout: time.Second, CancelPolicy: "discard", RefPattern: "strict"},
				LLM:      LLMConfig{Model: "m", APIKey: "k"},
				OCR:      OCRConfig{DPI: 300},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, CodeConfig, appErr.Code)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, 2, ExitCode(err))
		})
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := WithRunID(t.Context(), "abc")
	assert.Equal(t, "abc", RunIDFromContext(ctx))
	assert.Empty(t, RunIDFromContext(t.Context()))
	assert.NotEqual(t, NewRunID(), NewRunID())
}
