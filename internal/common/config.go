package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Segment  SegmentConfig
	Pipeline PipelineConfig
	LLM      LLMConfig
	Database DatabaseConfig
	OCR      OCRConfig
}

// SegmentConfig holds segmentation configuration
type SegmentConfig struct {
	MaxChars int
	Overlap  int
}

// PipelineConfig holds worker pool and cross-check configuration
type PipelineConfig struct {
	Workers      int
	CallTimeout  time.Duration
	CancelPolicy string
	RefPattern   string
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// DatabaseConfig holds the optional run audit store configuration
type DatabaseConfig struct {
	DSN         string
	DialTimeout time.Duration
}

// OCRConfig holds the page reader and tesseract fallback configuration
type OCRConfig struct {
	MaxPages      int
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	MinPageChars  int
	Disable       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Segment: SegmentConfig{
			MaxChars: getEnvAsInt("SEGMENT_MAX_CHARS", 4000),
			Overlap:  getEnvAsInt("SEGMENT_OVERLAP", 0),
		},
		Pipeline: PipelineConfig{
			Workers:      getEnvAsInt("PIPELINE_WORKERS", 4),
			CallTimeout:  getEnvAsDuration("LLM_CALL_TIMEOUT", 60*time.Second),
			CancelPolicy: strings.ToLower(getEnv("PIPELINE_CANCEL_POLICY", "discard")),
			RefPattern:   strings.ToLower(getEnv("REF_PATTERN", "strict")),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "http://localhost:1234/v1"),
			APIKey:      getEnv("LLM_API_KEY", "lm-studio"),
			Model:       getEnv("LLM_MODEL", "google/gemma-3-4b"),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 0),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("DB_URL", ""),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
			Pdftoppm:      getEnv("PDFTOPPM_PATH", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_PATH", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "spa"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MinPageChars:  getEnvAsInt("OCR_MIN_PAGE_CHARS", 20),
			Disable:       getEnvAsBool("OCR_DISABLE", false),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Segment.MaxChars < 1 {
		return NewAppError(CodeConfig, "SEGMENT_MAX_CHARS must be positive", ErrInvalidInput)
	}
	if c.Segment.Overlap < 0 || c.Segment.Overlap >= c.Segment.MaxChars {
		return NewAppError(CodeConfig, "SEGMENT_OVERLAP must be in [0, SEGMENT_MAX_CHARS)", ErrInvalidInput)
	}
	if c.Pipeline.Workers < 1 {
		return NewAppError(CodeConfig, "PIPELINE_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Pipeline.CallTimeout <= 0 {
		return NewAppError(CodeConfig, "LLM_CALL_TIMEOUT must be positive", ErrInvalidInput)
	}
	switch c.Pipeline.CancelPolicy {
	case "discard", "best_effort":
	default:
		return NewAppError(CodeConfig, "PIPELINE_CANCEL_POLICY must be discard or best_effort", ErrInvalidInput)
	}
	switch c.Pipeline.RefPattern {
	case "strict", "loose", "full":
	default:
		return NewAppError(CodeConfig, "REF_PATTERN must be strict, loose or full", ErrInvalidInput)
	}
	if c.OCR.MaxPages < 0 {
		return NewAppError(CodeConfig, "OCR_MAX_PAGES must not be negative", ErrInvalidInput)
	}
	if c.OCR.DPI < 1 {
		return NewAppError(CodeConfig, "OCR_DPI must be positive", ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError(CodeConfig, "LLM_MODEL is required", ErrInvalidInput)
	}
	if c.LLM.BaseURL == "" && c.LLM.APIKey == "" {
		return NewAppError(CodeConfig, "LLM_API_KEY is required when LLM_BASE_URL is unset", ErrInvalidInput)
	}
	return nil
}
