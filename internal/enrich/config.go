package enrich

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds enrichment settings.
type Config struct {
	// FunctionsURL is the base URL of the remote function host. The quiz
	// function is served at <FunctionsURL>/functions/v1/generate_quiz.
	FunctionsURL string
	// FunctionsKey is sent both as the apikey header and as a bearer token.
	FunctionsKey string

	QuizTimeout   time.Duration
	LessonTimeout time.Duration

	// Disabled turns every call into an immediate nil result.
	Disabled bool

	// Structured asks the provider for a schema-checked object instead of
	// free text with an array somewhere inside.
	Structured bool

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for enrichment.
func DefaultConfig() Config {
	return Config{
		QuizTimeout:   20 * time.Second,
		LessonTimeout: 30 * time.Second,
		MaxTokens:     2048,
		Temperature:   0.7,
	}
}

// ConfigFromEnv builds a Config from PEERPATH_FUNCTIONS_* and
// PEERPATH_*ENRICH* variables, falling back to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.FunctionsURL = os.Getenv("PEERPATH_FUNCTIONS_URL")
	cfg.FunctionsKey = os.Getenv("PEERPATH_FUNCTIONS_KEY")

	if v := os.Getenv("PEERPATH_ENRICH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("PEERPATH_ENRICH_TIMEOUT: %w", err)
		}
		cfg.QuizTimeout = d
	}
	if v := os.Getenv("PEERPATH_LESSON_ENRICH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("PEERPATH_LESSON_ENRICH_TIMEOUT: %w", err)
		}
		cfg.LessonTimeout = d
	}
	if v := os.Getenv("PEERPATH_ENRICH_DISABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("PEERPATH_ENRICH_DISABLED: %w", err)
		}
		cfg.Disabled = b
	}
	if v := os.Getenv("PEERPATH_ENRICH_STRUCTURED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("PEERPATH_ENRICH_STRUCTURED: %w", err)
		}
		cfg.Structured = b
	}

	return cfg, cfg.Validate()
}

// Validate rejects non-positive timeouts.
func (c Config) Validate() error {
	if c.QuizTimeout <= 0 {
		return fmt.Errorf("quiz enrichment timeout must be positive, got %s", c.QuizTimeout)
	}
	if c.LessonTimeout <= 0 {
		return fmt.Errorf("lesson enrichment timeout must be positive, got %s", c.LessonTimeout)
	}
	return nil
}
