// Package llm wraps the delegated text-generation model behind a small
// prompt-in/text-out interface. Two providers are supported: any
// OpenAI-compatible chat-completions endpoint, and the Gemini API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable wraps transport and provider failures so callers can
// map them to the generic connectivity message without inspecting
// provider-specific errors.
var ErrUnavailable = errors.New("model unavailable")

type Client interface {
	// Complete sends one prompt and returns the model's text answer.
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

type Config struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return NewOpenAIClient(cfg)
	case "gemini":
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}
