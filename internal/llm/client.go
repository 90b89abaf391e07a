// Package llm wraps chat-completion providers behind a single-call interface.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Request is one completion request.
type Request struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client issues a single completion request and returns the response text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// APIError is a failed provider call. StatusCode is 0 for transport failures.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s api status %d: %s", e.Provider, e.StatusCode, truncate(e.Message, 200))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s api: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s api: %s", e.Provider, truncate(e.Message, 200))
}

func (e *APIError) Unwrap() error { return e.Err }

// Options selects and configures a provider.
type Options struct {
	Provider string // "openrouter", "anthropic" or "gemini"
	APIKey   string
	BaseURL  string // Override for openrouter and anthropic endpoints.
}

// New constructs the client for opts.Provider.
func New(ctx context.Context, opts Options) (Client, error) {
	switch opts.Provider {
	case "", "openrouter":
		return NewOpenRouterClient(opts.APIKey, opts.BaseURL), nil
	case "anthropic":
		return NewClaudeClient(opts.APIKey, opts.BaseURL), nil
	case "gemini":
		return NewGeminiClient(ctx, opts.APIKey)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

// Instrumented records latency for every call made through a Client.
type Instrumented struct {
	next  Client
	stats *LLMStats
	log   *slog.Logger
}

// Instrument wraps c so each call is timed into stats and logged.
func Instrument(c Client, stats *LLMStats, log *slog.Logger) *Instrumented {
	if log == nil {
		log = slog.Default()
	}
	return &Instrumented{next: c, stats: stats, log: log}
}

// Complete implements Client.
func (c *Instrumented) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := c.next.Complete(ctx, req)
	elapsed := time.Since(start)
	c.stats.Record(elapsed.Milliseconds(), err)
	if err != nil {
		c.log.Warn("llm call failed", "model", req.Model, "duration_ms", elapsed.Milliseconds(), "error", err)
		return "", err
	}
	c.log.Debug("llm call", "model", req.Model, "prompt_chars", len(req.Prompt),
		"response_chars", len(out), "duration_ms", elapsed.Milliseconds())
	return out, nil
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
