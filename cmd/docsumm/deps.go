package main

import (
	"context"
	"log/slog"

	"github.com/dgallion1/docsumm/internal/config"
	"github.com/dgallion1/docsumm/internal/llm"
	"github.com/dgallion1/docsumm/internal/pipeline"
	"github.com/dgallion1/docsumm/internal/summarize"
)

// newDeps builds the instrumented LLM client and the shared pacing limiter.
// The returned func releases client resources.
func newDeps(ctx context.Context, cfg config.Config, log *slog.Logger) (pipeline.Deps, func(), error) {
	client, err := llm.New(ctx, llm.Options{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey(),
		BaseURL:  baseURL(cfg),
	})
	if err != nil {
		return pipeline.Deps{}, nil, err
	}

	stats := llm.NewLLMStats(0)
	deps := pipeline.Deps{
		Client:  llm.Instrument(client, stats, log),
		Limiter: summarize.NewLimiter(cfg.RequestInterval),
		Stats:   stats,
	}
	closeFn := func() {
		if c, ok := client.(interface{ Close() }); ok {
			c.Close()
		}
	}
	return deps, closeFn, nil
}

func baseURL(cfg config.Config) string {
	if cfg.Provider == "openrouter" {
		return cfg.OpenRouterBaseURL
	}
	return ""
}
