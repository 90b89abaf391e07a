// Package translate translates summary text through the configured LLM.
// Translation is fail-open: any failure returns the input unchanged.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/dgallion1/docsumm/internal/chunker"
	"github.com/dgallion1/docsumm/internal/document"
	"github.com/dgallion1/docsumm/internal/llm"
)

// DefaultChunkSize is the largest piece of text sent in one request.
const DefaultChunkSize = 4500

// Config holds the translation model settings.
type Config struct {
	Model     string
	MaxTokens int
	ChunkSize int
	Languages map[string]string // code -> display name
}

// Translator translates text chunk by chunk, sharing the summarizer's
// pacing limiter.
type Translator struct {
	client  llm.Client
	limiter *rate.Limiter
	cfg     Config
	log     *slog.Logger
}

// New creates a Translator.
func New(client llm.Client, limiter *rate.Limiter, cfg Config, log *slog.Logger) *Translator {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Translator{client: client, limiter: limiter, cfg: cfg, log: log}
}

// Translate returns text translated into lang. English, empty text, and
// any failure return text unchanged; failures are logged.
func (t *Translator) Translate(ctx context.Context, text, lang string) string {
	if t == nil || lang == "" || lang == "en" || strings.TrimSpace(text) == "" {
		return text
	}
	out, err := t.translate(ctx, text, lang)
	if err != nil {
		t.log.Warn("translation failed", "kind", document.TranslationFailed, "lang", lang, "error", err)
		return text
	}
	return out
}

func (t *Translator) translate(ctx context.Context, text, lang string) (string, error) {
	name, ok := t.cfg.Languages[lang]
	if !ok {
		name = lang
	}
	chunks := chunker.Split(text, t.cfg.ChunkSize)
	out := make([]string, 0, len(chunks))
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := t.limiter.Wait(ctx); err != nil {
			return "", err
		}
		res, err := t.client.Complete(context.WithoutCancel(ctx), llm.Request{
			Prompt:      BuildPrompt(name, c),
			Model:       t.cfg.Model,
			MaxTokens:   t.cfg.MaxTokens,
			Temperature: 0.2,
		})
		if err != nil {
			return "", fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
		out = append(out, strings.TrimSpace(res))
	}
	return strings.Join(out, "\n\n"), nil
}

// BuildPrompt asks for a faithful translation of text into langName.
func BuildPrompt(langName, text string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate the following text into %s. ", langName)
	sb.WriteString("Preserve the meaning, structure and formatting. Return only the translation, without notes or commentary.\n\n")
	sb.WriteString(text)
	return sb.String()
}
