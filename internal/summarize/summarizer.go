// Package summarize turns segmented regions into summaries through an LLM.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/dgallion1/docsumm/internal/chunker"
	"github.com/dgallion1/docsumm/internal/document"
	"github.com/dgallion1/docsumm/internal/llm"
)

// Refs used for the document-level summaries.
const (
	RefDocument    = "document"
	RefSuggestions = "suggestions"
	RefKeyFindings = "key_findings"
)

// ErrEmptyRegion marks a region with no text to summarize.
var ErrEmptyRegion = errors.New("empty region")

var (
	errNoRegionSummaries = errors.New("no region summaries available to synthesize from")
	errNoDocumentSummary = errors.New("document summary unavailable")
	errNoFindingsInput   = errors.New("no results or conclusion summary available")
)

// Config holds the model settings and input caps.
type Config struct {
	Model            string
	MaxTokens        int
	SectionMaxTokens int // Output cap for academic section summaries
	Temperature      float64
	Language         string

	MaxChunkSize        int // Regions above this are split and combined
	RegionInputCap      int
	DocumentInputCap    int
	SuggestionsInputCap int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxTokens:           4000,
		SectionMaxTokens:    3000,
		Temperature:         0.7,
		Language:            "en",
		MaxChunkSize:        chunker.DefaultMaxChars,
		RegionInputCap:      15000,
		DocumentInputCap:    20000,
		SuggestionsInputCap: 8000,
	}
}

// Summarizer issues summarization requests one at a time through a shared
// pacing limiter.
type Summarizer struct {
	client  llm.Client
	limiter *rate.Limiter
	cfg     Config
	log     *slog.Logger
}

// NewLimiter paces outbound calls to one per interval. A non-positive
// interval disables pacing.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// New creates a Summarizer. A nil limiter disables pacing.
func New(client llm.Client, limiter *rate.Limiter, cfg Config, log *slog.Logger) *Summarizer {
	if limiter == nil {
		limiter = NewLimiter(0)
	}
	if log == nil {
		log = slog.Default()
	}
	d := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = d.MaxTokens
	}
	if cfg.SectionMaxTokens <= 0 {
		cfg.SectionMaxTokens = d.SectionMaxTokens
	}
	if cfg.Language == "" {
		cfg.Language = d.Language
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = d.MaxChunkSize
	}
	if cfg.RegionInputCap <= 0 {
		cfg.RegionInputCap = d.RegionInputCap
	}
	if cfg.DocumentInputCap <= 0 {
		cfg.DocumentInputCap = d.DocumentInputCap
	}
	if cfg.SuggestionsInputCap <= 0 {
		cfg.SuggestionsInputCap = d.SuggestionsInputCap
	}
	return &Summarizer{client: client, limiter: limiter, cfg: cfg, log: log}
}

// Language is the output language of every summary.
func (s *Summarizer) Language() string { return s.cfg.Language }

// call checks for cancellation, waits for the pacing limiter, then issues
// one request. A request that has started is not aborted by cancellation.
func (s *Summarizer) call(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return s.client.Complete(context.WithoutCancel(ctx), llm.Request{
		Prompt:      prompt,
		Model:       s.cfg.Model,
		MaxTokens:   maxTokens,
		Temperature: s.cfg.Temperature,
	})
}

// cancelled reports whether err was caused by ctx being done.
func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}

// Region summarizes one region. Content up to MaxChunkSize is summarized in
// one call; longer content is split at paragraph boundaries, each part is
// summarized, and the parts are combined in a final call. Any failure
// yields a failed Summary; the returned error is non-nil only when ctx was
// cancelled.
func (s *Summarizer) Region(ctx context.Context, r document.Region) (document.Summary, error) {
	ref := r.Name()
	if strings.TrimSpace(r.Content) == "" {
		return s.fail(ctx, ref, ErrEmptyRegion)
	}
	chunks := chunker.Split(r.Content, s.cfg.MaxChunkSize)
	if len(chunks) == 0 {
		return s.fail(ctx, ref, ErrEmptyRegion)
	}

	if len(chunks) == 1 {
		text, err := s.call(ctx, s.regionPrompt(r, ref, clip(r.Content, s.cfg.RegionInputCap)), s.maxTokens(r))
		if err != nil {
			return s.fail(ctx, ref, err)
		}
		return document.Succeeded(ref, text, s.cfg.Language), nil
	}

	s.log.Debug("region split", "region", ref, "parts", len(chunks), "chars", r.Length)
	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		title := fmt.Sprintf("%s (Part %d of %d)", ref, i+1, len(chunks))
		text, err := s.call(ctx, s.regionPrompt(r, title, c), s.maxTokens(r))
		if err != nil {
			return s.fail(ctx, ref, fmt.Errorf("part %d: %w", i+1, err))
		}
		parts = append(parts, text)
	}

	text, err := s.call(ctx, BuildCombinePrompt(s.cfg.Language, ref, parts), s.cfg.MaxTokens)
	if err != nil {
		return s.fail(ctx, ref, fmt.Errorf("combine: %w", err))
	}
	return document.Succeeded(ref, text, s.cfg.Language), nil
}

func (s *Summarizer) regionPrompt(r document.Region, title, content string) string {
	switch r.Kind {
	case document.KindAcademic:
		return BuildAcademicSectionPrompt(s.cfg.Language, r.Label, content)
	case document.KindSection, document.KindWindow:
		return BuildRegionPrompt(s.cfg.Language, "section", title, content)
	default:
		return BuildRegionPrompt(s.cfg.Language, "chapter", title, content)
	}
}

func (s *Summarizer) maxTokens(r document.Region) int {
	if r.Kind == document.KindAcademic {
		return s.cfg.SectionMaxTokens
	}
	return s.cfg.MaxTokens
}

func (s *Summarizer) fail(ctx context.Context, ref string, err error) (document.Summary, error) {
	if cancelled(ctx, err) {
		return document.Summary{}, err
	}
	return document.Failed(ref, s.cfg.Language, document.SummaryFailed, err), nil
}

// Document produces the whole-document summary. Academic documents are
// always synthesized from their section summaries. Otherwise, when the
// combined region content is under MaxChunkSize it is summarized directly;
// larger documents are synthesized from the successful region summaries.
func (s *Summarizer) Document(ctx context.Context, title string, mode document.Mode, regions []document.Region, summaries []document.Summary) (document.Summary, error) {
	pairs := titled(regions, summaries, mode)

	if mode == document.ModeAcademic {
		if len(pairs) == 0 {
			return document.Failed(RefDocument, s.cfg.Language, document.SummaryFailed, errNoRegionSummaries), nil
		}
		text, err := s.call(ctx, BuildAcademicOverallPrompt(s.cfg.Language, pairs), s.cfg.MaxTokens)
		if err != nil {
			return s.fail(ctx, RefDocument, err)
		}
		return document.Succeeded(RefDocument, text, s.cfg.Language), nil
	}

	content := joinContent(regions)
	var prompt string
	if utf8.RuneCountInString(content) < s.cfg.MaxChunkSize {
		prompt = BuildDocumentPrompt(s.cfg.Language, title, clip(content, s.cfg.DocumentInputCap))
	} else {
		if len(pairs) == 0 {
			return document.Failed(RefDocument, s.cfg.Language, document.SummaryFailed, errNoRegionSummaries), nil
		}
		prompt = BuildSynthesisPrompt(s.cfg.Language, title, pairs)
	}
	text, err := s.call(ctx, prompt, s.cfg.MaxTokens)
	if err != nil {
		return s.fail(ctx, RefDocument, err)
	}
	return document.Succeeded(RefDocument, text, s.cfg.Language), nil
}

// Suggestions produces reader suggestions from the document summary. A
// failed document summary yields a failed result without a call.
func (s *Summarizer) Suggestions(ctx context.Context, title string, doc document.Summary) (document.Summary, error) {
	if !doc.OK() {
		return document.Failed(RefSuggestions, s.cfg.Language, document.SummaryFailed, errNoDocumentSummary), nil
	}
	prompt := BuildSuggestionsPrompt(s.cfg.Language, title, clip(doc.Text, s.cfg.SuggestionsInputCap))
	text, err := s.call(ctx, prompt, s.cfg.MaxTokens)
	if err != nil {
		return s.fail(ctx, RefSuggestions, err)
	}
	return document.Succeeded(RefSuggestions, text, s.cfg.Language), nil
}

// KeyFindings lists the main findings of an academic paper from its Results
// and Conclusion summaries.
func (s *Summarizer) KeyFindings(ctx context.Context, regions []document.Region, summaries []document.Summary) (document.Summary, error) {
	var results, conclusion string
	for i, r := range regions {
		if i >= len(summaries) || !summaries[i].OK() {
			continue
		}
		switch r.Label {
		case "Results":
			results = summaries[i].Text
		case "Conclusion":
			conclusion = summaries[i].Text
		}
	}
	if results == "" && conclusion == "" {
		return document.Failed(RefKeyFindings, s.cfg.Language, document.SummaryFailed, errNoFindingsInput), nil
	}
	text, err := s.call(ctx, BuildKeyFindingsPrompt(s.cfg.Language, results, conclusion), s.cfg.SectionMaxTokens)
	if err != nil {
		return s.fail(ctx, RefKeyFindings, err)
	}
	return document.Succeeded(RefKeyFindings, text, s.cfg.Language), nil
}

// titled pairs each successful summary with its region's display name.
func titled(regions []document.Region, summaries []document.Summary, mode document.Mode) []TitledSummary {
	var out []TitledSummary
	for i, r := range regions {
		if i >= len(summaries) || !summaries[i].OK() {
			continue
		}
		name := r.Name()
		if mode == document.ModeAcademic {
			name = r.Label
		}
		out = append(out, TitledSummary{Title: name, Summary: summaries[i].Text})
	}
	return out
}

func joinContent(regions []document.Region) string {
	parts := make([]string, len(regions))
	for i, r := range regions {
		parts[i] = r.Content
	}
	return strings.Join(parts, "\n\n")
}

// clip returns at most the first n characters of s.
func clip(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
