package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/dgallion1/docsumm/internal/chunker"
	"github.com/dgallion1/docsumm/internal/config"
	"github.com/dgallion1/docsumm/internal/document"
	"github.com/dgallion1/docsumm/internal/llm"
	"github.com/dgallion1/docsumm/internal/parser"
	"github.com/dgallion1/docsumm/internal/report"
	"github.com/dgallion1/docsumm/internal/segment"
	"github.com/dgallion1/docsumm/internal/summarize"
	"github.com/dgallion1/docsumm/internal/translate"
)

// ErrCancelled is returned by Run when the context is cancelled before the
// run finishes. The partial report is returned alongside it and is not
// persisted.
var ErrCancelled = errors.New("summarization cancelled")

// Observer receives progress from a run. Job implements it.
type Observer interface {
	SetStatus(status JobStatus, phase string)
	SetTotalRegions(n int)
	RegionDone(s document.Summary)
}

type nopObserver struct{}

func (nopObserver) SetStatus(JobStatus, string) {}
func (nopObserver) SetTotalRegions(int)         {}
func (nopObserver) RegionDone(document.Summary) {}

// Deps are the collaborators shared by every run in a process.
type Deps struct {
	Client  llm.Client    // Usually wrapped with llm.Instrument
	Limiter *rate.Limiter // Paces all outbound calls
	Stats   *llm.LLMStats // Optional, included in reports
}

// Pricing is used for the cost estimate.
type Pricing struct {
	InputCap    int     // Characters sent per call, assumed as tokens
	MaxTokens   int     // Output tokens per call
	InputPrice  float64 // USD per input token
	OutputPrice float64 // USD per output token
}

// Runner executes the sequential pipeline for one document: extract,
// segment, summarize each region, summarize the document, write the report.
type Runner struct {
	parserCfg  parser.Config
	segmenter  *segment.Segmenter
	summarizer *summarize.Summarizer
	translator *translate.Translator // nil when translation is disabled
	writer     *report.Writer        // nil skips persistence
	stats      *llm.LLMStats
	pricing    Pricing
	provider   string
	model      string
	log        *slog.Logger

	// name replaces the base name of the path in reports and artifact names.
	name string

	extract func(ctx context.Context, path string) (*document.Document, error)
}

// NewRunner builds a Runner from cfg for the given output language.
func NewRunner(cfg config.Config, lang string, deps Deps, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	if lang == "" {
		lang = cfg.OutputLanguage
	}

	r := &Runner{
		parserCfg: parser.Config{
			FallbackPdftotext: cfg.PDFFallbackPdftotext,
			OCREnabled:        cfg.OCREnabled,
			TesseractCmd:      cfg.TesseractCmd,
			OCRLanguage:       parser.TesseractLanguage(lang),
			MinTextChars:      cfg.MinTextChars,
		},
		segmenter: segment.New(segment.Config{
			LookaheadLines:  cfg.LookaheadLines,
			MaxRegionLength: cfg.MaxRegionLength,
			MinRegionLength: cfg.MinRegionLength,
			FallbackWindow:  cfg.FallbackWindow,
		}, log),
		summarizer: summarize.New(deps.Client, deps.Limiter, summarize.Config{
			Model:               cfg.Model,
			MaxTokens:           cfg.MaxTokens,
			Temperature:         cfg.Temperature,
			Language:            lang,
			MaxChunkSize:        cfg.MaxChunkSize,
			RegionInputCap:      cfg.RegionInputCap,
			DocumentInputCap:    cfg.DocumentInputCap,
			SuggestionsInputCap: cfg.SuggestionsInputCap,
		}, log),
		stats: deps.Stats,
		pricing: Pricing{
			InputCap:    cfg.RegionInputCap,
			MaxTokens:   cfg.MaxTokens,
			InputPrice:  cfg.InputTokenPrice,
			OutputPrice: cfg.OutputTokenPrice,
		},
		provider: cfg.Provider,
		model:    cfg.Model,
		log:      log,
	}
	if cfg.TranslateSummaries {
		r.translator = translate.New(deps.Client, deps.Limiter, translate.Config{
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			ChunkSize: cfg.TranslateChunkSize,
			Languages: config.Languages,
		}, log)
	}
	if cfg.OutputDir != "" {
		r.writer = report.NewWriter(cfg.OutputDir, log)
	}
	r.extract = func(ctx context.Context, path string) (*document.Document, error) {
		return parser.Extract(ctx, path, r.parserCfg, r.log)
	}
	return r
}

// Run processes the document at path. Extraction failures are returned as
// errors with no report. Region and document-level failures are recorded in
// the report. On cancellation the partial report is returned with
// ErrCancelled and nothing is written.
func (r *Runner) Run(ctx context.Context, path string, mode document.Mode, obs Observer) (*report.Report, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	lang := r.summarizer.Language()
	name := r.name
	if name == "" {
		name = filepath.Base(path)
	}
	rep := &report.Report{
		Status:    string(StatusExtracting),
		Metadata:  report.Metadata{File: name, OutputLanguage: lang, Mode: mode, Provider: r.provider, Model: r.model},
		Regions:   []report.RegionResult{},
		StartedAt: time.Now(),
	}

	obs.SetStatus(StatusExtracting, "extracting text")
	doc, err := r.extract(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return r.cancelled(ctx, rep)
		}
		return nil, err
	}
	r.log.Info("processing document", "file", rep.Metadata.File, "size", doc.Size,
		"language", doc.Language, "method", doc.Method, "pages", doc.Pages, "chars", utf8.RuneCountInString(doc.Text))

	obs.SetStatus(StatusSegmenting, "detecting structure")
	regions, used := r.segmenter.Segment(doc.Text, mode)
	obs.SetTotalRegions(len(regions))
	r.log.Info("document segmented", "mode", used, "regions", len(regions))

	rep.Metadata = report.Metadata{
		File:             rep.Metadata.File,
		SizeBytes:        doc.Size,
		Title:            doc.Title,
		DetectedLanguage: doc.Language,
		OutputLanguage:   lang,
		Mode:             used,
		ExtractionMethod: doc.Method,
		Pages:            doc.Pages,
		TotalChars:       utf8.RuneCountInString(doc.Text),
		TotalWords:       chunker.CountWords(doc.Text),
		RegionCount:      len(regions),
		Provider:         r.provider,
		Model:            r.model,
	}

	obs.SetStatus(StatusSummarizing, "summarizing regions")
	summaries := make([]document.Summary, 0, len(regions))
	for i, region := range regions {
		if ctx.Err() != nil {
			return r.cancelled(ctx, rep)
		}
		sum, err := r.summarizer.Region(ctx, region)
		if err != nil {
			return r.cancelled(ctx, rep)
		}
		sum = r.translate(ctx, sum)
		summaries = append(summaries, sum)
		rep.Regions = append(rep.Regions, report.RegionResult{Region: region, Summary: sum})
		obs.RegionDone(sum)
		if sum.OK() {
			r.log.Info("region summarized", "region", sum.Ref, "index", i+1, "of", len(regions))
		} else {
			r.log.Warn("region failed", "region", sum.Ref, "index", i+1, "error", sum.Failure.Message)
		}
	}

	obs.SetStatus(StatusSummarizing, "summarizing document")
	title := doc.Title
	if title == "" {
		title = rep.Metadata.File
	}
	docSum, err := r.summarizer.Document(ctx, title, used, regions, summaries)
	if err != nil {
		return r.cancelled(ctx, rep)
	}
	docSum = r.translate(ctx, docSum)
	rep.DocumentSummary = &docSum

	if used == document.ModeAcademic {
		kf, err := r.summarizer.KeyFindings(ctx, regions, summaries)
		if err != nil {
			return r.cancelled(ctx, rep)
		}
		kf = r.translate(ctx, kf)
		rep.KeyFindings = &kf
	}

	sugg, err := r.summarizer.Suggestions(ctx, title, docSum)
	if err != nil {
		return r.cancelled(ctx, rep)
	}
	sugg = r.translate(ctx, sugg)
	rep.Suggestions = &sugg

	rep.CostUSD = EstimateCost(len(regions)+2, r.pricing)
	rep.Status = string(outcome(rep))
	r.finish(rep)

	if r.writer != nil {
		obs.SetStatus(StatusWriting, "writing report")
		if _, err := r.writer.Write(rep); err != nil {
			return rep, fmt.Errorf("write report: %w", err)
		}
	}
	r.log.Info("summarization complete", "status", rep.Status, "regions", len(rep.Regions), "cost_usd", rep.CostUSD)
	return rep, nil
}

func (r *Runner) translate(ctx context.Context, s document.Summary) document.Summary {
	if r.translator == nil || !s.OK() {
		return s
	}
	s.Text = r.translator.Translate(ctx, s.Text, s.Language)
	return s
}

func (r *Runner) cancelled(ctx context.Context, rep *report.Report) (*report.Report, error) {
	rep.Status = string(StatusCancelled)
	r.finish(rep)
	r.log.Info("summarization cancelled", "regions_done", len(rep.Regions))
	return rep, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}

func (r *Runner) finish(rep *report.Report) {
	rep.FinishedAt = time.Now()
	if r.stats != nil {
		snap := r.stats.Snapshot()
		rep.LLMStats = &snap
	}
}

// outcome is completed when every summary succeeded, failed when nothing
// did, and partial otherwise.
func outcome(rep *report.Report) JobStatus {
	ok, failed := 0, 0
	count := func(s *document.Summary) {
		if s == nil {
			return
		}
		if s.OK() {
			ok++
		} else {
			failed++
		}
	}
	for i := range rep.Regions {
		count(&rep.Regions[i].Summary)
	}
	count(rep.DocumentSummary)
	count(rep.KeyFindings)
	count(rep.Suggestions)

	switch {
	case failed == 0:
		return StatusCompleted
	case ok == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// EstimateCost is calls × (input cap × input price + max tokens × output
// price), rounded to four decimals.
func EstimateCost(calls int, p Pricing) float64 {
	perCall := float64(p.InputCap)*p.InputPrice + float64(p.MaxTokens)*p.OutputPrice
	return math.Round(float64(calls)*perCall*10000) / 10000
}
