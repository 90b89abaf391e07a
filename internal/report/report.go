// Package report persists a summarization run as JSON, plain text and HTML.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docsumm/internal/document"
	"github.com/dgallion1/docsumm/internal/llm"
)

// Metadata describes the source document and the run settings.
type Metadata struct {
	File             string        `json:"file"`
	SizeBytes        int64         `json:"size_bytes"`
	Title            string        `json:"title,omitempty"`
	DetectedLanguage string        `json:"detected_language"`
	OutputLanguage   string        `json:"output_language"`
	Mode             document.Mode `json:"mode"`
	ExtractionMethod string        `json:"extraction_method"`
	Pages            int           `json:"pages,omitempty"`
	TotalChars       int           `json:"total_chars"`
	TotalWords       int           `json:"total_words"`
	RegionCount      int           `json:"region_count"`
	Provider         string        `json:"provider,omitempty"`
	Model            string        `json:"model,omitempty"`
}

// RegionResult is a region and the summary produced for it.
type RegionResult struct {
	document.Region
	Summary document.Summary `json:"summary"`
}

// Report is the aggregate result of one run.
type Report struct {
	Status          string             `json:"status"`
	Metadata        Metadata           `json:"metadata"`
	Regions         []RegionResult     `json:"regions"`
	DocumentSummary *document.Summary  `json:"document_summary,omitempty"`
	KeyFindings     *document.Summary  `json:"key_findings,omitempty"`
	Suggestions     *document.Summary  `json:"suggestions,omitempty"`
	CostUSD         float64            `json:"cost_usd"`
	LLMStats        *llm.StatsSnapshot `json:"llm_stats,omitempty"`
	StartedAt       time.Time          `json:"started_at"`
	FinishedAt      time.Time          `json:"finished_at"`
	Artifacts       *Paths             `json:"artifacts,omitempty"`
}

// Paths are the files written for a report.
type Paths struct {
	JSON string `json:"json"`
	Text string `json:"text"`
	HTML string `json:"html"`
}

// Display renders a summary for humans. Failures become a bracketed marker.
func Display(s document.Summary) string {
	if s.OK() {
		return s.Text
	}
	kind := "Summary"
	if s.Failure.Kind == document.TranslationFailed {
		kind = "Translation"
	}
	return fmt.Sprintf("[%s failed: %s]", kind, s.Failure.Message)
}

// displayPtr is Display for optional summaries; nil renders as empty.
func displayPtr(s *document.Summary) string {
	if s == nil {
		return ""
	}
	return Display(*s)
}

// Writer writes reports into Dir, creating it on demand.
type Writer struct {
	Dir string
	Now func() time.Time
	Log *slog.Logger
}

// NewWriter creates a Writer for dir.
func NewWriter(dir string, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{Dir: dir, Now: time.Now, Log: log}
}

// Paths returns the artifact names for a source file at time ts.
func (w *Writer) Paths(source string, ts time.Time) Paths {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	prefix := filepath.Join(w.Dir, ts.Format("20060102_150405")+"_"+stem)
	return Paths{
		JSON: prefix + ".json",
		Text: prefix + "_summary.txt",
		HTML: prefix + ".html",
	}
}

// Write persists rep in all formats and records the paths on rep.
func (w *Writer) Write(rep *Report) (Paths, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	paths := w.Paths(rep.Metadata.File, now())
	rep.Artifacts = &paths

	data, err := MarshalJSON(rep)
	if err != nil {
		return Paths{}, fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(paths.JSON, data, 0o644); err != nil {
		return Paths{}, fmt.Errorf("write json: %w", err)
	}
	if err := os.WriteFile(paths.Text, []byte(RenderText(rep)), 0o644); err != nil {
		return Paths{}, fmt.Errorf("write text: %w", err)
	}
	page, err := RenderHTML(rep)
	if err != nil {
		return Paths{}, fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(paths.HTML, page, 0o644); err != nil {
		return Paths{}, fmt.Errorf("write html: %w", err)
	}

	if w.Log != nil {
		w.Log.Info("report written", "json", paths.JSON, "text", paths.Text, "html", paths.HTML)
	}
	return paths, nil
}

// MarshalJSON encodes rep indented, leaving non-ASCII text and markup
// characters unescaped.
func MarshalJSON(rep *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
