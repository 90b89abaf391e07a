package document

import (
	"fmt"
	"unicode/utf8"
)

// Document is the raw text extracted from a source file.
type Document struct {
	Path     string // Source file path
	Size     int64  // Source file size in bytes
	Title    string // Guessed title (first line of 10-200 characters)
	Text     string // Full extracted text
	Language string // Detected ISO 639-1 code, or "unknown"
	Method   string // Extraction method: "direct", "pdftotext", "ocr", "docx"
	Pages    int    // Page count (0 if N/A)
}

// Mode selects how a document is segmented.
type Mode string

const (
	ModeGeneral  Mode = "general"
	ModeAcademic Mode = "academic"
)

// Region is a contiguous labeled span of a document's text.
type Region struct {
	Label   string `json:"label"`  // Ordinal or canonical section name, e.g. "3" or "Methodology"
	Title   string `json:"title"`  // Heading title
	Start   int    `json:"start"`  // Byte offset of the region start in Document.Text
	End     int    `json:"end"`    // Byte offset one past the region end
	Content string `json:"-"`      // Region text (possibly trimmed)
	Length  int    `json:"length"` // Content length in characters
	Kind    string `json:"kind"`   // One of the Kind* constants
}

// Region kinds.
const (
	KindChapter  = "chapter"
	KindPart     = "part"
	KindSection  = "section"
	KindAcademic = "academic"
	KindWindow   = "window"
)

// NewRegion builds a region over text[start:end] with the given content.
func NewRegion(label, title, kind string, start, end int, content string) Region {
	return Region{
		Label:   label,
		Title:   title,
		Start:   start,
		End:     end,
		Content: content,
		Length:  utf8.RuneCountInString(content),
		Kind:    kind,
	}
}

// Name is the display name used in prompts and reports.
func (r Region) Name() string {
	var prefix string
	switch r.Kind {
	case KindAcademic:
		return r.Label
	case KindWindow:
		return r.Title
	case KindPart:
		prefix = "Part"
	case KindSection:
		prefix = "Section"
	default:
		prefix = "Chapter"
	}
	if r.Title == "" {
		return prefix + " " + r.Label
	}
	return fmt.Sprintf("%s %s: %s", prefix, r.Label, r.Title)
}

// FailureKind classifies a recoverable failure recorded in a Summary.
type FailureKind string

const (
	SummaryFailed     FailureKind = "SummaryFailed"
	TranslationFailed FailureKind = "TranslationFailed"
)

// Failure is the error side of a Summary.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Summary is the outcome of summarizing one region or the whole document.
// Exactly one of Text or Failure is meaningful.
type Summary struct {
	Ref      string   `json:"ref"`
	Text     string   `json:"text,omitempty"`
	Language string   `json:"language"`
	Failure  *Failure `json:"failure,omitempty"`
}

// Succeeded builds a successful Summary.
func Succeeded(ref, text, lang string) Summary {
	return Summary{Ref: ref, Text: text, Language: lang}
}

// Failed builds a Summary carrying a failure of the given kind.
func Failed(ref, lang string, kind FailureKind, err error) Summary {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Summary{Ref: ref, Language: lang, Failure: &Failure{Kind: kind, Message: msg}}
}

// OK reports whether the summary holds real content.
func (s Summary) OK() bool {
	return s.Failure == nil
}
