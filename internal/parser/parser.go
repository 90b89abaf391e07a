package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/docsumm/internal/document"
)

// ErrUnsupportedFormat is returned for files other than PDF and DOCX.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrNoText means extraction finished without usable text.
var ErrNoText = errors.New("no usable text extracted")

// ExtractionError is a fatal failure to read text from a supported file.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Config controls extraction.
type Config struct {
	FallbackPdftotext bool   // Try pdftotext when the Go reader yields too little text.
	OCREnabled        bool   // Run OCR on PDFs with too little text.
	TesseractCmd      string // Tesseract binary.
	OCRLanguage       string // Tesseract language, e.g. "eng" or "ben".
	MinTextChars      int    // Below this many characters a PDF is treated as scanned.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		FallbackPdftotext: true,
		OCREnabled:        true,
		TesseractCmd:      "tesseract",
		OCRLanguage:       "eng",
		MinTextChars:      100,
	}
}

// Extraction is the raw output of a Parser.
type Extraction struct {
	Text   string
	Method string // "direct", "pdftotext", "ocr" or "docx"
	Pages  int
}

// Parser reads text from a file on disk.
type Parser interface {
	Parse(ctx context.Context, path string) (*Extraction, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, cfg Config, log *slog.Logger) (Parser, error) {
	if log == nil {
		log = slog.Default()
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{cfg: cfg, log: log}, nil
	case ".docx":
		return &DOCXParser{log: log}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// TesseractLanguage maps an output language code to a tesseract language.
func TesseractLanguage(lang string) string {
	switch lang {
	case "bn":
		return "ben"
	case "ar":
		return "ara"
	default:
		return "eng"
	}
}

// Extract reads path into a Document. Unsupported extensions fail with
// ErrUnsupportedFormat; anything else that leaves no text is an
// *ExtractionError.
func Extract(ctx context.Context, path string, cfg Config, log *slog.Logger) (*document.Document, error) {
	p, err := ForFile(path, cfg, log)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	ex, err := p.Parse(ctx, path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	text := norm.NFC.String(ex.Text)
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionError{Path: path, Err: ErrNoText}
	}

	return &document.Document{
		Path:     path,
		Size:     info.Size(),
		Title:    GuessTitle(text),
		Text:     text,
		Language: DetectLanguage(text),
		Method:   ex.Method,
		Pages:    ex.Pages,
	}, nil
}

// GuessTitle returns the first line of 10 to 200 characters, or "".
func GuessTitle(text string) string {
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if n := utf8.RuneCountInString(line); n > 10 && n < 200 {
			return line
		}
	}
	return ""
}

func runeCount(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
