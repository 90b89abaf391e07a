package parser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestForFile(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"book.pdf", false},
		{"BOOK.PDF", false},
		{"notes.docx", false},
		{"notes.doc", true},
		{"readme.txt", true},
		{"noext", true},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.name, DefaultConfig(), quietLog())
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("ForFile(%q) error = %v, want ErrUnsupportedFormat", tt.name, err)
			}
			continue
		}
		if err != nil || p == nil {
			t.Errorf("ForFile(%q) = %v, %v", tt.name, p, err)
		}
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Extract(context.Background(), path, DefaultConfig(), quietLog())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), DefaultConfig(), quietLog())
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected *ExtractionError, got %T: %v", err, err)
	}
}

func TestExtract_CorruptPDFWithoutFallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.FallbackPdftotext = false
	cfg.OCREnabled = false

	_, err := Extract(context.Background(), path, cfg, quietLog())
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected *ExtractionError, got %T: %v", err, err)
	}
}

func writeDocx(t *testing.T, build func(w *docx.Docx)) string {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	build(w)
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteTo(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract_DOCXParagraphsAndTables(t *testing.T) {
	path := writeDocx(t, func(w *docx.Docx) {
		w.AddParagraph().AddText("Chapter 1: The Beginning")
		w.AddParagraph().AddText(strings.Repeat("It was a bright cold day in April. ", 5))
		tbl := w.AddTable(2, 2, 0, nil)
		tbl.TableRows[0].TableCells[0].AddParagraph().AddText("name")
		tbl.TableRows[0].TableCells[1].AddParagraph().AddText("value")
		tbl.TableRows[1].TableCells[0].AddParagraph().AddText("alpha")
		tbl.TableRows[1].TableCells[1].AddParagraph().AddText("42")
		w.AddParagraph().AddText("After the table.")
	})

	doc, err := Extract(context.Background(), path, DefaultConfig(), quietLog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Method != "docx" {
		t.Errorf("method = %q, want docx", doc.Method)
	}
	if doc.Title != "Chapter 1: The Beginning" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Language != "en" {
		t.Errorf("language = %q, want en", doc.Language)
	}

	if !strings.Contains(doc.Text, "Chapter 1: The Beginning\n") {
		t.Errorf("heading paragraph should be its own line: %q", doc.Text)
	}
	after := strings.Index(doc.Text, "After the table.")
	row := strings.Index(doc.Text, "alpha 42")
	if after < 0 || row < 0 {
		t.Fatalf("missing content in %q", doc.Text)
	}
	if row < after {
		t.Errorf("table rows should follow paragraph text")
	}
	if !strings.Contains(doc.Text, "name value \n") {
		t.Errorf("expected one table row per line, got %q", doc.Text)
	}
}

func TestExtract_EmptyDOCX(t *testing.T) {
	path := writeDocx(t, func(w *docx.Docx) {})
	_, err := Extract(context.Background(), path, DefaultConfig(), quietLog())
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestGuessTitle(t *testing.T) {
	text := "\nshort\n   A Reasonable Document Title  \nbody"
	if got := GuessTitle(text); got != "A Reasonable Document Title" {
		t.Errorf("GuessTitle = %q", got)
	}
	if got := GuessTitle("tiny\nlines"); got != "" {
		t.Errorf("GuessTitle = %q, want empty", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	if got := DetectLanguage("too short"); got != "unknown" {
		t.Errorf("short text: got %q, want unknown", got)
	}
	english := strings.Repeat("The committee published its findings on the economic impact of the new policy. ", 3)
	if got := DetectLanguage(english); got != "en" {
		t.Errorf("english text: got %q, want en", got)
	}
}

func TestTesseractLanguage(t *testing.T) {
	for lang, want := range map[string]string{"en": "eng", "bn": "ben", "ar": "ara", "xx": "eng"} {
		if got := TesseractLanguage(lang); got != want {
			t.Errorf("TesseractLanguage(%q) = %q, want %q", lang, got, want)
		}
	}
}

func TestPageNum(t *testing.T) {
	if got := pageNum("/tmp/x/page-012.png"); got != 12 {
		t.Errorf("pageNum = %d, want 12", got)
	}
}
