package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFParser handles PDF files. It tries the Go library first, then
// pdftotext if available, then OCR for scanned documents.
type PDFParser struct {
	cfg Config
	log *slog.Logger
}

func (p *PDFParser) Parse(ctx context.Context, path string) (*Extraction, error) {
	minChars := p.cfg.MinTextChars
	if minChars <= 0 {
		minChars = 100
	}
	pages := pageCount(path)

	text, err := extractPDFText(path)
	if err != nil {
		p.log.Warn("pdf text extraction failed", "error", err)
	} else if runeCount(text) >= minChars {
		p.log.Info("text extracted", "method", "direct", "pages", pages)
		return &Extraction{Text: text, Method: "direct", Pages: pages}, nil
	}

	if p.cfg.FallbackPdftotext {
		alt, altErr := extractPdftotext(ctx, path)
		if altErr == nil && runeCount(alt) >= minChars {
			p.log.Info("text extracted", "method", "pdftotext", "pages", pages)
			return &Extraction{Text: alt, Method: "pdftotext", Pages: pages}, nil
		}
		if altErr != nil {
			p.log.Debug("pdftotext unavailable", "error", altErr)
		}
	}

	if !p.cfg.OCREnabled {
		if err != nil {
			return nil, fmt.Errorf("extract pdf text: %w", err)
		}
		return nil, ErrNoText
	}

	p.log.Info("low text extraction, switching to OCR", "chars", runeCount(text), "pages", pages)
	ocrText, ocrPages, ocrErr := ocrPDF(ctx, path, p.cfg, p.log)
	if ocrErr != nil {
		return nil, fmt.Errorf("ocr: %w", ocrErr)
	}
	if pages == 0 {
		pages = ocrPages
	}
	if strings.TrimSpace(ocrText) == "" {
		return nil, ErrNoText
	}
	return &Extraction{Text: ocrText, Method: "ocr", Pages: pages}, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n\n")
	}
	return buf.String(), nil
}

func extractPdftotext(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", errors.New("pdftotext not installed")
	}
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// pageCount returns the page count, or 0 if the file cannot be read.
func pageCount(path string) int {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0
	}
	return n
}
