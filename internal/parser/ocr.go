package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var pageNumRe = regexp.MustCompile(`-(\d+)\.png$`)

// ocrPDF rasterizes each page with pdftoppm and runs tesseract on the
// images. It returns the text and the number of pages processed.
func ocrPDF(ctx context.Context, path string, cfg Config, log *slog.Logger) (string, int, error) {
	tesseract := cfg.TesseractCmd
	if tesseract == "" {
		tesseract = "tesseract"
	}
	if _, err := exec.LookPath(tesseract); err != nil {
		return "", 0, fmt.Errorf("tesseract not available: %w", err)
	}
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return "", 0, errors.New("cannot convert PDF to images: install Poppler (pdftoppm)")
	}

	dir, err := os.MkdirTemp("", "docsumm-ocr-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-png", "-r", "300", path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", 0, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", 0, err
	}
	if len(images) == 0 {
		return "", 0, errors.New("pdftoppm produced no images")
	}
	slices.SortFunc(images, func(a, b string) int { return pageNum(a) - pageNum(b) })

	lang := cfg.OCRLanguage
	if lang == "" {
		lang = "eng"
	}

	var buf strings.Builder
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		if i%5 == 0 {
			log.Debug("ocr page", "page", i+1, "pages", len(images))
		}
		out, err := exec.CommandContext(ctx, tesseract, img, "stdout", "-l", lang, "--psm", "3").Output()
		if err != nil {
			log.Warn("tesseract failed", "page", i+1, "error", err)
			continue
		}
		buf.Write(out)
		buf.WriteString("\n\n")
	}
	log.Info("ocr finished", "pages", len(images), "chars", runeCount(buf.String()))
	return buf.String(), len(images), nil
}

func pageNum(path string) int {
	m := pageNumRe.FindStringSubmatch(path)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
