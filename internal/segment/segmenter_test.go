package segment

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dgallion1/docsumm/internal/document"
)

func testSegmenter(cfg Config) *Segmenter {
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func body(n int) string {
	return strings.Repeat("lorem ipsum ", n)
}

func TestChapters_TwoChapters(t *testing.T) {
	text := "Chapter 1: Intro\n" + body(42) + "\nChapter 2: Methods\n" + body(42)
	regions := testSegmenter(DefaultConfig()).Chapters(text)

	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].Label != "1" || regions[0].Title != "Intro" {
		t.Errorf("region 0 = %q/%q, want 1/Intro", regions[0].Label, regions[0].Title)
	}
	if regions[1].Label != "2" || regions[1].Title != "Methods" {
		t.Errorf("region 1 = %q/%q, want 2/Methods", regions[1].Label, regions[1].Title)
	}
	second := strings.Index(text, "Chapter 2")
	if regions[0].Start != 0 || regions[0].End != second {
		t.Errorf("region 0 span = [%d,%d), want [0,%d)", regions[0].Start, regions[0].End, second)
	}
	if !strings.HasPrefix(regions[0].Content, "Chapter 1") || strings.Contains(regions[0].Content, "Chapter 2") {
		t.Errorf("region 0 content has wrong bounds: %q", regions[0].Content)
	}
	if regions[1].End != len(text) {
		t.Errorf("region 1 end = %d, want %d", regions[1].End, len(text))
	}
	if regions[0].Name() != "Chapter 1: Intro" {
		t.Errorf("Name() = %q", regions[0].Name())
	}
}

func TestChapters_DocumentOrder(t *testing.T) {
	text := "Chapter 3: Late\n" + body(20) + "\nChapter 1: Early\n" + body(20)
	regions := testSegmenter(DefaultConfig()).Chapters(text)

	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].Label != "3" || regions[1].Label != "1" {
		t.Errorf("labels = %q, %q; want 3, 1", regions[0].Label, regions[1].Label)
	}
	if regions[0].End > regions[1].Start {
		t.Errorf("regions overlap: %d > %d", regions[0].End, regions[1].Start)
	}
}

func TestChapters_DropsShortRegions(t *testing.T) {
	text := "Chapter 1: Stub\nshort\nChapter 2: Real\n" + body(20)
	regions := testSegmenter(DefaultConfig()).Chapters(text)

	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].Label != "2" {
		t.Errorf("label = %q, want 2", regions[0].Label)
	}
	for _, r := range regions {
		if r.Length < 100 {
			t.Errorf("region %q has length %d below minimum", r.Label, r.Length)
		}
	}
}

func TestChapters_MaxRegionLength(t *testing.T) {
	cfg := Config{LookaheadLines: 5, MaxRegionLength: 300, MinRegionLength: 10, FallbackWindow: 1000}

	var b strings.Builder
	b.WriteString("Chapter 1: Start\n")
	for i := 0; i < 50; i++ {
		if i == 40 {
			b.WriteString("Chapter 2: Later\n")
		}
		b.WriteString("filler text line number\n")
	}
	text := b.String()

	regions := testSegmenter(cfg).Chapters(text)
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].Length > cfg.MaxRegionLength {
		t.Errorf("region 0 length %d exceeds cap %d", regions[0].Length, cfg.MaxRegionLength)
	}
	if regions[0].End-regions[0].Start != cfg.MaxRegionLength {
		t.Errorf("region 0 span = %d, want %d", regions[0].End-regions[0].Start, cfg.MaxRegionLength)
	}
	if regions[1].Label != "2" {
		t.Errorf("region 1 label = %q, want 2", regions[1].Label)
	}
	if regions[1].Start < regions[0].End {
		t.Errorf("region 1 starts inside region 0")
	}
}

func TestChapters_FallbackWindows(t *testing.T) {
	text := strings.Repeat("añb ", 625) // 2500 characters, multi-byte
	cfg := DefaultConfig()
	cfg.FallbackWindow = 1000

	regions := testSegmenter(cfg).Chapters(text)
	if len(regions) != 3 {
		t.Fatalf("expected ceil(2500/1000) = 3 windows, got %d", len(regions))
	}

	var rebuilt strings.Builder
	next := 0
	for i, r := range regions {
		if r.Start != next {
			t.Errorf("window %d starts at %d, want %d", i, r.Start, next)
		}
		if r.Kind != document.KindWindow {
			t.Errorf("window %d kind = %q", i, r.Kind)
		}
		if want := []string{"1", "2", "3"}[i]; r.Label != want {
			t.Errorf("window %d label = %q, want %q", i, r.Label, want)
		}
		if r.Name() != "Section "+r.Label {
			t.Errorf("window %d name = %q", i, r.Name())
		}
		rebuilt.WriteString(text[r.Start:r.End])
		next = r.End
	}
	if rebuilt.String() != text {
		t.Error("windows do not reconstruct the original text")
	}
	if regions[2].Length != 500 {
		t.Errorf("last window length = %d, want 500", regions[2].Length)
	}
	for _, r := range regions {
		if !utf8.ValidString(r.Content) {
			t.Errorf("window %s split a character", r.Label)
		}
	}
}

func TestChapters_FallbackWhenAllMatchesTooShort(t *testing.T) {
	text := "Chapter 1: Only\nshort body"
	regions := testSegmenter(DefaultConfig()).Chapters(text)
	if len(regions) != 1 || regions[0].Kind != document.KindWindow {
		t.Fatalf("expected one fallback window, got %+v", regions)
	}
	if regions[0].Content != text {
		t.Errorf("window content = %q", regions[0].Content)
	}
}

func TestChapters_Empty(t *testing.T) {
	if regions := testSegmenter(DefaultConfig()).Chapters(""); len(regions) != 0 {
		t.Fatalf("expected no regions for empty text, got %d", len(regions))
	}
}

func TestChapters_PriorityOverNumbered(t *testing.T) {
	s := testSegmenter(DefaultConfig()).WithDetectors(
		fixedDetector{prefix: "Chapter", label: "chapter"},
		fixedDetector{prefix: "3.", label: "numbered"},
	)
	text := "Chapter 3. Start\n" + body(20) + "\n3. Next\n" + body(20)
	regions := s.Chapters(text)
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].Label != "chapter" || regions[1].Label != "numbered" {
		t.Errorf("labels = %q, %q", regions[0].Label, regions[1].Label)
	}
}

func TestWindows(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
	}
	for _, tt := range tests {
		text := strings.Repeat("x", tt.n)
		if got := len(Windows(text, tt.size)); got != tt.want {
			t.Errorf("Windows(%d chars, %d) = %d windows, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestSegment_AcademicFallsBackForPlainText(t *testing.T) {
	text := "Chapter 1: Intro\n" + body(42) + "\nChapter 2: Methods\n" + body(42)
	regions, mode := testSegmenter(DefaultConfig()).Segment(text, document.ModeAcademic)
	if mode != document.ModeGeneral {
		t.Errorf("mode = %q, want general", mode)
	}
	if len(regions) != 2 {
		t.Errorf("expected 2 chapter regions, got %d", len(regions))
	}
}
