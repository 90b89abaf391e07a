// Package segment splits extracted document text into labeled regions.
package segment

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsumm/internal/document"
)

// Config controls segmentation.
type Config struct {
	LookaheadLines  int // Lines scanned for the next heading after a match.
	MaxRegionLength int // Region length in characters when no next heading is in range.
	MinRegionLength int // Shorter regions are dropped (chapter mode only).
	FallbackWindow  int // Window size in characters for patternless text.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LookaheadLines:  120,
		MaxRegionLength: 25000,
		MinRegionLength: 100,
		FallbackWindow:  20000,
	}
}

// Segmenter converts raw text into an ordered sequence of regions.
type Segmenter struct {
	cfg      Config
	general  []Detector
	academic []Detector
	log      *slog.Logger
}

// New creates a Segmenter with the default detector lists.
func New(cfg Config, log *slog.Logger) *Segmenter {
	def := DefaultConfig()
	if cfg.LookaheadLines <= 0 {
		cfg.LookaheadLines = def.LookaheadLines
	}
	if cfg.MaxRegionLength <= 0 {
		cfg.MaxRegionLength = def.MaxRegionLength
	}
	if cfg.MinRegionLength < 0 {
		cfg.MinRegionLength = def.MinRegionLength
	}
	if cfg.FallbackWindow <= 0 {
		cfg.FallbackWindow = def.FallbackWindow
	}
	if log == nil {
		log = slog.Default()
	}
	return &Segmenter{
		cfg:      cfg,
		general:  GeneralDetectors(),
		academic: AcademicDetectors(),
		log:      log,
	}
}

// WithDetectors replaces the chapter-mode detector list.
func (s *Segmenter) WithDetectors(ds ...Detector) *Segmenter {
	s.general = ds
	return s
}

// Segment splits text into regions using the requested mode and reports the
// mode actually used. Academic mode falls back to chapter mode when the text
// does not look academic or no sections are found.
func (s *Segmenter) Segment(text string, mode document.Mode) ([]document.Region, document.Mode) {
	if mode == document.ModeAcademic {
		if !IsAcademic(text) {
			s.log.Info("document does not appear to be an academic paper, using chapter mode")
			return s.Chapters(text), document.ModeGeneral
		}
		if regions := s.Academic(text); len(regions) > 0 {
			return regions, document.ModeAcademic
		}
		s.log.Info("no academic sections found, using chapter mode")
	}
	return s.Chapters(text), document.ModeGeneral
}

// line is one line of the document with its byte offset.
type line struct {
	text  string
	start int
}

func splitLines(text string) []line {
	var lines []line
	start := 0
	for {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			lines = append(lines, line{text: text[start:], start: start})
			return lines
		}
		lines = append(lines, line{text: text[start : start+i], start: start})
		start += i + 1
	}
}

// Chapters runs the chapter-mode forward sweep. Each matched heading starts a
// region ending at the next heading within the lookahead window, or after
// MaxRegionLength characters. Text with no surviving region is split into
// fixed windows.
func (s *Segmenter) Chapters(text string) []document.Region {
	if text == "" {
		return nil
	}
	lines := splitLines(text)

	var regions []document.Region
	matched := 0
	for cur := 0; cur < len(lines); {
		h, ok := match(s.general, lines[cur].text)
		if !ok {
			cur++
			continue
		}
		matched++
		start := lines[cur].start
		end, resume := s.boundaryEnd(text, lines, cur)

		content := strings.TrimSpace(text[start:end])
		if utf8.RuneCountInString(content) >= s.cfg.MinRegionLength {
			regions = append(regions, document.NewRegion(h.Label, h.Title, h.Kind, start, end, content))
		}
		cur = resume
	}

	if len(regions) == 0 {
		s.log.Info("no chapters detected, using fixed windows",
			"headings", matched, "window", s.cfg.FallbackWindow)
		return Windows(text, s.cfg.FallbackWindow)
	}
	s.log.Info("chapters detected", "headings", matched, "regions", len(regions))
	return regions
}

// boundaryEnd finds where the region starting at lines[cur] ends and the line
// index at which the sweep resumes.
func (s *Segmenter) boundaryEnd(text string, lines []line, cur int) (end, resume int) {
	limit := min(cur+s.cfg.LookaheadLines, len(lines)-1)
	for j := cur + 1; j <= limit; j++ {
		if _, ok := match(s.general, lines[j].text); ok {
			return lines[j].start, j
		}
	}

	end = advance(text, lines[cur].start, s.cfg.MaxRegionLength)
	resume = cur + 1
	for resume < len(lines) && lines[resume].start < end {
		resume++
	}
	return end, resume
}

func match(ds []Detector, text string) (Heading, bool) {
	for _, d := range ds {
		if h, ok := d.Match(text); ok {
			return h, true
		}
	}
	return Heading{}, false
}

// Windows partitions text into consecutive windows of size characters,
// labeled "1".."N". Window content is not trimmed, so the windows
// concatenate back to text.
func Windows(text string, size int) []document.Region {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultConfig().FallbackWindow
	}
	var regions []document.Region
	for start, n := 0, 1; start < len(text); n++ {
		end := advance(text, start, size)
		label := strconv.Itoa(n)
		regions = append(regions, document.NewRegion(label, "Section "+label, document.KindWindow, start, end, text[start:end]))
		start = end
	}
	return regions
}

// advance returns the byte offset n characters after from, capped at len(text).
func advance(text string, from, n int) int {
	i := from
	for ; n > 0 && i < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}
