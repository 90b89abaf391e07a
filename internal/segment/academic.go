package segment

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/docsumm/internal/document"
)

// SectionNames is the vocabulary of known academic sections. Headings are
// mapped to the first entry they contain.
var SectionNames = []string{
	"abstract", "introduction", "literature review", "related work",
	"methodology", "methods", "approach", "proposed method",
	"implementation", "experiments", "experimental setup",
	"results", "findings", "analysis", "discussion",
	"conclusion", "future work", "references",
}

var academicIndicators = []string{
	"abstract", "introduction", "methodology", "results",
	"conclusion", "references", "keywords", "doi",
	"ieee", "springer", "elsevier", "acm", "journal",
}

// academicThreshold is the number of indicator terms that marks a paper.
const academicThreshold = 3

// titleCase builds a fresh Caser per call; Casers are not safe for
// concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// IsAcademic reports whether text contains enough academic indicator terms.
func IsAcademic(text string) bool {
	lower := strings.ToLower(text)
	n := 0
	for _, term := range academicIndicators {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n >= academicThreshold
}

// CanonicalSection maps a heading to its canonical section name, or "".
func CanonicalSection(heading string) string {
	lower := strings.ToLower(strings.TrimSpace(heading))
	if lower == "" {
		return ""
	}
	for _, name := range SectionNames {
		if strings.Contains(lower, name) {
			return titleCase(name)
		}
	}
	return ""
}

type boundary struct {
	name  string
	start int
}

// Academic splits text into canonical academic sections. Only the first
// occurrence of each section name is kept; each section runs to the start of
// the next, the last to the end of the text. When no heading maps to a known
// section, a narrower keyword-based pass is tried.
func (s *Segmenter) Academic(text string) []document.Region {
	if text == "" {
		return nil
	}

	seen := make(map[string]bool)
	var bounds []boundary
	for _, ln := range splitLines(text) {
		h, ok := match(s.academic, ln.text)
		if !ok {
			continue
		}
		name := CanonicalSection(h.Title)
		if name == "" {
			name = CanonicalSection(h.Label)
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		bounds = append(bounds, boundary{name: name, start: ln.start})
	}

	if len(bounds) == 0 {
		s.log.Info("no academic headings matched, trying keyword section extraction")
		regions := keywordSections(text)
		s.log.Info("keyword section extraction finished", "sections", len(regions))
		return regions
	}

	slices.SortStableFunc(bounds, func(a, b boundary) int { return cmp.Compare(a.start, b.start) })

	regions := make([]document.Region, 0, len(bounds))
	for i, b := range bounds {
		end := len(text)
		if i+1 < len(bounds) {
			end = bounds[i+1].start
		}
		content := strings.TrimSpace(text[b.start:end])
		regions = append(regions, document.NewRegion(b.name, b.name, document.KindAcademic, b.start, end, content))
	}
	s.log.Info("academic sections detected", "sections", len(regions))
	return regions
}

// keywordRule locates one section by a start keyword and the earliest
// following terminator.
type keywordRule struct {
	name     string
	start    *regexp.Regexp
	end      *regexp.Regexp
	untilEOF bool
}

var keywordRules = []keywordRule{
	{
		name:  "Abstract",
		start: regexp.MustCompile(`(?i)abstract[:\s]+`),
		end:   regexp.MustCompile(`(?i)introduction|keywords|\n\n[a-z]`),
	},
	{
		name:  "Introduction",
		start: regexp.MustCompile(`(?i)introduction[:\s]+`),
		end:   regexp.MustCompile(`(?i)related work|methodology|methods|\n\n[a-z]`),
	},
	{
		name:  "Methodology",
		start: regexp.MustCompile(`(?i)(?:methodology|methods)[:\s]+`),
		end:   regexp.MustCompile(`(?i)results|experiments|implementation|\n\n[a-z]`),
	},
	{
		name:  "Results",
		start: regexp.MustCompile(`(?i)results[:\s]+`),
		end:   regexp.MustCompile(`(?i)discussion|conclusion|\n\n[a-z]`),
	},
	{
		name:     "Conclusion",
		start:    regexp.MustCompile(`(?i)conclusion[:\s]+`),
		end:      regexp.MustCompile(`(?i)references|acknowledgment`),
		untilEOF: true,
	},
}

// keywordSections is the best-effort secondary pass. Sections overlapping an
// earlier one are dropped.
func keywordSections(text string) []document.Region {
	var regions []document.Region
	for _, rule := range keywordRules {
		loc := rule.start.FindStringIndex(text)
		if loc == nil {
			continue
		}
		end := len(text)
		if t := rule.end.FindStringIndex(text[loc[1]:]); t != nil {
			end = loc[1] + t[0]
		} else if !rule.untilEOF {
			continue
		}
		regions = append(regions, document.NewRegion(rule.name, rule.name, document.KindAcademic, loc[0], end, text[loc[0]:end]))
	}

	slices.SortStableFunc(regions, func(a, b document.Region) int { return cmp.Compare(a.Start, b.Start) })

	out := regions[:0]
	last := 0
	for _, r := range regions {
		if r.Start < last {
			continue
		}
		out = append(out, r)
		last = r.End
	}
	return out
}
