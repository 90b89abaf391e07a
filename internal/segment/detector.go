package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docsumm/internal/document"
)

// Heading is a recognized heading line.
type Heading struct {
	Label string
	Title string
	Kind  string
}

// Detector recognizes a heading line and extracts its label and title.
type Detector interface {
	Match(line string) (Heading, bool)
}

// RegexDetector matches a trimmed line against a pattern. The label and
// title come from the numbered capture groups; a zero group index yields an
// empty value.
type RegexDetector struct {
	Name       string
	Pattern    *regexp.Regexp
	Kind       string
	LabelGroup int
	TitleGroup int
	MaxLen     int // Reject lines longer than this many bytes (0 = no limit).
	Normalize  func(label string) string
	ValidLabel func(label string) bool // Optional; rejects the match when false.
}

// Match implements Detector.
func (d *RegexDetector) Match(line string) (Heading, bool) {
	line = strings.TrimSpace(line)
	if line == "" || (d.MaxLen > 0 && len(line) > d.MaxLen) {
		return Heading{}, false
	}
	m := d.Pattern.FindStringSubmatch(line)
	if m == nil {
		return Heading{}, false
	}
	h := Heading{Kind: d.Kind}
	if d.LabelGroup > 0 && d.LabelGroup < len(m) {
		h.Label = strings.TrimSpace(m[d.LabelGroup])
	}
	if d.TitleGroup > 0 && d.TitleGroup < len(m) {
		h.Title = cleanTitle(m[d.TitleGroup])
	}
	if d.ValidLabel != nil && !d.ValidLabel(h.Label) {
		return Heading{}, false
	}
	if d.Normalize != nil {
		h.Label = d.Normalize(h.Label)
	}
	return h, true
}

// cleanTitle strips separators and trailing punctuation left around a title.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ":-–—. ")
	return strings.TrimRight(s, ":-–—. ")
}

// Separators allowed between a heading label and its title.
const sep = `[\s:.\-–—]*`

// Bengali "অধ্যায়" is written with either precomposed YYA or YA + NUKTA;
// NFC normalization produces the latter.
const bengaliChapter = `(?:অধ্যা(?:\x{09AF}\x{09BC}|\x{09DF})|অ\.)`

// GeneralDetectors returns the boundary detectors for chapter mode in
// priority order.
func GeneralDetectors() []Detector {
	return []Detector{
		&RegexDetector{
			Name:       "chapter",
			Pattern:    regexp.MustCompile(`(?i)^(?:chapter|ch\.)\s*(\d+[a-z]?|[ivxlc]+)\b` + sep + `(.*)$`),
			Kind:       document.KindChapter,
			LabelGroup: 1,
			TitleGroup: 2,
			MaxLen:     200,
			Normalize:  upperRoman,
			ValidLabel: numberLabel,
		},
		&RegexDetector{
			Name:       "part",
			Pattern:    regexp.MustCompile(`(?i)^(?:part|অংশ|الجزء)\s*(\d+|[ivxlc]+|[০-৯]+|[٠-٩]+)(?:\b|\s|$)` + sep + `(.*)$`),
			Kind:       document.KindPart,
			LabelGroup: 1,
			TitleGroup: 2,
			MaxLen:     200,
			Normalize:  upperRoman,
			ValidLabel: numberLabel,
		},
		&RegexDetector{
			Name:       "numbered",
			Pattern:    regexp.MustCompile(`^(\d+)\.\s+([A-Z].{5,100})$`),
			Kind:       document.KindChapter,
			LabelGroup: 1,
			TitleGroup: 2,
		},
		&RegexDetector{
			Name:       "roman",
			Pattern:    regexp.MustCompile(`^([IVX]+)\.\s+([A-Z].{2,100})$`),
			Kind:       document.KindChapter,
			LabelGroup: 1,
			TitleGroup: 2,
		},
		&RegexDetector{
			Name:       "section",
			Pattern:    regexp.MustCompile(`^(?:Section|SECTION)\s+(\d+(?:\.\d+)*)` + sep + `(.*)$`),
			Kind:       document.KindSection,
			LabelGroup: 1,
			TitleGroup: 2,
			MaxLen:     200,
		},
		&RegexDetector{
			Name:       "bengali",
			Pattern:    regexp.MustCompile(`^` + bengaliChapter + `\s*([\d০-৯]+)` + sep + `(.*)$`),
			Kind:       document.KindChapter,
			LabelGroup: 1,
			TitleGroup: 2,
			MaxLen:     300,
		},
		&RegexDetector{
			Name:       "arabic",
			Pattern:    regexp.MustCompile(`^(?:الفصل|الباب)\s*([\d٠-٩]+)` + sep + `(.*)$`),
			Kind:       document.KindChapter,
			LabelGroup: 1,
			TitleGroup: 2,
			MaxLen:     300,
		},
		&RegexDetector{
			Name:       "academic-caps",
			Pattern:    regexp.MustCompile(`^(ABSTRACT|INTRODUCTION|RELATED WORK|LITERATURE REVIEW|METHODOLOGY|METHODS|RESULTS|DISCUSSION|CONCLUSIONS?|REFERENCES)$`),
			Kind:       document.KindAcademic,
			LabelGroup: 1,
			TitleGroup: 1,
			Normalize:  titleCase,
		},
	}
}

// AcademicDetectors returns the heading detectors used in academic mode,
// followed by the general detectors.
func AcademicDetectors() []Detector {
	ds := []Detector{
		// I. INTRODUCTION, 2. RELATED WORK
		&RegexDetector{
			Name:       "outline-caps",
			Pattern:    regexp.MustCompile(`^(?:[IVX]+|\d+)\.\s*([A-Z][A-Z\s]+)$`),
			Kind:       document.KindAcademic,
			TitleGroup: 1,
		},
		// 1.1 Introduction, 3 Methods
		&RegexDetector{
			Name:       "outline-numbered",
			Pattern:    regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+([A-Z][A-Za-z\s]+)$`),
			Kind:       document.KindAcademic,
			LabelGroup: 1,
			TitleGroup: 2,
		},
		&RegexDetector{
			Name:       "caps",
			Pattern:    regexp.MustCompile(`^([A-Z][A-Z\s]{2,})$`),
			Kind:       document.KindAcademic,
			TitleGroup: 1,
			MaxLen:     60,
		},
		&RegexDetector{
			Name:       "known",
			Pattern:    regexp.MustCompile(`(?i)^(` + strings.Join(SectionNames, "|") + `)\s*:?$`),
			Kind:       document.KindAcademic,
			TitleGroup: 1,
		},
	}
	return append(ds, GeneralDetectors()...)
}

var romanNumeral = regexp.MustCompile(`(?i)^C{0,3}(?:XC|XL|L?X{0,3})(?:IX|IV|V?I{0,3})$`)

// numberLabel accepts labels starting with a digit in any script, or a
// well-formed roman numeral up to CCCXCIX. Words like "Civil" or "ill" are
// rejected.
func numberLabel(label string) bool {
	if label == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(label)
	if unicode.IsDigit(r) {
		return true
	}
	return romanNumeral.MatchString(label)
}

func upperRoman(label string) string {
	for _, r := range label {
		if !strings.ContainsRune("ivxlcIVXLC", r) {
			return label
		}
	}
	return strings.ToUpper(label)
}
