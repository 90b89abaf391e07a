package report

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docsumm/internal/document"
)

// RenderText renders the human-readable summary file.
func RenderText(rep *Report) string {
	var sb strings.Builder
	rule := strings.Repeat("=", 50)
	thin := strings.Repeat("-", 50)

	sb.WriteString("FULL DOCUMENT SUMMARY\n")
	sb.WriteString(rule + "\n\n")
	fmt.Fprintf(&sb, "File: %s\n", rep.Metadata.File)
	if rep.Metadata.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", rep.Metadata.Title)
	}
	fmt.Fprintf(&sb, "Status: %s\n\n", rep.Status)
	sb.WriteString(displayPtr(rep.DocumentSummary))
	sb.WriteString("\n\n")

	if rep.KeyFindings != nil {
		sb.WriteString("KEY FINDINGS\n")
		sb.WriteString(thin + "\n")
		sb.WriteString(Display(*rep.KeyFindings))
		sb.WriteString("\n\n")
	}

	heading := "CHAPTER SUMMARIES"
	if rep.Metadata.Mode == document.ModeAcademic {
		heading = "SECTION SUMMARIES"
	}
	sb.WriteString(heading + "\n")
	sb.WriteString(thin + "\n")
	for _, r := range rep.Regions {
		fmt.Fprintf(&sb, "\n%s\n", r.Name())
		sb.WriteString(Display(r.Summary))
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("-", 40) + "\n")
	}

	if rep.Suggestions != nil {
		sb.WriteString("\nSUGGESTIONS\n")
		sb.WriteString(thin + "\n")
		sb.WriteString(Display(*rep.Suggestions))
		sb.WriteString("\n")
	}
	return sb.String()
}
