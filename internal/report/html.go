package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"

	"github.com/dgallion1/docsumm/internal/document"
)

// Summaries are usually Markdown, so the page is assembled as Markdown and
// converted once. Raw HTML in model output is not rendered.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML renders the report as a standalone HTML page.
func RenderHTML(rep *Report) ([]byte, error) {
	var src strings.Builder
	src.WriteString("## Document Summary\n\n")
	src.WriteString(displayPtr(rep.DocumentSummary))
	src.WriteString("\n\n")

	if rep.KeyFindings != nil {
		src.WriteString("## Key Findings\n\n")
		src.WriteString(Display(*rep.KeyFindings))
		src.WriteString("\n\n")
	}

	heading := "Chapters"
	if rep.Metadata.Mode == document.ModeAcademic {
		heading = "Sections"
	}
	fmt.Fprintf(&src, "## %s\n\n", heading)
	for _, r := range rep.Regions {
		fmt.Fprintf(&src, "### %s\n\n", markdownEscape(r.Name()))
		src.WriteString(Display(r.Summary))
		src.WriteString("\n\n")
	}

	if rep.Suggestions != nil {
		src.WriteString("## Suggestions\n\n")
		src.WriteString(Display(*rep.Suggestions))
		src.WriteString("\n")
	}

	var body bytes.Buffer
	if err := md.Convert([]byte(src.String()), &body); err != nil {
		return nil, err
	}

	title := rep.Metadata.Title
	if title == "" {
		title = rep.Metadata.File
	}
	dir := "ltr"
	if rep.Metadata.OutputLanguage == "ar" {
		dir = "rtl"
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html lang=\"%s\" dir=\"%s\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
		html.EscapeString(rep.Metadata.OutputLanguage), dir, html.EscapeString(title))
	fmt.Fprintf(&page, "<h1>%s</h1>\n", html.EscapeString(title))
	fmt.Fprintf(&page, "<p class=\"meta\">%s &middot; %s &middot; %d regions &middot; status %s</p>\n",
		html.EscapeString(rep.Metadata.File), html.EscapeString(string(rep.Metadata.Mode)),
		rep.Metadata.RegionCount, html.EscapeString(rep.Status))
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// markdownEscape keeps heading text from being read as Markdown syntax.
func markdownEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune("\\`*_[]#<>", r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
