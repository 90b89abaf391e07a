package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraph text comes first, one paragraph
// per line, followed by table contents one row per line.
type DOCXParser struct {
	log *slog.Logger
}

func (p *DOCXParser) Parse(_ context.Context, path string) (*Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var text, tables strings.Builder
	paragraphs := 0
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			paragraphs++
			// Headings start a new block so later paragraph splitting sees them.
			if docxHeadingLevel(it) > 0 && text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(docxParagraphText(it))
			text.WriteString("\n")
		case *docx.Table:
			writeTable(&tables, it)
		}
	}
	text.WriteString(tables.String())

	if p.log != nil {
		p.log.Info("docx processed", "paragraphs", paragraphs)
	}
	return &Extraction{Text: text.String(), Method: "docx"}, nil
}

func writeTable(sb *strings.Builder, t *docx.Table) {
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if s := docxParagraphText(para); s != "" {
					parts = append(parts, s)
				}
			}
			sb.WriteString(strings.Join(parts, " "))
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if len(style) == len("heading1") && strings.HasPrefix(style, "heading") {
		if d := style[len(style)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	if style == "title" {
		return 1
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
