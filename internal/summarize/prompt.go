package summarize

import (
	"fmt"
	"strings"
)

// LanguageInstructions are prepended to every prompt.
var LanguageInstructions = map[string]string{
	"en": "Respond in English. Use natural and fluent language.",
	"bn": "বাংলায় উত্তর দিন। সাবলীল ও প্রাকৃতিক ভাষা ব্যবহার করুন।",
	"ar": "أجب بالعربية. استخدم لغة طبيعية وطلقة.",
}

const regionRequirements = `Requirements for the summary:
1. Make it comprehensive and detailed so readers understand the full scope and depth of the content
2. Include all major points, concepts, arguments and conclusions
3. Explain the context and significance of key ideas
4. Keep the logical flow and structure of the original
5. Include specific details, examples and data mentioned in the text
6. Someone reading only the summary should grasp the complete message

This is not a brief summary. It should be elaborate and thorough.`

const combineRequirements = `Requirements:
1. Write a single coherent narrative that flows naturally
2. Eliminate redundancy but keep all important information
3. Keep the elaborate and detailed nature of the part summaries
4. Ensure a logical progression of ideas`

const documentRequirements = `Requirements:
1. Give a thorough overview of the entire document
2. Include all major themes, arguments and conclusions
3. Explain the structure and flow of the document
4. Highlight key insights and important details
5. A reader should understand the complete scope without reading the original`

const synthesisRequirements = `Requirements:
1. Give an elaborate overview of the entire document
2. Show how the parts connect and build upon each other
3. Identify overarching themes and main arguments
4. Include key insights from every part
5. Explain the document's structure and progression`

const academicOverallRequirements = `Provide:
1. Research objective and problem statement
2. Methodology overview
3. Key findings and results
4. Main contributions
5. Conclusions and implications

Make it comprehensive and academically precise.`

const suggestionsRequirements = `Please provide:
1. Key takeaways and main insights
2. Practical applications of the content
3. Related topics the reader might want to explore
4. Who would benefit most from reading this document
5. Questions for deeper understanding

Make your suggestions detailed, actionable and valuable.`

// sectionInstructions are the per-section focus for academic papers.
var sectionInstructions = map[string]string{
	"Abstract":     "Explain the research problem, approach, and key findings.",
	"Introduction": "Describe the background, motivation, and research objectives.",
	"Methodology":  "Explain the research methods, techniques, and experimental setup in detail.",
	"Methods":      "Explain the research methods, techniques, and experimental setup in detail.",
	"Results":      "Describe the findings, data, and outcomes with specific details.",
	"Conclusion":   "Summarize the main conclusions, contributions, and future work.",
	"Discussion":   "Explain the interpretation of results and their implications.",
}

func header(lang string) string {
	if in, ok := LanguageInstructions[lang]; ok {
		return in + "\n\n"
	}
	return LanguageInstructions["en"] + "\n\n"
}

// BuildRegionPrompt asks for an elaborate summary of one region or part of one.
// kind is "chapter" or "section".
func BuildRegionPrompt(lang, kind, title, content string) string {
	var sb strings.Builder
	sb.WriteString(header(lang))
	fmt.Fprintf(&sb, "Please provide an elaborate and detailed summary of the following %s.\n\n", kind)
	fmt.Fprintf(&sb, "%s%s: %s\n\n", strings.ToUpper(kind[:1]), kind[1:], title)
	sb.WriteString("Content:\n")
	sb.WriteString(content)
	sb.WriteString("\n\n")
	sb.WriteString(regionRequirements)
	return sb.String()
}

// BuildAcademicSectionPrompt asks for a summary of one academic paper section.
func BuildAcademicSectionPrompt(lang, section, content string) string {
	instruction, ok := sectionInstructions[section]
	if !ok {
		instruction = "Provide a comprehensive summary of this section."
	}
	var sb strings.Builder
	sb.WriteString(header(lang))
	sb.WriteString("Provide an elaborate and detailed summary of this academic paper section.\n\n")
	fmt.Fprintf(&sb, "Section: %s\n\n", section)
	sb.WriteString("Content:\n")
	sb.WriteString(content)
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString(instruction)
	sb.WriteString("\n\nBe thorough, include important methods, findings and data, explain technical concepts clearly and keep academic precision.")
	return sb.String()
}

// BuildCombinePrompt merges part summaries of one region.
func BuildCombinePrompt(lang, title string, parts []string) string {
	var sb strings.Builder
	sb.WriteString(header(lang))
	fmt.Fprintf(&sb, "The following are summaries of different parts of %q. Combine them into one comprehensive, flowing and elaborate summary.\n\n", title)
	for i, p := range parts {
		fmt.Fprintf(&sb, "Part %d:\n%s\n\n", i+1, p)
	}
	sb.WriteString(combineRequirements)
	return sb.String()
}

// BuildDocumentPrompt summarizes a short document directly from its text.
func BuildDocumentPrompt(lang, title, content string) string {
	var sb strings.Builder
	sb.WriteString(header(lang))
	sb.WriteString("Please provide an elaborate and comprehensive summary of this entire document.\n\n")
	fmt.Fprintf(&sb, "Document Title: %s\n\n", title)
	sb.WriteString("Full Content:\n")
	sb.WriteString(content)
	sb.WriteString("\n\n")
	sb.WriteString(documentRequirements)
	return sb.String()
}

// TitledSummary pairs a region name with its summary text.
type TitledSummary struct {
	Title   string
	Summary string
}

// BuildSynthesisPrompt builds a document summary from region summaries.
func BuildSynthesisPrompt(lang, title string, parts []TitledSummary) string {
	var sb strings.Builder
	sb.WriteString(header(lang))
	sb.WriteString("Based on these chapter summaries, create a comprehensive summary of the entire document.\n\n")
	fmt.Fprintf(&sb, "Document: %s\nTotal Chapters: %d\n\nChapter Summaries:\n", title, len(parts))
	for _, p := range parts {
		fmt.Fprintf(&sb, "Chapter: %s\nSummary: %s\n\n", p.Title, p.Summary)
	}
	sb.WriteString(synthesisRequirements)
	return sb.String()
}

// BuildAcademicOverallPrompt builds a paper summary from section summaries.
func BuildAcademicOverallPrompt(lang string, parts []TitledSummary) string {
	var sb strings.Builder
	sb.WriteString(header(lang))
	sb.WriteString("Based on these section summaries, provide a comprehensive overall summary of this academic paper.\n\nSection Summaries:\n")
	for _, p := range parts {
		fmt.Fprintf(&sb, "%s:\n%s\n\n", p.Title, p.Summary)
	}
	sb.WriteString(academicOverallRequirements)
	return sb.String()
}

// BuildKeyFindingsPrompt lists the main findings from results and conclusion.
func BuildKeyFindingsPrompt(lang, results, conclusion string) string {
	var sb strings.Builder
	sb.WriteString(header(lang))
	sb.WriteString("Extract and list the key findings from this academic paper:\n\n")
	fmt.Fprintf(&sb, "Results:\n%s\n\nConclusion:\n%s\n\n", results, conclusion)
	sb.WriteString("Provide a clear, bullet-pointed list of the main findings and contributions.")
	return sb.String()
}

// BuildSuggestionsPrompt asks for reader suggestions from a document summary.
func BuildSuggestionsPrompt(lang, title, summary string) string {
	var sb strings.Builder
	sb.WriteString(header(lang))
	sb.WriteString("Based on this document summary, provide comprehensive suggestions and insights.\n\n")
	fmt.Fprintf(&sb, "Document: %s\n\nSummary:\n%s\n\n", title, summary)
	sb.WriteString(suggestionsRequirements)
	return sb.String()
}
