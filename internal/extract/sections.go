// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "strings"

// sectionSpecs lists the sections worth keeping for summarization, in the
// order they should appear in the trimmed output.
var sectionSpecs = []struct {
	label    string
	keywords []string
}{
	{"ABSTRACT", []string{"abstract", "summary"}},
	{"INTRODUCTION", []string{"introduction", "background"}},
	{"METHODOLOGY", []string{"method", "approach", "methodology"}},
	{"RESULTS", []string{"results", "findings", "experiments"}},
	{"CONCLUSION", []string{"conclusion", "discussion", "future work"}},
}

// boundaryKeywords end a section when they appear in a heading-like line.
var boundaryKeywords = []string{"introduction", "method", "results", "conclusion", "references", "bibliography"}

// RelevantSections trims raw PDF text to the sections that matter for
// summarization (abstract, introduction, methodology, results,
// conclusion), capped at maxLen. When no recognizable sections are found
// it falls back to the leading maxLen characters.
func RelevantSections(text string, maxLen int) string {
	var b strings.Builder
	for _, spec := range sectionSpecs {
		if b.Len() >= maxLen {
			break
		}
		content := extractSection(text, spec.keywords)
		if content == "" {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(spec.label)
		b.WriteString(":\n")
		b.WriteString(content)
		b.WriteString("\n")
	}

	combined := b.String()
	if strings.TrimSpace(combined) == "" {
		combined = text
	}
	if len(combined) > maxLen {
		combined = combined[:maxLen]
	}
	return combined
}

// extractSection returns the body between a heading-like line containing
// one of keywords and the next section boundary.
func extractSection(text string, keywords []string) string {
	lines := strings.Split(text, "\n")
	inSection := false
	var body []string

	for _, raw := range lines {
		line := strings.ToLower(strings.TrimSpace(raw))

		if !inSection {
			if isHeadingLine(line, keywords) {
				inSection = true
			}
			continue
		}
		if isHeadingLine(line, boundaryKeywords) {
			break
		}
		body = append(body, raw)
	}

	return strings.TrimSpace(strings.Join(body, "\n"))
}

// isHeadingLine reports whether a short line mentions one of the keywords.
// The length cap filters out body sentences that merely use the word.
func isHeadingLine(line string, keywords []string) bool {
	if len(line) >= 100 {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
