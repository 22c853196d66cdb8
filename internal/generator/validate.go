package generator

import (
	"strings"
	"unicode/utf8"
)

// minSectionLength is the minimum content length, in characters, for a
// section to count as usable.
const minSectionLength = 100

// sectionKeywords maps section names to terms at least one of which must
// appear in the content. Sections without an entry skip the keyword check.
var sectionKeywords = map[string][]string{
	"Introduction":            {"purpose", "scope", "overview"},
	"Procedures":              {"step", "procedure", "process"},
	"Compliance Requirements": {"requirement", "regulation", "standard"},
	"Documentation":           {"document", "record", "form"},
}

// markdownMarkers are the structure markers at least one of which must
// appear for the content to count as formatted.
var markdownMarkers = []string{"#", "*", "-", "1."}

// ValidateSection reports whether generated content is usable for the named
// section: long enough, topically on point, and markdown-structured.
func ValidateSection(sectionName, content string) bool {
	if utf8.RuneCountInString(content) < minSectionLength {
		return false
	}

	if keywords, ok := sectionKeywords[sectionName]; ok {
		lower := strings.ToLower(content)
		found := false
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, marker := range markdownMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}
