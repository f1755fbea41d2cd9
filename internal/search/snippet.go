package search

import "strings"

// snippetSentences caps how many matching sentences a snippet contains.
const snippetSentences = 3

// extractSnippet splits the document on sentence-terminating punctuation,
// scans sentences in document order, and joins the first three whose
// lowercase form contains any query term as a substring. Abbreviations and
// decimal points are not special-cased; the split is a plain punctuation
// split.
func extractSnippet(content string, terms []string) string {
	sentences := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	matched := make([]string, 0, snippetSentences)
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				matched = append(matched, strings.TrimSpace(sentence))
				break
			}
		}
		if len(matched) == snippetSentences {
			break
		}
	}
	if len(matched) == 0 {
		return ""
	}
	return strings.Join(matched, ". ") + "."
}
