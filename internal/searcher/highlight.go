package searcher

import "strings"

// Highlight markers wrapped around matched terms.
const (
	HighlightStart = "<mark>"
	HighlightEnd   = "</mark>"
)

// fragmentContext is the number of characters kept on each side of a
// match when building highlight fragments.
const fragmentContext = 40

// maxFragments bounds the highlight fragments attached to one result.
const maxFragments = 3

// Highlight wraps every case-insensitive whole-word occurrence of the
// query phrase or any extracted keyword in marker tags. A single regex
// pass produces non-overlapping spans, so nothing is ever double-wrapped.
func Highlight(text, query string) string {
	re := matchPattern(query, Keywords(query))
	if re == nil {
		return text
	}

	spans := re.FindAllStringIndex(text, -1)
	if len(spans) == 0 {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, span := range spans {
		sb.WriteString(text[last:span[0]])
		sb.WriteString(HighlightStart)
		sb.WriteString(text[span[0]:span[1]])
		sb.WriteString(HighlightEnd)
		last = span[1]
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// buildFragments returns up to maxFragments short marked-up excerpts
// around keyword hits, for display next to a search result.
func buildFragments(text, query string) []string {
	re := matchPattern(query, Keywords(query))
	if re == nil {
		return nil
	}

	spans := re.FindAllStringIndex(text, -1)
	if len(spans) == 0 {
		return nil
	}
	if len(spans) > maxFragments {
		spans = spans[:maxFragments]
	}

	fragments := make([]string, 0, len(spans))
	for _, span := range spans {
		start := span[0] - fragmentContext
		if start < 0 {
			start = 0
		}
		end := span[1] + fragmentContext
		if end > len(text) {
			end = len(text)
		}

		var sb strings.Builder
		sb.WriteString(strings.TrimSpace(text[start:span[0]]))
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(HighlightStart)
		sb.WriteString(text[span[0]:span[1]])
		sb.WriteString(HighlightEnd)
		if tail := strings.TrimSpace(text[span[1]:end]); tail != "" {
			sb.WriteString(" ")
			sb.WriteString(tail)
		}
		fragments = append(fragments, sb.String())
	}
	return fragments
}
