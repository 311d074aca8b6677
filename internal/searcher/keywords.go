package searcher

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// stopWords are discarded during keyword extraction. The list covers the
// common English function words that carry no search signal.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "has": {}, "have": {}, "had": {},
	"this": {}, "that": {}, "with": {}, "from": {}, "they": {},
	"will": {}, "would": {}, "there": {}, "their": {}, "what": {},
	"about": {}, "which": {}, "when": {}, "where": {}, "how": {},
	"into": {}, "than": {}, "then": {}, "them": {}, "these": {},
	"some": {}, "such": {}, "only": {}, "over": {}, "does": {},
	"been": {}, "were": {}, "your": {},
}

// Keywords tokenizes a query for keyword scoring: lower-cased, split on
// non-alphanumeric runs, stop words removed, tokens of length <= 2
// discarded, duplicates dropped while preserving first-seen order.
func Keywords(query string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

// matchPattern compiles a case-insensitive whole-word pattern matching
// the verbatim phrase or any of the keywords. Alternatives are sorted
// longest first so the phrase wins over its constituent words, and every
// term is regex-escaped so metacharacters in the query stay literal.
func matchPattern(phrase string, keywords []string) *regexp.Regexp {
	terms := make([]string, 0, len(keywords)+1)
	if p := strings.TrimSpace(phrase); p != "" {
		terms = append(terms, p)
	}
	terms = append(terms, keywords...)
	if len(terms) == 0 {
		return nil
	}

	sort.SliceStable(terms, func(i, j int) bool {
		return len(terms[i]) > len(terms[j])
	})

	escaped := make([]string, len(terms))
	for i, t := range terms {
		escaped[i] = regexp.QuoteMeta(t)
	}

	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(escaped, "|") + `)\b`)
	if err != nil {
		// QuoteMeta keeps every term literal, so this only trips on
		// pathological input; treat it as "nothing matches".
		return nil
	}
	return re
}

// countOccurrences scores a chunk by the number of whole-word keyword
// hits it contains.
func countOccurrences(text string, re *regexp.Regexp) int {
	if re == nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}
