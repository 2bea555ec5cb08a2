package quizgen

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxCandidateTerms caps the ranked term list.
	MaxCandidateTerms = 60

	minTermLen     = 4
	minSentenceLen = 20
)

// headerPattern matches structural section headers at the start of a line,
// including the compound headers produced by ExpandContent.
var headerPattern = regexp.MustCompile(`(?i)^\s*(overview|key concepts|detailed explanation|summary(\s*&\s*next steps)?|applications(\s*&\s*labs)?|worked examples(\s*&\s*practice)?)\s*:`)

var stopWords = map[string]bool{
	// function words
	"which": true, "where": true, "when": true, "what": true, "that": true,
	"this": true, "these": true, "those": true, "with": true, "about": true,
	"have": true, "has": true, "are": true, "the": true, "and": true,
	"for": true, "from": true, "into": true, "its": true, "it's": true,
	"than": true, "then": true, "them": true, "they": true, "their": true,
	"there": true, "were": true, "will": true, "would": true, "should": true,
	"could": true, "been": true, "being": true, "each": true, "also": true,
	"such": true, "some": true, "more": true, "most": true, "other": true,
	"between": true, "through": true, "including": true, "while": true,
	"does": true, "your": true, "very": true, "only": true, "both": true,
	"over": true, "under": true, "after": true, "before": true, "like": true,
	// lesson scaffolding
	"use": true, "used": true, "using": true, "include": true, "includes": true,
	"overview": true, "detailed": true, "summary": true, "examples": true,
	"example": true, "section": true, "related": true, "key": true,
	"concepts": true, "concept": true, "lesson": true, "lessons": true,
	"covers": true, "introduces": true, "explanation": true, "practice": true,
	"students": true, "topic": true, "topics": true, "questions": true,
	"question": true, "important": true, "basics": true, "step": true,
}

// StripHeaders removes section header prefixes from every line and joins
// the result with newlines preserved.
func StripHeaders(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = headerPattern.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}

// ExtractCandidateTerms returns lesson vocabulary ranked by frequency,
// then length, then alphabetically. At most MaxCandidateTerms are returned.
func ExtractCandidateTerms(content string) []string {
	cleaned := StripHeaders(content)

	freq := make(map[string]int)
	for _, raw := range strings.Fields(cleaned) {
		w := strings.ToLower(wordOnly(raw))
		if utf8.RuneCountInString(w) < minTermLen || stopWords[w] {
			continue
		}
		freq[w]++
	}

	terms := make([]string, 0, len(freq))
	for w := range freq {
		terms = append(terms, w)
	}
	slices.SortFunc(terms, func(a, b string) int {
		if c := cmp.Compare(freq[b], freq[a]); c != 0 {
			return c
		}
		if c := cmp.Compare(utf8.RuneCountInString(b), utf8.RuneCountInString(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if len(terms) > MaxCandidateTerms {
		terms = terms[:MaxCandidateTerms]
	}
	return terms
}

// wordOnly keeps letters and inner hyphens.
func wordOnly(token string) string {
	w := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || r == '-' {
			return r
		}
		return -1
	}, token)
	return strings.Trim(w, "-")
}

// SplitSentences returns sanitized sentences longer than 20 characters
// from the header-stripped content. Leading list markers are dropped.
func SplitSentences(content string) []string {
	cleaned := Sanitize(StripHeaders(content))
	var out []string
	start := 0
	runes := []rune(cleaned)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		out = appendSentence(out, string(runes[start:i+1]))
		start = i + 1
	}
	if start < len(runes) {
		out = appendSentence(out, string(runes[start:]))
	}
	return out
}

var sentenceMarker = regexp.MustCompile(`^(?:[-*•·]+|\d+[.)])\s+`)

func appendSentence(out []string, s string) []string {
	s = sentenceMarker.ReplaceAllString(strings.TrimSpace(s), "")
	if len(s) > minSentenceLen {
		out = append(out, s)
	}
	return out
}

// termMatcher finds whole-word occurrences of a term. Word edges are
// Unicode-aware, so terms starting or ending in accented letters match.
type termMatcher struct {
	re *regexp.Regexp
}

// termPattern matches term as a whole word, case-insensitively. Inner
// whitespace in multi-word terms matches any whitespace run.
func termPattern(term string) termMatcher {
	parts := strings.Fields(term)
	if len(parts) == 0 {
		return termMatcher{}
	}
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return termMatcher{re: regexp.MustCompile(`(?i)` + strings.Join(parts, `\s+`))}
}

func (m termMatcher) MatchString(s string) bool {
	return len(m.find(s)) > 0
}

// ReplaceAllLiteralString replaces every whole-word occurrence with repl.
func (m termMatcher) ReplaceAllLiteralString(s, repl string) string {
	locs := m.find(s)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[0]])
		b.WriteString(repl)
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func (m termMatcher) find(s string) [][]int {
	if m.re == nil {
		return nil
	}
	var out [][]int
	for _, loc := range m.re.FindAllStringIndex(s, -1) {
		if wordEdge(s, loc[0], loc[1]) {
			out = append(out, loc)
		}
	}
	return out
}

// wordEdge reports whether s[start:end] is not glued to a word rune on
// either side.
func wordEdge(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
