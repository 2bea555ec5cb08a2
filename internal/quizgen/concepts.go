package quizgen

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultConceptDescription fills in for entries without a delimiter.
const DefaultConceptDescription = "Key idea from this lesson"

var (
	keyConceptsHeader = regexp.MustCompile(`(?i)^\s*key concepts\s*:\s*(.*)$`)
	listMarker        = regexp.MustCompile(`^\s*(?:[-*•·]+|\d+[.)])\s*`)
	conceptDelimiter  = regexp.MustCompile(`\s+[—–-]\s+|:\s+`)
	placeholderTerm   = regexp.MustCompile(`(?i)core (idea|concept)|key concepts?|related subtopics|important formulas`)
)

// ParseKeyConcepts reads the "Key Concepts:" section of a lesson. Each
// non-blank line until the next blank line or section header is one entry.
// A lesson without the section yields nil.
func ParseKeyConcepts(content string) []KeyConcept {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	start := -1
	var inline string
	for i, line := range lines {
		if m := keyConceptsHeader.FindStringSubmatch(line); m != nil {
			start = i + 1
			inline = strings.TrimSpace(m[1])
			break
		}
	}
	if start < 0 {
		return nil
	}

	var entries []string
	if inline != "" {
		entries = append(entries, inline)
	}
	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" || headerPattern.MatchString(line) {
			break
		}
		entries = append(entries, line)
	}

	concepts := make([]KeyConcept, 0, len(entries))
	for _, e := range entries {
		if kc, ok := parseConceptLine(e); ok {
			concepts = append(concepts, kc)
		}
	}
	return concepts
}

func parseConceptLine(line string) (KeyConcept, bool) {
	line = Sanitize(listMarker.ReplaceAllString(line, ""))
	if line == "" {
		return KeyConcept{}, false
	}

	term, desc := line, ""
	if loc := conceptDelimiter.FindStringIndex(line); loc != nil {
		term, desc = line[:loc[0]], line[loc[1]:]
	}
	term = cleanTerm(term)
	if term == "" {
		return KeyConcept{}, false
	}
	desc = strings.TrimRight(Sanitize(desc), ".")
	if desc == "" {
		desc = DefaultConceptDescription
	}
	return KeyConcept{Term: term, Description: desc}, true
}

// cleanTerm keeps letters, digits, spaces and hyphens. Apostrophes are
// dropped so "Mendel's" stays one word.
func cleanTerm(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' {
			return r
		}
		if r == '\'' || r == '’' {
			return -1
		}
		return ' '
	}, s)
	return strings.Trim(Sanitize(s), "- ")
}

// IsPlaceholder reports whether a concept is generic scaffolding rather
// than lesson content.
func IsPlaceholder(kc KeyConcept) bool {
	return placeholderTerm.MatchString(kc.Term) || placeholderTerm.MatchString(kc.Description)
}

// LowInformation reports whether any concept in the set is scaffolding.
// Such a set is not used for definition questions.
func LowInformation(concepts []KeyConcept) bool {
	for _, kc := range concepts {
		if IsPlaceholder(kc) {
			return true
		}
	}
	return false
}
