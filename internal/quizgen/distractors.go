package quizgen

import (
	"cmp"
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"
)

var fillerDistractors = []string{"A related concept", "Related topic"}

// PickDistractors returns exactly n capitalized wrong answers for correct.
// Pool entries closest in length to correct are preferred. When the pool
// runs dry, filler answers are synthesized.
func PickDistractors(correct string, n int, pool []string) []string {
	if n <= 0 {
		return nil
	}
	target := utf8.RuneCountInString(correct)

	candidates := make([]string, 0, len(pool))
	for _, p := range pool {
		if p = Sanitize(p); p != "" {
			candidates = append(candidates, p)
		}
	}
	slices.SortStableFunc(candidates, func(a, b string) int {
		return cmp.Compare(lengthGap(a, target), lengthGap(b, target))
	})

	seen := map[string]bool{normalizeKey(correct): true}
	out := make([]string, 0, n)
	add := func(s string) {
		s = Capitalize(s)
		key := normalizeKey(s)
		if len(out) >= n || key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}

	for _, c := range candidates {
		add(c)
	}
	for _, f := range fillerDistractors {
		add(f)
	}
	if c := Sanitize(correct); c != "" {
		add(c + "y")
	}
	for i := 2; len(out) < n; i++ {
		add(fmt.Sprintf("Related topic %d", i))
	}
	return out
}

func lengthGap(s string, target int) int {
	d := utf8.RuneCountInString(s) - target
	if d < 0 {
		return -d
	}
	return d
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// poolExcept returns pool without entries equal to any of skip.
func poolExcept(pool []string, skip ...string) []string {
	drop := make(map[string]bool, len(skip))
	for _, s := range skip {
		drop[normalizeKey(s)] = true
	}
	out := make([]string, 0, len(pool))
	for _, p := range pool {
		if !drop[normalizeKey(p)] {
			out = append(out, p)
		}
	}
	return out
}
