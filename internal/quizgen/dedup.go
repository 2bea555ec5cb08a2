package quizgen

// Dedupe drops questions whose text repeats an earlier one under
// case-insensitive, whitespace-normalized comparison. A positive limit caps
// the result.
func Dedupe(questions []QuizQuestion, limit int) []QuizQuestion {
	seen := make(map[string]bool, len(questions))
	var out []QuizQuestion
	for _, q := range questions {
		if limit > 0 && len(out) == limit {
			break
		}
		key := normalizeKey(q.Question)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}

// Known reports whether t is one of the synthesis strategies.
func (t QuestionType) Known() bool {
	switch t {
	case TypeCloze, TypeConcept, TypeFact, TypeApplication, TypeDefinition, TypeOverview:
		return true
	}
	return false
}
