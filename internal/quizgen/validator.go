package quizgen

import (
	"fmt"
	"unicode/utf8"
)

// Validator checks a question for correctness.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in error messages.
	Name() string

	// Validate returns nil if the question passes.
	Validate(q *QuizQuestion) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// DefaultValidators returns the chain run by NewQuizQuestion.
func DefaultValidators() []Validator {
	return []Validator{
		&StructuralValidator{},
		&ChoiceValidator{},
	}
}

const (
	maxQuestionRunes    = 1000
	maxExplanationRunes = 2000
)

// StructuralValidator checks that required text fields are present and
// within length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *QuizQuestion) *ValidationError {
	if q.Question == "" {
		return &ValidationError{Validator: v.Name(), Message: "question is empty"}
	}
	if utf8.RuneCountInString(q.Question) > maxQuestionRunes {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("question exceeds %d characters", maxQuestionRunes)}
	}
	if utf8.RuneCountInString(q.Explanation) > maxExplanationRunes {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("explanation exceeds %d characters", maxExplanationRunes)}
	}
	return nil
}

// ChoiceValidator enforces four distinct non-empty choices and an
// in-range answer index.
type ChoiceValidator struct{}

func (v *ChoiceValidator) Name() string { return "choices" }

func (v *ChoiceValidator) Validate(q *QuizQuestion) *ValidationError {
	if len(q.Choices) != ChoiceCount {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d choices, got %d", ChoiceCount, len(q.Choices)),
		}
	}
	seen := make(map[string]bool, ChoiceCount)
	for i, c := range q.Choices {
		if c == "" {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("choice %d is empty", i)}
		}
		key := normalizeKey(c)
		if seen[key] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("duplicate choice %q", c)}
		}
		seen[key] = true
	}
	if q.AnswerIndex < 0 || q.AnswerIndex >= ChoiceCount {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("answer index %d out of range", q.AnswerIndex),
		}
	}
	return nil
}
