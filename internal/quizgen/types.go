package quizgen

import (
	"errors"
	"fmt"
	"strings"
)

// Lesson is a titled block of lesson prose. Content may carry section
// headers such as "Overview:" or "Key Concepts:".
type Lesson struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// KeyConcept is a term/description pair parsed from a lesson's
// "Key Concepts" section.
type KeyConcept struct {
	Term        string
	Description string
}

// QuestionType records which synthesis strategy produced a question.
type QuestionType string

const (
	TypeCloze       QuestionType = "cloze"
	TypeConcept     QuestionType = "concept"
	TypeFact        QuestionType = "fact"
	TypeApplication QuestionType = "application"
	TypeDefinition  QuestionType = "definition"
	TypeOverview    QuestionType = "overview"
)

// Style biases which strategy dominates a generated quiz.
type Style string

const (
	StyleMixed       Style = "mixed"
	StyleVocab       Style = "vocab"
	StyleConcept     Style = "concept"
	StyleApplication Style = "application"
)

// ParseStyle maps free-form input to a Style. Unknown values become mixed.
func ParseStyle(s string) Style {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleVocab, "vocabulary":
		return StyleVocab
	case StyleConcept:
		return StyleConcept
	case StyleApplication:
		return StyleApplication
	default:
		return StyleMixed
	}
}

// ChoiceCount is the number of choices on every question.
const ChoiceCount = 4

// QuizQuestion is a single multiple-choice question. Construct it with
// NewQuizQuestion so the choice invariants hold.
type QuizQuestion struct {
	Question       string       `json:"question"`
	Choices        []string     `json:"choices"`
	AnswerIndex    int          `json:"answerIndex"`
	Explanation    string       `json:"explanation"`
	Type           QuestionType `json:"type,omitempty"`
	SourceSentence string       `json:"sourceSentence,omitempty"`
}

// Answer returns the text of the correct choice.
func (q QuizQuestion) Answer() string {
	if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Choices) {
		return ""
	}
	return q.Choices[q.AnswerIndex]
}

// ErrInvalidQuestion is wrapped by every constructor failure.
var ErrInvalidQuestion = errors.New("invalid quiz question")

// NewQuizQuestion sanitizes every user-facing string and checks the shape:
// exactly four non-empty, case-insensitively distinct choices and an
// answer index pointing at one of them.
func NewQuizQuestion(question string, choices []string, answerIndex int, explanation string) (QuizQuestion, error) {
	q := QuizQuestion{
		Question:    Sanitize(question),
		Choices:     make([]string, len(choices)),
		AnswerIndex: answerIndex,
		Explanation: Sanitize(explanation),
	}
	for i, c := range choices {
		q.Choices[i] = Sanitize(c)
	}
	for _, v := range DefaultValidators() {
		if err := v.Validate(&q); err != nil {
			return QuizQuestion{}, fmt.Errorf("%w: %w", ErrInvalidQuestion, err)
		}
	}
	return q, nil
}

// normalizeKey is the comparison key for question and choice uniqueness.
func normalizeKey(s string) string {
	return strings.ToLower(Sanitize(s))
}
