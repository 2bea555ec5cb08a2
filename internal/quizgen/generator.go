package quizgen

import (
	"math/rand/v2"
	"unicode/utf8"
)

const (
	MinQuestions = 1
	MaxQuestions = 20

	minAutoQuestions = 3
	maxAutoQuestions = 10
	runesPerQuestion = 600
	minAttempts      = 20
)

// schedules lists the strategy preference per style. Every list ends with
// the title fallback.
var schedules = map[Style][]QuestionType{
	StyleVocab:       {TypeDefinition, TypeCloze, TypeConcept, TypeApplication, TypeFact, TypeOverview},
	StyleConcept:     {TypeConcept, TypeDefinition, TypeCloze, TypeFact, TypeApplication, TypeOverview},
	StyleApplication: {TypeApplication, TypeCloze, TypeConcept, TypeDefinition, TypeFact, TypeOverview},
	StyleMixed:       {TypeFact, TypeDefinition, TypeCloze, TypeConcept, TypeApplication, TypeOverview},
}

// Generator builds quizzes from lesson text without any I/O. It holds no
// mutable state and is safe for concurrent use.
type Generator struct {
	seed   *uint64
	titles []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes every call use a PCG source seeded with seed, so output
// is reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = &seed }
}

// WithTitlePool sets the cross-subject lesson titles used as distractors
// for title questions.
func WithTitlePool(titles []string) Option {
	return func(g *Generator) { g.titles = append([]string(nil), titles...) }
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) rng() *rand.Rand {
	if g.seed != nil {
		return rand.New(rand.NewPCG(*g.seed, *g.seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// ClampCount limits n to [MinQuestions, MaxQuestions].
func ClampCount(n int) int {
	return min(MaxQuestions, max(MinQuestions, n))
}

// DefaultCount derives a question count from lesson length: one question
// per 600 characters, between 3 and 10.
func DefaultCount(lesson Lesson) int {
	n := utf8.RuneCountInString(Sanitize(StripHeaders(lesson.Content))) / runesPerQuestion
	return min(maxAutoQuestions, max(minAutoQuestions, n))
}

// GenerateAuto generates DefaultCount(lesson) questions.
func (g *Generator) GenerateAuto(lesson Lesson, style Style) []QuizQuestion {
	return g.generate(lesson, DefaultCount(lesson), style)
}

// Generate returns up to ClampCount(count) unique questions. Sparse lessons
// yield fewer; a lesson with a title always yields at least one.
func (g *Generator) Generate(lesson Lesson, count int, style Style) []QuizQuestion {
	return g.generate(lesson, ClampCount(count), style)
}

func (g *Generator) generate(lesson Lesson, n int, style Style) []QuizQuestion {
	m := newMaterial(lesson, g.titles)
	if m.lesson.Title == "" && utf8.RuneCountInString(m.cleaned) < minSentenceLen {
		return nil
	}

	schedule, ok := schedules[style]
	if !ok {
		schedule = schedules[StyleMixed]
	}
	// Mixed rotates through the strategies. The other styles drain their
	// preferred strategy before falling back.
	rotate := style != StyleVocab && style != StyleConcept && style != StyleApplication

	syn := newSynthesizer(m, g.rng())
	exhausted := make(map[QuestionType]bool, len(schedule))
	seen := make(map[string]bool, n)
	out := make([]QuizQuestion, 0, n)

	budget := max(minAttempts, n*5)
	cursor := 0
	for attempt := 0; attempt < budget && len(out) < n; attempt++ {
		kind, ok := nextKind(schedule, exhausted, cursor)
		if !ok {
			break
		}
		if rotate {
			cursor = (indexOf(schedule, kind) + 1) % len(schedule)
		}

		q, ok := syn.run(kind)
		if !ok {
			exhausted[kind] = true
			continue
		}
		key := normalizeKey(q.Question)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}

// nextKind returns the first non-exhausted strategy at or after from. The
// title fallback is only used once the others are exhausted.
func nextKind(schedule []QuestionType, exhausted map[QuestionType]bool, from int) (QuestionType, bool) {
	for i := range schedule {
		k := schedule[(from+i)%len(schedule)]
		if k == TypeOverview || exhausted[k] {
			continue
		}
		return k, true
	}
	if !exhausted[TypeOverview] {
		return TypeOverview, true
	}
	return "", false
}

func indexOf(schedule []QuestionType, kind QuestionType) int {
	for i, k := range schedule {
		if k == kind {
			return i
		}
	}
	return 0
}

var defaultGenerator = New()

// GenerateFromLesson generates up to ClampCount(count) questions with an
// unseeded default generator.
func GenerateFromLesson(lesson Lesson, count int, style Style) []QuizQuestion {
	return defaultGenerator.Generate(lesson, count, style)
}

// GenerateFromLessonAuto picks the count from the lesson length.
func GenerateFromLessonAuto(lesson Lesson, style Style) []QuizQuestion {
	return defaultGenerator.GenerateAuto(lesson, style)
}
