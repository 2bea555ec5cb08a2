package quizgen

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	blankMarker     = "_____"
	maxSnippetRunes = 140
)

// knowledgeTemplate is a hand-written factual question triggered when its
// key appears in the lesson.
type knowledgeTemplate struct {
	key         string
	question    string
	answer      string
	distractors []string
}

var knowledgeTemplates = []knowledgeTemplate{
	{"nucleus", "Which organelle contains the cell's genetic material (DNA)?", "Nucleus", []string{"Mitochondria", "Ribosome", "Chloroplast"}},
	{"mitochondria", "Which organelle is the primary site of ATP production?", "Mitochondria", []string{"Nucleus", "Chloroplast", "Golgi apparatus"}},
	{"chloroplasts", "Which organelle is responsible for photosynthesis in plant cells?", "Chloroplasts", []string{"Mitochondria", "Ribosome", "Lysosome"}},
	{"diffusion", "Which process moves molecules from an area of higher concentration to lower concentration without requiring energy?", "Diffusion", []string{"Active transport", "Endocytosis", "Osmosis"}},
	{"osmosis", "Which process specifically refers to the movement of water across a semipermeable membrane?", "Osmosis", []string{"Diffusion", "Active transport", "Facilitated diffusion"}},
	{"active transport", "Which transport mechanism requires cellular energy (ATP) to move substances against their concentration gradient?", "Active transport", []string{"Diffusion", "Osmosis", "Facilitated diffusion"}},
	{"cytoskeleton", "Which cellular structure provides internal support and helps enable movement within the cell?", "Cytoskeleton", []string{"Cell membrane", "Nucleus", "Ribosome"}},
	{"cells", "What is the basic unit of life?", "Cells", []string{"Organelles", "Tissues", "Molecules"}},
}

// roleFillers pad concept/role questions when the lesson has too few
// statements to draw wrong answers from.
var roleFillers = []string{
	"It is mentioned only as historical background",
	"It is an unrelated term from a different subject",
	"It names the unit used to measure the results",
}

// material is everything derived from one lesson, computed once per call.
type material struct {
	lesson    Lesson
	cleaned   string
	terms     []string
	concepts  []KeyConcept
	sentences []string
	titles    []string
}

func newMaterial(lesson Lesson, titles []string) *material {
	m := &material{
		lesson:  Lesson{Title: Sanitize(lesson.Title), Content: lesson.Content},
		cleaned: Sanitize(StripHeaders(lesson.Content)),
		terms:   ExtractCandidateTerms(lesson.Content),
	}
	for _, sent := range SplitSentences(lesson.Content) {
		if !placeholderTerm.MatchString(sent) {
			m.sentences = append(m.sentences, sent)
		}
	}
	if kcs := ParseKeyConcepts(lesson.Content); !LowInformation(kcs) {
		m.concepts = kcs
	}
	m.titles = poolExcept(titles, m.lesson.Title)
	return m
}

// sentencesWith returns the sentences that mention term as a whole word.
func (m *material) sentencesWith(term string) []string {
	re := termPattern(term)
	var out []string
	for _, s := range m.sentences {
		if re.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}

// termPool returns the key-concept terms followed by ranked terms, the
// pool for term distractors.
func (m *material) termPool() []string {
	pool := make([]string, 0, len(m.concepts)+len(m.terms))
	for _, kc := range m.concepts {
		pool = append(pool, kc.Term)
	}
	return append(pool, m.terms...)
}

// synthesizer walks the lesson material once, handing out one question per
// call for each strategy until that strategy runs out of sources.
type synthesizer struct {
	m   *material
	rng *rand.Rand

	used map[string]bool

	conceptOrder []int
	defConcept   int
	defTerm      int
	clozeTerm    int
	roleConcept  int
	roleTerm     int
	appTerm      int
	factIdx      int
	overviewIdx  int
}

func newSynthesizer(m *material, rng *rand.Rand) *synthesizer {
	return &synthesizer{
		m:            m,
		rng:          rng,
		used:         make(map[string]bool),
		conceptOrder: rng.Perm(len(m.concepts)),
	}
}

// run invokes the strategy for kind. ok is false once it is exhausted.
func (s *synthesizer) run(kind QuestionType) (QuizQuestion, bool) {
	switch kind {
	case TypeDefinition:
		return s.definition()
	case TypeCloze:
		return s.cloze()
	case TypeConcept:
		return s.role()
	case TypeApplication:
		return s.application()
	case TypeFact:
		return s.fact()
	case TypeOverview:
		return s.overview()
	}
	return QuizQuestion{}, false
}

// taken reports whether term already answered an earlier question.
func (s *synthesizer) taken(term string) bool {
	return s.used[normalizeKey(term)]
}

// claim marks answer as used. It returns false if it already was.
func (s *synthesizer) claim(answer string) bool {
	key := normalizeKey(answer)
	if s.used[key] {
		return false
	}
	s.used[key] = true
	return true
}

func (s *synthesizer) definition() (QuizQuestion, bool) {
	for s.defConcept < len(s.conceptOrder) {
		kc := s.m.concepts[s.conceptOrder[s.defConcept]]
		s.defConcept++
		if kc.Description == DefaultConceptDescription || !s.claim(kc.Term) {
			continue
		}
		correct := Capitalize(kc.Term)
		pool := poolExcept(s.m.termPool(), kc.Term)
		q, ok := s.build(TypeDefinition,
			`Which term is best defined by: "`+kc.Description+`"?`,
			correct,
			PickDistractors(correct, ChoiceCount-1, pool),
			`"`+correct+`" is defined as: `+kc.Description+".",
			"")
		if ok {
			return q, true
		}
	}

	for s.defTerm < len(s.m.terms) {
		term := s.m.terms[s.defTerm]
		s.defTerm++
		sents := s.m.sentencesWith(term)
		if len(sents) == 0 || s.taken(term) {
			continue
		}
		sentence := sents[s.rng.IntN(len(sents))]
		correct := Capitalize(term)
		s.claim(term)
		q, ok := s.build(TypeDefinition,
			`Which term is best defined by: "`+snippet(mask(sentence, term, "this term"))+`"?`,
			correct,
			PickDistractors(correct, ChoiceCount-1, s.m.termPool()),
			`"`+correct+`" fits the description. Context: `+sentence,
			sentence)
		if ok {
			return q, true
		}
	}
	return QuizQuestion{}, false
}

func (s *synthesizer) cloze() (QuizQuestion, bool) {
	for s.clozeTerm < len(s.m.terms) {
		term := s.m.terms[s.clozeTerm]
		s.clozeTerm++
		sents := s.m.sentencesWith(term)
		if len(sents) == 0 || s.taken(term) {
			continue
		}
		sentence := sents[s.rng.IntN(len(sents))]
		correct := Capitalize(term)
		s.claim(term)
		q, ok := s.build(TypeCloze,
			"Fill in the blank: "+mask(sentence, term, blankMarker),
			correct,
			PickDistractors(correct, ChoiceCount-1, s.m.termPool()),
			`The correct answer is "`+correct+`". Context: `+sentence,
			sentence)
		if ok {
			return q, true
		}
	}
	return QuizQuestion{}, false
}

// role builds "what role does X play" questions. The correct statement is
// the term's own description or source sentence. Wrong statements are other
// concepts' descriptions or sentences that do not mention the term.
func (s *synthesizer) role() (QuizQuestion, bool) {
	for s.roleConcept < len(s.conceptOrder) {
		kc := s.m.concepts[s.conceptOrder[s.roleConcept]]
		s.roleConcept++
		if kc.Description == DefaultConceptDescription || !s.claim(kc.Term) {
			continue
		}
		var others []string
		for _, o := range s.m.concepts {
			if o.Term != kc.Term && o.Description != DefaultConceptDescription {
				others = append(others, o.Description)
			}
		}
		others = append(others, s.statementsWithout(kc.Term)...)
		if q, ok := s.roleQuestion(kc.Term, kc.Description, others, ""); ok {
			return q, true
		}
	}

	for s.roleTerm < len(s.m.terms) {
		term := s.m.terms[s.roleTerm]
		s.roleTerm++
		sents := s.m.sentencesWith(term)
		if len(sents) == 0 || s.taken(term) {
			continue
		}
		s.claim(term)
		sentence := sents[s.rng.IntN(len(sents))]
		statement := snippet(mask(sentence, term, "it"))
		if q, ok := s.roleQuestion(term, statement, s.statementsWithout(term), sentence); ok {
			return q, true
		}
	}
	return QuizQuestion{}, false
}

func (s *synthesizer) roleQuestion(term, statement string, others []string, source string) (QuizQuestion, bool) {
	correct := Capitalize(strings.TrimRight(statement, "."))
	wrong := PickDistractors(correct, ChoiceCount-1, append(others, roleFillers...))
	return s.build(TypeConcept,
		`Which of the following best explains the role of "`+Capitalize(term)+`" in this lesson?`,
		correct,
		wrong,
		`"`+Capitalize(term)+`": `+correct+".",
		source)
}

// statementsWithout returns shortened sentences that do not mention term.
func (s *synthesizer) statementsWithout(term string) []string {
	re := termPattern(term)
	var out []string
	for _, sent := range s.m.sentences {
		if !re.MatchString(sent) {
			out = append(out, strings.TrimRight(snippet(sent), "."))
		}
	}
	return out
}

func (s *synthesizer) application() (QuizQuestion, bool) {
	const lead = "It would likely lead to "
	for s.appTerm < len(s.m.terms) {
		term := s.m.terms[s.appTerm]
		s.appTerm++
		sents := s.m.sentencesWith(term)
		if len(sents) == 0 || s.taken(term) {
			continue
		}
		s.claim(term)
		sentence := sents[s.rng.IntN(len(sents))]
		correct := Capitalize(term)
		wrong := PickDistractors(correct, ChoiceCount-1, s.m.termPool())
		for i, w := range wrong {
			wrong[i] = lead + w
		}
		q, ok := s.build(TypeApplication,
			`Given the scenario: "`+snippet(mask(sentence, term, blankMarker))+`...", which outcome is most likely?`,
			lead+correct,
			wrong,
			`The scenario describes `+correct+`. Context: `+sentence,
			sentence)
		if ok {
			return q, true
		}
	}
	return QuizQuestion{}, false
}

func (s *synthesizer) fact() (QuizQuestion, bool) {
	for s.factIdx < len(knowledgeTemplates) {
		tpl := knowledgeTemplates[s.factIdx]
		s.factIdx++
		if !termPattern(tpl.key).MatchString(s.m.cleaned) || !s.claim(tpl.answer) {
			continue
		}
		q, ok := s.build(TypeFact, tpl.question, tpl.answer, tpl.distractors, "Correct: "+tpl.answer, "")
		if ok {
			return q, true
		}
	}
	return QuizQuestion{}, false
}

// overview produces at most two questions about the lesson title itself,
// used when the content is too thin for anything else.
func (s *synthesizer) overview() (QuizQuestion, bool) {
	title := s.m.lesson.Title
	if title == "" {
		return QuizQuestion{}, false
	}
	short := snippet(title)
	for s.overviewIdx < 2 {
		s.overviewIdx++
		wrong := PickDistractors(title, ChoiceCount-1, s.m.titles)
		switch s.overviewIdx {
		case 1:
			if q, ok := s.build(TypeOverview,
				`What is the main focus of the lesson titled "`+short+`"?`,
				title, wrong,
				`This lesson is about "`+short+`".`, ""); ok {
				return q, true
			}
		case 2:
			if len(s.m.sentences) == 0 {
				continue
			}
			passage := s.m.sentences[0]
			if q, ok := s.build(TypeOverview,
				`Which lesson does this passage come from: "`+snippet(passage)+`..."?`,
				title, wrong,
				`The passage is from "`+short+`".`, passage); ok {
				return q, true
			}
		}
	}
	return QuizQuestion{}, false
}

// build shuffles the choices and runs them through NewQuizQuestion.
func (s *synthesizer) build(kind QuestionType, question, correct string, wrong []string, explanation, source string) (QuizQuestion, bool) {
	correct = Sanitize(correct)
	choices := make([]string, 0, ChoiceCount)
	choices = append(choices, correct)
	choices = append(choices, wrong...)
	shuffle(s.rng, choices)

	answer := -1
	for i, c := range choices {
		if normalizeKey(c) == normalizeKey(correct) {
			answer = i
			break
		}
	}
	q, err := NewQuizQuestion(question, choices, answer, explanation)
	if err != nil {
		return QuizQuestion{}, false
	}
	q.Type = kind
	q.SourceSentence = Sanitize(source)
	return q, true
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle(rng *rand.Rand, xs []string) {
	for i := len(xs) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// mask replaces every whole-word occurrence of term in sentence.
func mask(sentence, term, with string) string {
	return termPattern(term).ReplaceAllLiteralString(sentence, with)
}

var trailingPunct = regexp.MustCompile(`[\s,;:]+$`)

// snippet shortens s to at most maxSnippetRunes runes on a word boundary.
func snippet(s string) string {
	if utf8.RuneCountInString(s) <= maxSnippetRunes {
		return s
	}
	r := []rune(s)[:maxSnippetRunes]
	cut := string(r)
	if i := strings.LastIndexByte(cut, ' '); i > maxSnippetRunes/2 {
		cut = cut[:i]
	}
	return trailingPunct.ReplaceAllString(cut, "")
}
