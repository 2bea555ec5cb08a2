package enrich

import (
	"fmt"
	"strings"

	"github.com/peerpath/peerpath/internal/quizgen"
)

const quizSystemPrompt = `You are a helpful assistant that generates multiple-choice quizzes from a lesson text.`

func styleNote(style quizgen.Style) string {
	switch style {
	case quizgen.StyleVocab:
		return "Prioritize vocabulary-definition questions (term to concise definition)."
	case quizgen.StyleConcept:
		return "Prioritize conceptual understanding questions (explain relationships and roles)."
	case quizgen.StyleApplication:
		return "Prioritize short application or word-problem questions requiring application of a concept."
	default:
		return "Produce a balanced mix of vocabulary, conceptual, and application-style questions."
	}
}

// QuizUserMessage builds the quiz prompt. The model must answer with a bare
// JSON array.
func QuizUserMessage(lesson quizgen.Lesson, count int, style quizgen.Style) string {
	var b strings.Builder

	b.WriteString(styleNote(style))
	b.WriteString("\n")
	b.WriteString("Respond with valid JSON only: an array of objects. Each object must have: " +
		"question (string), choices (array of 4 unique strings), " +
		"answerIndex (0-based integer index into choices), " +
		"explanation (string briefly explaining the correct answer). " +
		"Do not include additional commentary.\n\n")
	fmt.Fprintf(&b, "Lesson title: %s\n\n", lesson.Title)
	fmt.Fprintf(&b, "Content:\n%s\n\n", lesson.Content)
	fmt.Fprintf(&b, "Generate %d questions. Make distractors plausible and avoid repeating near-duplicates. Return a JSON array.", count)

	return b.String()
}

// LessonsUserMessage builds the lesson enrichment prompt for a subject's
// base lesson list.
func LessonsUserMessage(subject string, base []quizgen.Lesson) string {
	var b strings.Builder

	titles := make([]string, len(base))
	for i, l := range base {
		titles[i] = orDefault(l.Title, "Untitled")
	}

	fmt.Fprintf(&b, "Subject: %q\n\n", subject)
	fmt.Fprintf(&b, "Lesson topics: %s\n\n", strings.Join(titles, ", "))
	b.WriteString(`For each topic, write detailed educational content including:
1. Overview and key concepts
2. Detailed explanations with examples
3. Practice problems or activities
4. Summary and next steps

Respond with a JSON array where each object has: { "title": string, "content": string }.
The content should be comprehensive (500-800 words per lesson).

`)
	fmt.Fprintf(&b, "Generate enriched content for these %d lessons:\n", len(base))
	for i, l := range base {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, orDefault(l.Title, "Untitled"), l.Content)
	}

	return b.String()
}

const lessonsSystemPrompt = `You are an expert educator creating comprehensive lesson content.`

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
