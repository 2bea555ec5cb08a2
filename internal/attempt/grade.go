// Package attempt tracks one run through a quiz: answers, grading and the
// per-question review.
package attempt

import (
	"math"

	"github.com/peerpath/peerpath/internal/quizgen"
)

// Result is the score of a graded quiz. Percent is rounded to the nearest
// whole number.
type Result struct {
	Correct int
	Total   int
	Percent int
}

// Grade scores answers against questions. Unanswered questions count as
// wrong.
func Grade(questions []quizgen.QuizQuestion, answers map[int]int) Result {
	r := Result{Total: len(questions)}
	for i, q := range questions {
		if chosen, ok := answers[i]; ok && chosen == q.AnswerIndex {
			r.Correct++
		}
	}
	if r.Total > 0 {
		r.Percent = int(math.Round(float64(r.Correct) / float64(r.Total) * 100))
	}
	return r
}

// ReviewItem describes one question after grading.
type ReviewItem struct {
	Index       int
	Question    string
	Choices     []string
	Chosen      int // -1 when unanswered
	ChosenText  string
	AnswerIndex int
	AnswerText  string
	Explanation string
	Correct     bool
}

// Answered reports whether the question received an answer.
func (r ReviewItem) Answered() bool {
	return r.Chosen >= 0
}

// Review builds the per-question review for answers.
func Review(questions []quizgen.QuizQuestion, answers map[int]int) []ReviewItem {
	items := make([]ReviewItem, len(questions))
	for i, q := range questions {
		item := ReviewItem{
			Index:       i,
			Question:    q.Question,
			Choices:     q.Choices,
			Chosen:      -1,
			AnswerIndex: q.AnswerIndex,
			AnswerText:  q.Answer(),
			Explanation: q.Explanation,
		}
		if chosen, ok := answers[i]; ok && chosen >= 0 && chosen < len(q.Choices) {
			item.Chosen = chosen
			item.ChosenText = q.Choices[chosen]
			item.Correct = chosen == q.AnswerIndex
		}
		items[i] = item
	}
	return items
}
