package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peerpath/peerpath/internal/attempt"
	"github.com/peerpath/peerpath/internal/enrich"
	"github.com/peerpath/peerpath/internal/quizgen"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <subject>",
	Short: "Generate a quiz for one lesson of a subject",
	Long: `Generate a multiple-choice quiz for a lesson in the subject's curriculum.

By default the quiz is printed with its answers. With --take the quiz is
answered interactively on stdin, graded, and saved to history.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuiz,
}

func init() {
	addQuizFlags(quizCmd)
	quizCmd.Flags().IntP("index", "i", 1, "Lesson number within the curriculum (1-8)")
	quizCmd.Flags().Bool("enrich", false, "Try LLM enrichment before falling back to the local quiz")
	quizCmd.Flags().Bool("json", false, "Print the quiz as JSON")
	quizCmd.Flags().Bool("take", false, "Answer the quiz interactively and save the attempt")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	subject := strings.ToLower(strings.TrimSpace(args[0]))
	index, _ := cmd.Flags().GetInt("index")
	useEnrich, _ := cmd.Flags().GetBool("enrich")
	asJSON, _ := cmd.Flags().GetBool("json")
	take, _ := cmd.Flags().GetBool("take")
	flags := readQuizFlags(cmd)

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var enricher *enrich.Enricher
	if useEnrich {
		if enricher, err = newEnricher(ctx, st.EventRepo(), true); err != nil {
			return err
		}
	}
	svc, err := newService(enricher)
	if err != nil {
		return err
	}
	lesson := svc.GetLesson(ctx, subject, index)

	opts := []quizgen.Option{quizgen.WithTitlePool(svc.Catalog().Titles())}
	if flags.seed != nil {
		opts = append(opts, quizgen.WithSeed(*flags.seed))
	}
	gen := quizgen.New(opts...)
	count := flags.count
	if count == 0 {
		count = quizgen.DefaultCount(lesson)
	}

	questions := enricher.Quiz(ctx, lesson, count, flags.style)
	enriched := len(questions) > 0
	if !enriched {
		questions = gen.Generate(lesson, count, flags.style)
	}
	if len(questions) == 0 {
		return fmt.Errorf("lesson %q is too short to build a quiz from", lesson.Title)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Subject   string                 `json:"subject"`
			Lesson    string                 `json:"lesson"`
			Enriched  bool                   `json:"enriched"`
			Questions []quizgen.QuizQuestion `json:"questions"`
		}{subject, lesson.Title, enriched, questions})
	}

	if !take {
		printQuiz(os.Stdout, lesson, questions)
		return nil
	}

	a := attempt.New(subject, index, lesson, flags.style, questions)
	a.Enriched = enriched
	takeQuiz(os.Stdin, os.Stdout, a)

	rec, err := attempt.Save(ctx, st.AttemptRepo(), a)
	if err != nil {
		return err
	}
	fmt.Printf("Saved attempt %s\n", rec.ID)
	return nil
}

func printQuiz(w io.Writer, lesson quizgen.Lesson, questions []quizgen.QuizQuestion) {
	fmt.Fprintf(w, "%s\n\n", lesson.Title)
	for i, q := range questions {
		fmt.Fprintf(w, "%d. %s\n", i+1, q.Question)
		for j, c := range q.Choices {
			mark := " "
			if j == q.AnswerIndex {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %c) %s\n", mark, 'a'+j, c)
		}
		if q.Explanation != "" {
			fmt.Fprintf(w, "    %s\n", q.Explanation)
		}
		fmt.Fprintln(w)
	}
}

// takeQuiz reads one answer per question. Empty input skips a question.
func takeQuiz(r io.Reader, w io.Writer, a *attempt.Attempt) {
	scanner := bufio.NewScanner(r)
	total := len(a.Questions)

	fmt.Fprintf(w, "%s\n\n", a.LessonTitle)
	for i, q := range a.Questions {
		fmt.Fprintf(w, "── Question %d/%d ──\n", i+1, total)
		fmt.Fprintln(w, q.Question)
		for j, c := range q.Choices {
			fmt.Fprintf(w, "  %c) %s\n", 'a'+j, c)
		}

		fmt.Fprint(w, "\nYour answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(w, "\n(input closed)")
			break
		}
		choice, ok := parseChoice(scanner.Text(), len(q.Choices))
		if !ok {
			fmt.Fprint(w, "(skipped)\n\n")
			continue
		}
		_ = a.Answer(i, choice)

		if choice == q.AnswerIndex {
			fmt.Fprintln(w, "\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Fprintf(w, "\033[31m✗ Wrong.\033[0m Answer: %s\n", q.Answer())
		}
		if q.Explanation != "" {
			fmt.Fprintf(w, "Explanation: %s\n", q.Explanation)
		}
		fmt.Fprintln(w)
	}

	res := a.Grade()
	fmt.Fprintf(w, "── Summary: %d/%d correct (%d%%) ──\n", res.Correct, res.Total, res.Percent)
}

// parseChoice accepts a letter (a-d) or a 1-based number.
func parseChoice(input string, n int) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if len(s) != 1 {
		return 0, false
	}
	var i int
	switch c := s[0]; {
	case c >= 'a' && c <= 'z':
		i = int(c - 'a')
	case c >= '1' && c <= '9':
		i = int(c - '1')
	default:
		return 0, false
	}
	return i, i < n
}
