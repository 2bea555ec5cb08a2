package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peerpath/peerpath/internal/attempt"
	"github.com/peerpath/peerpath/internal/store"
)

var reviewCmd = &cobra.Command{
	Use:   "review <attempt-id>",
	Short: "Show the graded review of a saved quiz attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		a, err := attempt.Load(cmd.Context(), s.AttemptRepo(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("attempt %s not found", args[0])
		}
		if err != nil {
			return err
		}

		res := a.Grade()
		fmt.Printf("%s · %s\n", a.Subject, a.LessonTitle)
		fmt.Printf("Taken:  %s\n", a.StartedAt.Local().Format("2006-01-02 15:04"))
		fmt.Printf("Score:  %d/%d (%d%%)\n\n", res.Correct, res.Total, res.Percent)

		for _, item := range a.Review() {
			mark := "✓"
			if !item.Correct {
				mark = "✗"
			}
			fmt.Printf("%s %d. %s\n", mark, item.Index+1, item.Question)
			switch {
			case item.Correct:
				fmt.Printf("    %s\n", item.AnswerText)
			case item.Answered():
				fmt.Printf("    You:    %s\n    Answer: %s\n", item.ChosenText, item.AnswerText)
			default:
				fmt.Printf("    (no answer)  Answer: %s\n", item.AnswerText)
			}
			if item.Explanation != "" {
				fmt.Printf("    %s\n", item.Explanation)
			}
		}
		return nil
	},
}
