package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peerpath/peerpath/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz statistics per subject and recent attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		recent, _ := cmd.Flags().GetInt("recent")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		stats, err := s.AttemptRepo().SubjectStats(ctx)
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		if len(stats) == 0 {
			fmt.Println("No quizzes taken yet.")
			return nil
		}

		fmt.Printf("%-20s  %8s  %8s  %8s  %6s  %s\n", "Subject", "Attempts", "Correct", "Accuracy", "Best", "Last")
		fmt.Println(strings.Repeat("─", 72))
		for _, st := range stats {
			var accuracy float64
			if st.Total > 0 {
				accuracy = float64(st.Correct) / float64(st.Total) * 100
			}
			fmt.Printf("%-20s  %8d  %8s  %7.0f%%  %5.0f%%  %s\n",
				truncate(st.Subject, 20), st.Attempts,
				fmt.Sprintf("%d/%d", st.Correct, st.Total),
				accuracy, st.Best, st.Last.Local().Format("2006-01-02"))
		}

		if recent <= 0 {
			return nil
		}
		attempts, err := s.AttemptRepo().ListAttempts(ctx, store.AttemptQuery{Limit: recent})
		if err != nil {
			return fmt.Errorf("list attempts: %w", err)
		}
		fmt.Println()
		fmt.Println("Recent attempts")
		fmt.Println(strings.Repeat("─", 72))
		for _, a := range attempts {
			fmt.Printf("%-36s  %-16s  %5s  %s\n",
				a.ID, truncate(a.Subject, 16), fmt.Sprintf("%d/%d", a.Correct, a.Total),
				truncate(a.LessonTitle, 40))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("recent", "n", 5, "Number of recent attempts to list (0 to hide)")
}
