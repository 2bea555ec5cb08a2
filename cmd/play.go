package cmd

import (
	"github.com/spf13/cobra"

	"github.com/peerpath/peerpath/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Browse subjects and take quizzes in the terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	addQuizFlags(playCmd)
}

// runPlay opens the store, builds dependencies, and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	enricher, err := newEnricher(ctx, st.EventRepo(), true)
	if err != nil {
		return err
	}
	svc, err := newService(enricher)
	if err != nil {
		return err
	}

	flags := readQuizFlags(cmd)
	return app.Run(app.Options{
		Service:  svc,
		Enricher: enricher,
		Attempts: st.AttemptRepo(),
		Style:    flags.style,
		Count:    flags.count,
		Seed:     flags.seed,
		Log:      log,
	})
}
