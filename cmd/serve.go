package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/peerpath/peerpath/internal/curriculum"
	"github.com/peerpath/peerpath/internal/functions"
	"github.com/peerpath/peerpath/internal/llm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generate_quiz and generate_lessons functions over HTTP",
	Long: `Serve the enrichment functions that the client calls at
PEERPATH_FUNCTIONS_URL. Requests are answered with the configured LLM
provider and fall back to local generation when it is unavailable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		key, _ := cmd.Flags().GetString("key")
		if key == "" {
			key = os.Getenv("PEERPATH_FUNCTIONS_KEY")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var rec llm.Recorder
		if persist, _ := cmd.Flags().GetBool("record"); persist {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			rec = s.EventRepo()
		}

		// The server is the remote end, so it never calls out to itself.
		enricher, err := newEnricher(ctx, rec, false)
		if err != nil {
			return err
		}
		if !enricher.Enabled() {
			fmt.Fprintln(os.Stderr, "No LLM provider configured; every response will be a local fallback.")
		}

		catalog, err := curriculum.LoadFromEnv(log)
		if err != nil {
			return fmt.Errorf("load curriculum catalog: %w", err)
		}

		srv := functions.NewServer(addr, functions.RouterConfig{
			Key:    key,
			Log:    log.With("component", "functions"),
			Quiz:   functions.NewQuizHandler(enricher, catalog.Titles(), log),
			Lesson: functions.NewLessonsHandler(enricher, log),
			Health: functions.NewHealthHandler(),
		})
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8787", "Listen address")
	serveCmd.Flags().String("key", "", "Required apikey/bearer token (default PEERPATH_FUNCTIONS_KEY; empty disables auth)")
	serveCmd.Flags().Bool("record", true, "Record LLM requests in the database")
}
