package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peerpath/peerpath/internal/logger"
	"github.com/peerpath/peerpath/internal/store"
)

// log is built once per invocation in PersistentPreRunE.
var log = logger.Nop()

var rootCmd = &cobra.Command{
	Use:   "peerpath",
	Short: "Lessons and quizzes for any subject",
	Long:  "PeerPath builds an 8-lesson curriculum for a subject and quizzes you on each lesson, offline first with optional LLM enrichment.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = os.Getenv("PEERPATH_LOG_LEVEL")
		}
		l, err := logger.New(os.Getenv("PEERPATH_LOG_MODE"), level)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PEERPATH_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides PEERPATH_LOG_LEVEL)")
	addQuizFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(curriculumCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PEERPATH_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
