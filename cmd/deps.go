package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peerpath/peerpath/internal/curriculum"
	"github.com/peerpath/peerpath/internal/enrich"
	"github.com/peerpath/peerpath/internal/llm"
	"github.com/peerpath/peerpath/internal/quizgen"
)

// newEnricher builds the enrichment client from the environment. The LLM
// provider is optional; without one only the remote functions are used.
// rec may be nil.
func newEnricher(ctx context.Context, rec llm.Recorder, remote bool) (*enrich.Enricher, error) {
	cfg, err := enrich.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if !remote {
		// Serving the functions: hold the model to the quiz and lesson schemas.
		cfg.FunctionsURL = ""
		cfg.Structured = true
	}

	opts := []enrich.Option{enrich.WithLogger(log)}
	if llm.Configured() {
		provider, err := llm.NewProviderFromEnv(ctx, rec, log.With("component", "llm"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Falling back to remote functions and local generation.")
		} else {
			opts = append(opts, enrich.WithProvider(provider))
		}
	}
	return enrich.New(cfg, opts...), nil
}

// newService loads the catalog (plus PEERPATH_CURRICULUM_DIR overrides) and
// wraps it in a curriculum service. e may be nil.
func newService(e *enrich.Enricher) (*curriculum.Service, error) {
	catalog, err := curriculum.LoadFromEnv(log)
	if err != nil {
		return nil, fmt.Errorf("load curriculum catalog: %w", err)
	}
	opts := []curriculum.ServiceOption{curriculum.WithLogger(log)}
	if e.Enabled() {
		opts = append(opts, curriculum.WithEnricher(e))
	}
	return curriculum.NewService(catalog, opts...), nil
}

func addQuizFlags(cmd *cobra.Command) {
	cmd.Flags().Int("count", 0, fmt.Sprintf("Questions per quiz, %d-%d (0 = based on lesson length)", quizgen.MinQuestions, quizgen.MaxQuestions))
	cmd.Flags().String("style", "mixed", "Quiz style: mixed, vocab, concept or application")
	cmd.Flags().Uint64("seed", 0, "Random seed for reproducible quizzes (0 = random)")
}

type quizFlags struct {
	count int
	style quizgen.Style
	seed  *uint64
}

func readQuizFlags(cmd *cobra.Command) quizFlags {
	count, _ := cmd.Flags().GetInt("count")
	style, _ := cmd.Flags().GetString("style")
	f := quizFlags{style: quizgen.ParseStyle(style)}
	if count != 0 {
		f.count = quizgen.ClampCount(count)
	}
	if seed, _ := cmd.Flags().GetUint64("seed"); seed != 0 {
		f.seed = &seed
	}
	return f
}
