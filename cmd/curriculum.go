package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peerpath/peerpath/internal/enrich"
	"github.com/peerpath/peerpath/internal/quizgen"
)

var curriculumCmd = &cobra.Command{
	Use:   "curriculum [subject]",
	Short: "Show the 8-lesson curriculum for a subject",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		all, _ := cmd.Flags().GetBool("all")
		full, _ := cmd.Flags().GetBool("full")
		asJSON, _ := cmd.Flags().GetBool("json")
		useEnrich, _ := cmd.Flags().GetBool("enrich")
		parallel, _ := cmd.Flags().GetInt("parallel")

		if all == (len(args) == 1) {
			return fmt.Errorf("give a subject or --all, not both")
		}

		var enricher *enrich.Enricher
		if useEnrich {
			var err error
			if enricher, err = newEnricher(ctx, nil, true); err != nil {
				return err
			}
		}
		svc, err := newService(enricher)
		if err != nil {
			return err
		}

		var slugs []string
		if all {
			for _, s := range svc.Catalog().Subjects() {
				slugs = append(slugs, s.ID)
			}
		} else {
			slugs = []string{strings.ToLower(strings.TrimSpace(args[0]))}
		}

		curricula, err := svc.GetCurricula(ctx, slugs, parallel)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if !all {
				return enc.Encode(curricula[slugs[0]])
			}
			return enc.Encode(curricula)
		}

		for _, slug := range slugs {
			printCurriculum(slug, curricula[slug], full)
		}
		return nil
	},
}

func printCurriculum(slug string, lessons []quizgen.Lesson, full bool) {
	fmt.Println(slug)
	fmt.Println(strings.Repeat("─", 60))
	for i, l := range lessons {
		fmt.Printf("%d. %s\n", i+1, l.Title)
		if full {
			fmt.Println()
			fmt.Println(l.Content)
			fmt.Println()
		}
	}
	fmt.Println()
}

func init() {
	curriculumCmd.Flags().Bool("all", false, "Build curricula for every catalog subject")
	curriculumCmd.Flags().Bool("full", false, "Print lesson content, not just titles")
	curriculumCmd.Flags().Bool("json", false, "Print as JSON")
	curriculumCmd.Flags().Bool("enrich", false, "Try LLM enrichment before local expansion")
	curriculumCmd.Flags().Int("parallel", 4, "Subjects built concurrently with --all")
}
