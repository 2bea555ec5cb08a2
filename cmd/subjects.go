package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List catalog subjects by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(nil)
		if err != nil {
			return err
		}

		category := ""
		for _, s := range svc.Catalog().Subjects() {
			if s.Category != category {
				if category != "" {
					fmt.Println()
				}
				category = s.Category
				fmt.Println(category)
			}
			fmt.Printf("  %-20s  %s\n", s.ID, s.Title)
		}
		return nil
	},
}
