package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/myenglish/internal/curriculum"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List the lesson catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := curriculum.Validate(); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}

		fmt.Printf("%-3s  %-8s  %-4s  %-32s  %s\n", "#", "ID", "CEFR", "Title", "Topics")
		fmt.Println(strings.Repeat("─", 90))
		for i, l := range curriculum.All() {
			fmt.Printf("%-3d  %-8s  %-4s  %-32s  %s\n",
				i+1, l.ID, l.Level, truncate(l.Title, 32), strings.Join(l.Topics, ", "))
		}
		fmt.Println()
		fmt.Println("Units unlock in order: finish one to open the next.")
		return nil
	},
}
