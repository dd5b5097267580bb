package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/screens/history"
	"github.com/abhisek/myenglish/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past lesson runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLessonEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		runs := history.GroupRuns(events)
		if len(runs) == 0 {
			fmt.Println("No lessons recorded yet.")
			return nil
		}
		if limit > 0 && len(runs) > limit {
			runs = runs[:limit]
		}

		fmt.Printf("%-16s  %-28s  %-10s  %s\n", "Started", "Lesson", "Outcome", "Accepted")
		fmt.Println(strings.Repeat("─", 72))
		for _, r := range runs {
			title := r.LessonID
			if l, err := curriculum.Get(r.LessonID); err == nil {
				title = l.Title
			}
			fmt.Printf("%-16s  %-28s  %-10s  %d/%d\n",
				r.Events[0].Timestamp.Local().Format("2006-01-02 15:04"),
				truncate(title, 28), r.Outcome, r.Accepted, r.Attempts)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
}
