package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		stats := a.Sync.Stats()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Total: %d  Completed: %d  Pending: %d  Overdue: %d\n\n",
			stats.Total, stats.Completed, stats.Pending, stats.Overdue)

		fmt.Fprintln(out, "Completions (last 7 days):")
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for d := time.Sunday; d <= time.Saturday; d++ {
			fmt.Fprintf(w, "  %s\t%d\n", d, stats.Weekly[d])
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(out, "\nBy category:")
		w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, c := range task.Catalog() {
			if n := stats.ByCategory[c.ID]; n > 0 {
				fmt.Fprintf(w, "  %s\t%d\n", c.Name, n)
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
