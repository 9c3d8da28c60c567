package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/syncer"
	"github.com/spf13/cobra"
)

var (
	listView     string
	listSearch   string
	listCategory string
	listBoard    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks filtered by view mode, search term or category.

Selecting a category shows that category only; view mode and search
are ignored while it is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()

		mode := syncer.ViewMode(listView)
		var tasks []*task.Task
		if listBoard {
			tasks = a.Sync.BoardView(mode, listSearch, listCategory)
		} else {
			tasks = a.Sync.FilteredView(mode, listSearch, listCategory)
		}

		if len(tasks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tPRI\tTITLE\tCATEGORY\tDUE\tTAGS")
		for _, t := range tasks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID().String()[:8],
				t.Status(),
				t.Priority(),
				t.Title(),
				task.CategoryDisplayName(t.Category()),
				formatDue(t),
				strings.Join(t.Tags(), ","),
			)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().StringVar(&listView, "view", "all", "view mode (today|upcoming|important|all)")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "search term")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "category filter (suppresses view and search)")
	listCmd.Flags().BoolVar(&listBoard, "board", false, "overdue-first ordering")
	rootCmd.AddCommand(listCmd)
}
