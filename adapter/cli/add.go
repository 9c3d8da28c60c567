package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/syncer"
	"github.com/spf13/cobra"
)

var (
	addPriority string
	addDue      string
	addNotes    string
)

var addCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Quick add a task with natural language",
	Long: `Quickly add a task using natural language.

The description is parsed to extract:
- Task title (required)
- Due date: today, tomorrow, this weekend, next week, weekday names,
  "Dec 5", or YYYY-MM-DD
- Priority: urgent, asap, important (high) or "low priority" (low)
- Tags: #word tokens
- Recurrence: repeat:daily|weekly|monthly|yearly

Examples:
  taskdeck add "Buy groceries tomorrow"
  taskdeck add "Finish report by friday urgent #q3"
  taskdeck add "Water plants repeat:weekly"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		input := strings.Join(args, " ")

		var opts syncer.CreateOptions
		opts.Notes = addNotes
		if addPriority != "" {
			p, err := task.ParsePriority(addPriority)
			if err != nil {
				return err
			}
			opts.Priority = &p
		}
		// A date given through the flag overrides whatever the parser
		// detects in the text.
		if addDue != "" {
			due, err := time.Parse("2006-01-02", addDue)
			if err != nil {
				return fmt.Errorf("invalid --due date (want YYYY-MM-DD): %w", err)
			}
			opts.DueDate = &due
		}

		t, err := a.Sync.Create(cmd.Context(), input, opts)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Task created!")
		fmt.Fprintf(out, "  Title: %s\n", t.Title())
		fmt.Fprintf(out, "  ID: %s\n", t.ID().String()[:8])
		fmt.Fprintf(out, "  Category: %s\n", task.CategoryDisplayName(t.Category()))
		fmt.Fprintf(out, "  Priority: %s\n", t.Priority())
		if t.DueDate() != nil {
			fmt.Fprintf(out, "  Due: %s\n", formatDue(t))
		}
		if len(t.Tags()) > 0 {
			fmt.Fprintf(out, "  Tags: %s\n", strings.Join(t.Tags(), ", "))
		}
		if !t.Repeat().IsZero() {
			fmt.Fprintf(out, "  Repeat: %s\n", t.Repeat())
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "explicit priority (low|medium|high)")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "explicit due date (YYYY-MM-DD)")
	addCmd.Flags().StringVarP(&addNotes, "notes", "n", "", "notes")
	rootCmd.AddCommand(addCmd)
}
