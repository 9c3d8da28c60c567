package cli

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/spf13/cobra"
)

var (
	updateTitle    string
	updateNotes    string
	updateCategory string
	updatePriority string
	updateRepeat   string
	updateDue      string
	updateClearDue bool
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		id, err := resolveTaskID(a, args[0])
		if err != nil {
			return err
		}
		t, err := a.Sync.Get(id)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("title") {
			if err := t.SetTitle(updateTitle); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("notes") {
			t.SetNotes(updateNotes)
		}
		if cmd.Flags().Changed("category") {
			t.SetCategory(updateCategory)
		}
		if cmd.Flags().Changed("priority") {
			p, err := task.ParsePriority(updatePriority)
			if err != nil {
				return err
			}
			if err := t.SetPriority(p); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("repeat") {
			r, err := task.ParseRepeat(updateRepeat)
			if err != nil {
				return err
			}
			if err := t.SetRepeat(r); err != nil {
				return err
			}
		}
		if updateClearDue {
			t.SetDueDate(nil)
		} else if cmd.Flags().Changed("due") {
			due, err := time.Parse("2006-01-02", updateDue)
			if err != nil {
				return fmt.Errorf("invalid --due date (want YYYY-MM-DD): %w", err)
			}
			t.SetDueDate(&due)
		}

		if err := a.Sync.Update(cmd.Context(), t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %s updated.\n", id.String()[:8])
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "new notes")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "new category")
	updateCmd.Flags().StringVar(&updatePriority, "priority", "", "new priority (low|medium|high)")
	updateCmd.Flags().StringVar(&updateRepeat, "repeat", "", "recurrence tag (daily|weekly|monthly|yearly|custom)")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "new due date (YYYY-MM-DD)")
	updateCmd.Flags().BoolVar(&updateClearDue, "clear-due", false, "remove the due date")
	rootCmd.AddCommand(updateCmd)
}
