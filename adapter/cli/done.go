package cli

import (
	"fmt"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		id, err := resolveTaskID(a, args[0])
		if err != nil {
			return err
		}
		if err := a.Sync.UpdateStatus(cmd.Context(), id, task.StatusDone); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %s marked done.\n", id.String()[:8])
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Mark a task as in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		id, err := resolveTaskID(a, args[0])
		if err != nil {
			return err
		}
		if err := a.Sync.UpdateStatus(cmd.Context(), id, task.StatusInProgress); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %s started.\n", id.String()[:8])
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Toggle a task's completed state",
	Long: `Toggle a task's completed state. Un-completing a done task
reopens it; completing sets it done whatever its prior status.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		id, err := resolveTaskID(a, args[0])
		if err != nil {
			return err
		}
		if err := a.Sync.ToggleCompleted(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %s toggled.\n", id.String()[:8])
		return nil
	},
}

var importantCmd = &cobra.Command{
	Use:   "important <id>",
	Short: "Toggle a task's importance",
	Long: `Toggle a task between high and medium priority. A low
priority task becomes high.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		id, err := resolveTaskID(a, args[0])
		if err != nil {
			return err
		}
		if err := a.Sync.ToggleImportant(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %s importance toggled.\n", id.String()[:8])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		id, err := resolveTaskID(a, args[0])
		if err != nil {
			return err
		}
		if err := a.Sync.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %s deleted.\n", id.String()[:8])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doneCmd, startCmd, toggleCmd, importantCmd, deleteCmd)
}
