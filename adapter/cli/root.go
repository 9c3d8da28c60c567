package cli

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/taskdeck/pkg/config"
	"github.com/felixgeelhaar/taskdeck/pkg/observability"
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Taskdeck - personal task management",
	Long: `Taskdeck manages your personal tasks: quick-add with natural
language, filtered views, and real-time sync across sessions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = "debug"
		}

		logger := observability.NewLogger(observability.LogConfig{
			Level:       observability.LogLevel(cfg.LogLevel),
			Format:      observability.LogFormatText,
			ServiceName: "taskdeck",
		})

		a, err := NewApp(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to start: %w", err)
		}
		SetApp(a)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if a := GetApp(); a != nil {
			a.Close()
			SetApp(nil)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
