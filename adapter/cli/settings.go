package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/taskdeck/internal/settings"
	"github.com/spf13/cobra"
)

var (
	settingsDefaultView string
	settingsTheme       string
	settingsStartOfWeek int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage user settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		s, err := a.Settings.GetSettings(cmd.Context(), a.CurrentUserID)
		if errors.Is(err, settings.ErrNotFound) {
			s = settings.Default()
		} else if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		s, err := a.Settings.GetSettings(cmd.Context(), a.CurrentUserID)
		if errors.Is(err, settings.ErrNotFound) {
			s = settings.Default()
		} else if err != nil {
			return err
		}

		if cmd.Flags().Changed("default-view") {
			s.DefaultView = settingsDefaultView
		}
		if cmd.Flags().Changed("theme") {
			s.Theme = settingsTheme
		}
		if cmd.Flags().Changed("start-of-week") {
			if settingsStartOfWeek < 0 || settingsStartOfWeek > 6 {
				return fmt.Errorf("start-of-week must be 0 (Sunday) through 6 (Saturday)")
			}
			s.StartOfWeek = settingsStartOfWeek
		}

		if err := a.Settings.PutSettings(cmd.Context(), a.CurrentUserID, s); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
		return nil
	},
}

func init() {
	settingsSetCmd.Flags().StringVar(&settingsDefaultView, "default-view", "", "default view mode")
	settingsSetCmd.Flags().StringVar(&settingsTheme, "theme", "", "UI theme")
	settingsSetCmd.Flags().IntVar(&settingsStartOfWeek, "start-of-week", 1, "first weekday (0=Sunday)")
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
