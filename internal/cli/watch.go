package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the price watchlist",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <mint>",
			Short: "Track a mint",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				app.Engine.WatchAdd(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", args[0])
			},
		},
		&cobra.Command{
			Use:   "remove <mint>",
			Short: "Stop tracking a mint",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				if app.Engine.WatchRemove(args[0]) {
					fmt.Fprintln(cmd.OutOrStdout(), "removed")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "not watched")
				}
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Clear the watchlist",
			Run: func(cmd *cobra.Command, args []string) {
				n := app.Engine.WatchClear()
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %d\n", n)
			},
		},
		&cobra.Command{
			Use:   "sens <percent>",
			Short: "Set alert sensitivity (0.1-100)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("invalid percent %q", args[0])
				}
				applied := app.Engine.SetWatchSens(v)
				fmt.Fprintf(cmd.OutOrStdout(), "sensitivity=%.2f%%\n", applied)
				return nil
			},
		},
		&cobra.Command{
			Use:   "alerts <on|off>",
			Short: "Toggle alert emission",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				switch args[0] {
				case "on":
					app.Engine.SetAlerts(true)
				case "off":
					app.Engine.SetAlerts(false)
				default:
					return fmt.Errorf("expected on or off, got %q", args[0])
				}
				return nil
			},
		},
	)
	return cmd
}
