package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price source admin",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <mint>",
			Short: "Resolve a price",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				price, src, ok := app.Source.Lookup(args[0])
				if !ok {
					price = app.Source.Sim(args[0])
					src = "sim"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.6f src=%s\n", price, src)
			},
		},
		&cobra.Command{
			Use:   "config",
			Short: "Show price source settings",
			Run: func(cmd *cobra.Command, args []string) {
				c := app.Source.Config()
				fmt.Fprintf(cmd.OutOrStdout(), "ttl=%ds live=%t overrides=%d cached=%d\n",
					c.TTLSeconds, c.Live, c.Overrides, c.Cached)
			},
		},
		&cobra.Command{
			Use:   "ttl <seconds>",
			Short: "Set cache TTL (1-3600)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sec, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid seconds %q", args[0])
				}
				applied := app.Source.SetTTL(sec)
				fmt.Fprintf(cmd.OutOrStdout(), "ttl=%ds\n", applied)
				return nil
			},
		},
		&cobra.Command{
			Use:   "source <live|off>",
			Short: "Toggle live price fetching",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				switch args[0] {
				case "live":
					app.Source.SetLive(true)
				case "off":
					app.Source.SetLive(false)
				default:
					return fmt.Errorf("expected live or off, got %q", args[0])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear-cache",
			Short: "Drop all cached quotes",
			Run: func(cmd *cobra.Command, args []string) {
				n := app.Source.ClearCache()
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %d\n", n)
			},
		},
		&cobra.Command{
			Use:   "override <mint> <price>",
			Short: "Pin a manual price",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := strconv.ParseFloat(args[1], 64)
				if err != nil || p <= 0 {
					return fmt.Errorf("invalid price %q", args[1])
				}
				app.Source.SetOverride(args[0], p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear-override <mint>",
			Short: "Remove a manual price",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				if app.Source.ClearOverride(args[0]) {
					fmt.Fprintln(cmd.OutOrStdout(), "cleared")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "no override")
				}
			},
		},
	)
	return cmd
}
