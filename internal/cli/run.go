package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

// newRunCmd starts the evaluation loop in the foreground until
// interrupted.
func newRunCmd(app *App) *cobra.Command {
	var autoQty float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the autosell evaluation loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Engine.Enable()
			if autoQty > 0 {
				applied := app.Engine.PaperAutoEnable(autoQty)
				app.Logger.Info().Float64("qty", applied).Msg("paper-auto enabled")
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig

			app.Logger.Info().Msg("shutting down")
			app.Engine.PaperAutoDisable()
			app.Engine.Disable()
			if err := app.Engine.ForceSave(); err != nil {
				app.Logger.Warn().Err(err).Msg("final save failed")
			}
			if app.Journal != nil {
				app.Journal.Close()
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&autoQty, "paper-auto", 0, "enable the paper-auto trader with this per-trade quantity")
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show engine status",
		Run: func(cmd *cobra.Command, args []string) {
			s := app.Engine.Status()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "enabled=%t alive=%t dry_run=%t interval=%ds\n",
				s.Enabled, s.Alive, s.DryRun, s.IntervalSec)
			fmt.Fprintf(out, "rules=%d alerts=%t watch_sens=%.2f%%\n",
				s.RuleCount, s.AlertsOn, s.WatchSens)
			fmt.Fprintf(out, "watch: %s\n", strings.Join(s.WatchMints, " "))
			fmt.Fprintf(out, "ledger: positions=%d open=%d realized=%.6f\n",
				s.Ledger.Positions, s.Ledger.Open, s.Ledger.Realized)
			fmt.Fprintf(out, "paper_auto: enabled=%t qty=%.6f\n", s.AutoEnabled, s.AutoQty)
			if s.LastTickAge >= 0 {
				fmt.Fprintf(out, "last_tick_age=%ds\n", s.LastTickAge)
			}
		},
	}
}

func newEventsCmd(app *App) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent engine events",
		Run: func(cmd *cobra.Command, args []string) {
			lines := app.Engine.Events(n)
			if len(lines) == 0 {
				lines = []string{"No events yet."}
			}
			printLines(cmd, lines)
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 10, "number of events to show (1-100)")
	return cmd
}
