package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newLedgerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Manage the paper-trading ledger",
	}
	cmd.AddCommand(
		newLedgerTradeCmd(app, "buy"),
		newLedgerTradeCmd(app, "sell"),
		newLedgerMarkCmd(app),
		&cobra.Command{
			Use:   "reset",
			Short: "Clear all positions and realized P&L",
			Run: func(cmd *cobra.Command, args []string) {
				app.Engine.LedgerReset()
				fmt.Fprintln(cmd.OutOrStdout(), "ledger reset")
			},
		},
	)
	return cmd
}

// newLedgerTradeCmd builds the buy and sell subcommands, which differ
// only in the engine call.
func newLedgerTradeCmd(app *App, side string) *cobra.Command {
	var price float64

	cmd := &cobra.Command{
		Use:   side + " <mint> <qty>",
		Short: "Record a simulated " + side,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid qty %q", args[1])
			}
			var ok bool
			var reason string
			if side == "buy" {
				ok, reason = app.Engine.LedgerBuy(args[0], qty, price)
			} else {
				ok, reason = app.Engine.LedgerSell(args[0], qty, price)
			}
			if !ok {
				return fmt.Errorf("%s rejected: %s", side, reason)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s recorded\n", side)
			return nil
		},
	}
	cmd.Flags().Float64Var(&price, "price", 0, "execution price (omit to use the current price)")
	return cmd
}

func newLedgerMarkCmd(app *App) *cobra.Command {
	var csv bool

	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Mark open positions to market",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if csv {
				fmt.Fprint(out, app.Engine.MarkToMarketCSV())
				return
			}
			report := app.Engine.MarkToMarket()
			for _, l := range report.Lines {
				fmt.Fprintf(out, "%s qty=%.6f avg=%.6f price=%.6f src=%s unrealized=%.6f\n",
					l.Mint, l.Qty, l.Avg, l.Price, l.Source, l.Unrealized)
			}
			fmt.Fprintf(out, "unrealized=%.6f realized=%.6f grand=%.6f\n",
				report.UnrealizedTotal, report.RealizedTotal, report.GrandTotal)
		},
	}
	cmd.Flags().BoolVar(&csv, "csv", false, "render as CSV")
	return cmd
}

func newFillsCmd(app *App) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "fills",
		Short: "Show recent journaled fills",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Journal == nil {
				return fmt.Errorf("fill journal not configured")
			}
			fills, err := app.Journal.RecentFills(n)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range fills {
				fmt.Fprintf(out, "%s %s %s qty=%.6f price=%.6f pnl=%.6f\n",
					f.Timestamp.Format("2006-01-02 15:04:05"), f.Side, f.Mint,
					f.Qty, f.Price, f.Realized)
			}
			stats, err := app.Journal.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "fills=%d buys=%d sells=%d realized=%.6f\n",
				stats.Fills, stats.Buys, stats.Sells, stats.Realized)
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 20, "number of fills to show")
	return cmd
}
