package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mork-fetch/internal/engine"
)

func newRuleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage autosell exit rules",
	}
	cmd.AddCommand(newRuleSetCmd(app), newRuleRemoveCmd(app), newRuleListCmd(app), newRuleDryRunCmd(app))
	return cmd
}

func newRuleSetCmd(app *App) *cobra.Command {
	var tp, sl, trail, size string

	cmd := &cobra.Command{
		Use:   "set <mint>",
		Short: "Create or update an exit rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := map[string]string{}
			if tp != "" {
				raw["tp"] = tp
			}
			if sl != "" {
				raw["sl"] = sl
			}
			if trail != "" {
				raw["trail"] = trail
			}
			if size != "" {
				raw["size"] = size
			}
			fields, err := engine.ParseRuleFields(raw)
			if err != nil {
				return err
			}
			rule, err := app.Engine.SetRule(args[0], fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rule set: %s\n", rule.Mint)
			return nil
		},
	}
	cmd.Flags().StringVar(&tp, "tp", "", "take-profit percent")
	cmd.Flags().StringVar(&sl, "sl", "", "stop-loss percent")
	cmd.Flags().StringVar(&trail, "trail", "", "trailing-stop percent")
	cmd.Flags().StringVar(&size, "size", "", "advisory position size")
	return cmd
}

func newRuleRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <mint>",
		Short: "Remove an exit rule",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			n := app.Engine.RemoveRule(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "removed: %d\n", n)
		},
	}
}

func newRuleListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exit rules",
		Run: func(cmd *cobra.Command, args []string) {
			rules := app.Engine.Rules()
			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rules.")
				return
			}
			for _, r := range rules {
				info, _ := app.Engine.RuleInfo(r.Mint)
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func newRuleDryRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dryrun [mint]",
		Short: "Evaluate rules once without mutating state",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			mint := ""
			if len(args) == 1 {
				mint = args[0]
			}
			printLines(cmd, app.Engine.DryRunEval(mint))
		},
	}
}
