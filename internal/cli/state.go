package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mork-fetch/internal/engine"
)

func newStateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Snapshot and restore engine state",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "save",
			Short: "Force a state snapshot",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Engine.ForceSave(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "saved")
				return nil
			},
		},
		&cobra.Command{
			Use:   "backup",
			Short: "Write an on-demand backup snapshot",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Engine.BackupState(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "backup written")
				return nil
			},
		},
		&cobra.Command{
			Use:   "restore",
			Short: "Restore from the primary state file",
			Run: func(cmd *cobra.Command, args []string) {
				reportRestore(cmd, app.Engine.Reload())
			},
		},
		&cobra.Command{
			Use:   "restore-backup",
			Short: "Restore from the backup state file",
			Run: func(cmd *cobra.Command, args []string) {
				reportRestore(cmd, app.Engine.RestoreBackup())
			},
		},
	)
	return cmd
}

// reportRestore prints the restore outcome without failing the
// command; a missing or corrupt snapshot is a status, not a crash.
func reportRestore(cmd *cobra.Command, err error) {
	switch {
	case err == nil:
		fmt.Fprintln(cmd.OutOrStdout(), "restored")
	case errors.Is(err, engine.ErrStateNotFound):
		fmt.Fprintln(cmd.OutOrStdout(), "not found")
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "restore failed: %v\n", err)
	}
}
