// Package cli provides the command-line interface for the bot.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mork-fetch/internal/config"
	"mork-fetch/internal/engine"
	"mork-fetch/internal/notify"
	"mork-fetch/internal/prices"
	"mork-fetch/internal/store"
)

// Version information.
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Source  *prices.Source
	Engine  *engine.Engine
	Journal *store.Journal
}

// NewApp wires the price source, journal, notifier and engine from
// configuration and restores any previous state snapshot.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	app := &App{Config: cfg, Logger: logger}

	app.Source = prices.NewSource(prices.NewDexScreenerClient(), logger)
	app.Source.SetTTL(cfg.Prices.TTLSeconds)
	app.Source.SetLive(cfg.Prices.Live)

	if cfg.Engine.JournalPath != "" {
		journal, err := store.NewJournal(cfg.Engine.JournalPath)
		if err != nil {
			logger.Warn().Err(err).Msg("fill journal unavailable")
		} else {
			app.Journal = journal
		}
	}

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram notifier unavailable, using log notifier")
		} else {
			notifier = notify.Multi{tg, notify.NewLogNotifier(logger)}
		}
	}

	engCfg := engine.Config{
		StatePath:  cfg.Engine.StatePath,
		BackupPath: cfg.Engine.BackupPath,
		Interval:   cfg.Interval(),
		WatchSens:  cfg.Engine.WatchSens,
		Notify:     notify.Func(notifier),
	}
	if app.Journal != nil {
		engCfg.Journal = app.Journal
	}
	app.Engine = engine.New(engCfg, app.Source, logger)

	if err := app.Engine.Reload(); err != nil && err != engine.ErrStateNotFound {
		logger.Warn().Err(err).Msg("state restore failed, starting fresh")
	}
	return app
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := NewApp(cfg, logger)

	root := &cobra.Command{
		Use:          "fetchbot",
		Short:        "Mork F.E.T.C.H autosell and paper-trading engine",
		Version:      Version,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(app),
		newStatusCmd(app),
		newEventsCmd(app),
		newRuleCmd(app),
		newWatchCmd(app),
		newLedgerCmd(app),
		newPriceCmd(app),
		newStateCmd(app),
		newFillsCmd(app),
	)
	return root
}

func printLines(cmd *cobra.Command, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), l)
	}
}
