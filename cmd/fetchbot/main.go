package main

import (
	"fmt"
	"os"

	"mork-fetch/internal/cli"
	"mork-fetch/internal/config"
	"mork-fetch/internal/logging"
)

func main() {
	configPath := os.Getenv("FETCHBOT_CONFIG")

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.LogConfig{
		Level:    cfg.Logging.Level,
		Console:  true,
		File:     cfg.Logging.File,
		FilePath: cfg.Logging.Path,
		MaxSize:  50, MaxBackups: 5, MaxAge: 30,
	})

	root := cli.NewRootCmd(cfg, logger)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
