//go:build !tinygo && !baremetal

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ystepanoff/lbmwm1110/internal/config"
	"github.com/ystepanoff/lbmwm1110/internal/logging"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "lbmctl",
		Usage:   "LR1110 bus and context store tool",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "board configuration file (.yaml or .toml)",
				EnvVars: []string{"LBMCTL_CONFIG"},
				Value:   "board.yaml",
			},
		},
		Commands: []*cli.Command{
			ResetCommand(),
			VersionCommand(),
			WriteCommand(),
			ReadCommand(),
			DirectReadCommand(),
			SleepCommand(),
			ContextCommand(),
			MonitorCommand(),
		},
		Before: func(c *cli.Context) error {
			logging.ConfigureRuntime()
			return nil
		},
	}
}

// loadConfig reads and validates the file named by --config. Only commands
// that open the board call it, so help works without a configuration.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
