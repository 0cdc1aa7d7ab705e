// Package cli implements the resumechat command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resumechat/internal/config"
	"resumechat/internal/logger"
)

// app carries state resolved once per invocation by the root command.
type app struct {
	cfgPath  string
	logLevel string
	cfg      *config.AppConfig
	ctx      context.Context
}

// NewRootCommand builds the full command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "resumechat",
		Short: "Answer questions about a resume",
		Long: `Answers questions about a resume from its structured profile and
its segmented text, citing the lines every answer was copied from.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to YAML config file (default ./config.yaml or ~/.config/resumechat/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newIngestCommand(a),
		newAskCommand(a),
		newServeCommand(a),
		newChatCommand(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg *config.AppConfig
		err error
	)
	if a.cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(a.cfgPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.Log.Level)
	logCfg.JSON = cfg.Log.JSON
	logCfg.Output = cmd.ErrOrStderr()
	log := logger.NewLogger(logCfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.ctx = logger.ContextWithLogger(ctx, log)
	return nil
}
