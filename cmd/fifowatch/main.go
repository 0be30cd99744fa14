// cmd/fifowatch/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tamzrod/fifo-watchdog/internal/config"
	"github.com/tamzrod/fifo-watchdog/internal/supervisor"
	"github.com/tamzrod/fifo-watchdog/internal/telemetry"
)

type rootOptions struct {
	configPath string
	path       string
	logLevel   string
	listen     string
	mode       string

	exitCode int
}

func main() {
	opts := &rootOptions{}
	root := newRootCmd(opts)
	if err := root.Execute(); err != nil {
		// cobra has already printed the error.
		os.Exit(supervisor.ExitUnexpected)
	}
	os.Exit(opts.exitCode)
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:          "fifowatch",
		Short:        "Named-pipe heartbeat watchdog and worker",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to YAML config (defaults apply when empty)")
	flags.StringVar(&opts.path, "path", "", "override channel.path")
	flags.StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	flags.StringVar(&opts.listen, "listen", "", "override observability.listen_address")

	run := newRunCmd(opts, "run", "Run watchdog and worker together", "")
	run.Flags().StringVar(&opts.mode, "mode", string(supervisor.ModeBoth), "endpoints to start: both, watchdog or worker")

	root.AddCommand(
		run,
		newRunCmd(opts, "watchdog", "Create the channel and poll it for heartbeats", supervisor.ModeWatchdog),
		newRunCmd(opts, "worker", "Wait for the channel and write heartbeats", supervisor.ModeWorker),
		newValidateCmd(opts),
	)
	return root
}

func newRunCmd(opts *rootOptions, use, short string, fixed supervisor.Mode) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := fixed
			if mode == "" {
				m, err := supervisor.ParseMode(opts.mode)
				if err != nil {
					return err
				}
				mode = m
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			logger, err := telemetry.NewLogger(telemetry.LogConfig{
				Level:       cfg.Log.Level,
				Development: cfg.Log.Development,
			})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			rep := supervisor.Run(ctx, *cfg, supervisor.Options{
				Mode:   mode,
				Logger: logger,
			})
			opts.exitCode = rep.ExitCode()
			if err := rep.Error(); err != nil {
				logger.Error("run failed", zap.Int("exit_code", opts.exitCode), zap.Error(err))
			}
			return nil
		},
	}
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration without touching the channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: channel=%s status_export=%t\n",
				cfg.Channel.Path, cfg.Status.Enabled())
			return nil
		},
	}
}

// --------------------
// Load + validate config
// --------------------

// loadConfig applies explicitly set flags over the file, then validates.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	flags := cmd.Flags()
	override(flags, "path", &cfg.Channel.Path, opts.path)
	override(flags, "log-level", &cfg.Log.Level, opts.logLevel)
	override(flags, "listen", &cfg.Observability.ListenAddress, opts.listen)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// override copies v into dst only when the flag was set on the command line.
func override(flags *pflag.FlagSet, name string, dst *string, v string) {
	if flags.Changed(name) {
		*dst = v
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
