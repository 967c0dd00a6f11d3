package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"fnrelay/gateway/internal/app"
	"fnrelay/gateway/internal/config"
	"fnrelay/gateway/internal/dependency"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "gateway",
		Short:         "fnrelay function-calling gateway",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")

	root.AddCommand(
		newServeCommand(opts),
		newSignCommand(opts),
		newVerifyCommand(opts),
		newRoutesCommand(opts),
		newFunctionsCommand(opts),
	)
	return root
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// logContext is the clue root context every component logs through.
func logContext(cfg config.Config) context.Context {
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if cfg.Debug {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}
	return ctx
}

// offlineContainer wires the services for commands that only inspect the
// catalog. Hooks stay in memory and a missing secret is tolerated.
func offlineContainer(cfg config.Config) (*dependency.Container, error) {
	cfg.HookBackend = config.HookBackendMemory
	if cfg.Secret == "" {
		cfg.Secret = "offline"
	}
	cfg.AnthropicAPIKey = ""
	return dependency.New(cfg, dependency.Options{LogContext: logContext(cfg)})
}
