package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/config"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/observability"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/storage"
)

// app carries the process dependencies so tests can swap them.
type app struct {
	stdout io.Writer
	stderr io.Writer

	logLevel string
	envFile  string
	logger   *zap.Logger

	newLogger   func(level string) (*zap.Logger, error)
	newUploader func(ctx context.Context, credentialsFile string) (storage.Uploader, func() error, error)
	configOpts  []config.Option
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		newLogger: func(level string) (*zap.Logger, error) {
			return observability.NewLogger(
				observability.WithOutput("stderr"),
				observability.WithLevel(level),
				observability.WithFields(map[string]any{"service": "mapgen"}),
			)
		},
		newUploader: gcsUploader,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mapgen",
		Short:         "Build the service-area map boundary table",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := a.newLogger(a.logLevel)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file with DECA_MAP_* settings")

	root.AddCommand(a.generateCmd(), a.viewportCmd(), a.inspectCmd())
	return root
}

func (a *app) loadConfig(ctx context.Context) (config.Config, error) {
	opts := append([]config.Option{config.WithEnvFile(a.envFile)}, a.configOpts...)
	return config.Load(ctx, opts...)
}

func gcsUploader(ctx context.Context, credentialsFile string) (storage.Uploader, func() error, error) {
	client, err := storage.NewClient(ctx, credentialsFile)
	if err != nil {
		return nil, nil, err
	}
	uploader, err := storage.NewGCSUploader(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return uploader, client.Close, nil
}
