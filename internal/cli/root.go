// Package cli provides the textprep command-line interface.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wdm0006/textprep/internal/config"
)

type configKey struct{}

type loggerKey struct{}

// NewRootCmd creates the root command and its subcommands.
func NewRootCmd(version string) *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:   "textprep",
		Short: "Run ordered text-preprocessing pipelines over tabular datasets",
		Long: `textprep loads a text column from a catalogued dataset or a CSV, JSONL or
Parquet file and applies named preprocessing steps to it in order.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}
			cfg, used, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := cfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if used != "" {
				logger.Debug("using config file", "path", used)
			}
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./textprep.yaml, .yml or .toml)")
	pf.String("data-dir", config.DefaultDataDir, "directory holding datasets/<name>.csv")
	pf.String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	pf.String("log-format", config.DefaultLogFormat, "log format (text|json)")

	_ = root.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(newRunCommand())
	root.AddCommand(newStepsCommand())
	root.AddCommand(newDatasetsCommand())
	root.AddCommand(newVersionCommand(version))
	return root
}

func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		DataDir:     config.DefaultDataDir,
		Column:      config.DefaultColumn,
		Concurrency: config.DefaultConcurrency,
		Preview:     config.DefaultPreview,
		LogLevel:    config.DefaultLogLevel,
		LogFormat:   config.DefaultLogFormat,
	}
}

func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
