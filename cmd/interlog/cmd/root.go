// Package cmd provides the CLI commands for interlog.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/internal/logging"
	"github.com/Aman-CERP/interlog/pkg/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Logging flags
var (
	debugMode      bool
	logLevel       string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the interlog CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interlog",
		Short: "Generate call-logging interceptors for Go methods",
		Long: `interlog generates wrapper types that log calls to methods marked with
//interlog:observe, filtered at runtime by subset-match rules read from
configuration.

Mark a method, run 'interlog generate' in its package (or via go generate),
then construct the owner through New<Owner>Interceptor.`,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("interlog version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.interlog/logs/")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Stderr log level: debug, info, warn, error")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging installs the default logger. --debug adds file logging.
func startLogging(cmd *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	cfg.Level = logLevel
	cfg.Stderr = cmd.ErrOrStderr()
	if debugMode {
		debug := logging.DebugConfig()
		cfg.Level = debug.Level
		cfg.FilePath = debug.FilePath
	}

	cleanup, err := logging.SetupDefault(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	if debugMode {
		slog.Debug("debug logging enabled",
			slog.String("log_file", cfg.FilePath),
			slog.String("version", version.Get().String()))
	}
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// ExecuteContext runs the root command and prints any error in CLI form.
func ExecuteContext(ctx context.Context) error {
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		_, _ = fmt.Fprint(root.ErrOrStderr(), ierrors.FormatForCLI(err))
	}
	return err
}
