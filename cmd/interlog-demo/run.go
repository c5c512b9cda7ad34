package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/interlog/configs"
	"github.com/Aman-CERP/interlog/internal/demo"
	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/internal/logging"
	"github.com/Aman-CERP/interlog/pkg/calllog"
	"github.com/Aman-CERP/interlog/pkg/rules"
)

const defaultRulesFile = "appsettings.yaml"

type options struct {
	rulesPath string
	level     string
	watch     bool
	interval  time.Duration
	cacheSize int
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "interlog-demo",
		Short: "Run the demo worker through generated interceptors",
		Long: `interlog-demo runs a fixed sequence of calls against a wrapped service
and writes the call log to stderr.

Rules come from --rules (default appsettings.yaml in the working directory,
or the built-in example rules when that file is absent), overridden by
INTERLOG_Log__<Owner>.<Method> environment variables.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.rulesPath, "rules", "", "Rule file (yaml, json or toml)")
	cmd.Flags().StringVar(&opts.level, "level", "trace", "Lowest severity written: trace, debug, information, warning, error, critical")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Repeat every --interval and reload the rule file on change")
	cmd.Flags().DurationVar(&opts.interval, "interval", 5*time.Second, "Delay between runs with --watch")
	cmd.Flags().IntVar(&opts.cacheSize, "cache-size", 16, "Entries kept by the demo cache")

	return cmd
}

func run(ctx context.Context, w io.Writer, opts options) error {
	sev, err := calllog.ParseSeverity(opts.level)
	if err != nil {
		return ierrors.ConfigError(err.Error(), err).WithDetail("flag", "level")
	}
	if opts.watch && opts.interval <= 0 {
		return ierrors.ConfigError("--interval must be positive", nil).WithDetail("flag", "interval")
	}
	logger := slog.New(logging.NewConsoleHandler(w, &slog.HandlerOptions{Level: sev.Level()}))

	base, file, err := ruleSource(opts.rulesPath)
	if err != nil {
		return err
	}
	source := rules.Layered{base, rules.NewEnvSource(rules.DefaultEnvPrefix, os.Environ())}
	reader := rules.NewCachedReader(rules.NewReader(source, rules.WithLogger(logger)), 0)

	callLogger := calllog.New(calllog.NewSlogSink(logger))
	svc := demo.NewMyServiceInterceptor(callLogger, reader, demo.StaticDependency("interlog-demo"))
	cache, err := demo.NewCacheInterceptor[string, string](callLogger, reader, opts.cacheSize)
	if err != nil {
		return ierrors.ConfigError("invalid cache size", err).WithDetail("flag", "cache-size")
	}
	worker := demo.NewWorker(svc, cache)

	if !opts.watch {
		return worker.Execute(ctx)
	}

	eg, ctx := errgroup.WithContext(ctx)
	if file != nil {
		eg.Go(func() error {
			return rules.Watch(ctx, file, func(err error) {
				if err != nil {
					logger.LogAttrs(ctx, slog.LevelWarn, "rule reload failed", ierrors.LogAttrs(err)...)
					return
				}
				reader.Purge()
				logger.Info("rules reloaded", slog.String("path", file.Path()))
			})
		})
	}
	eg.Go(func() error {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			if err := worker.Execute(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
	return eg.Wait()
}

// ruleSource opens the rule file. With no path it uses defaultRulesFile when
// present and the built-in example rules otherwise; the FileSource is nil in
// that case.
func ruleSource(path string) (rules.Source, *rules.FileSource, error) {
	if path == "" {
		if _, err := os.Stat(defaultRulesFile); errors.Is(err, os.ErrNotExist) {
			tree, err := rules.Decode(rules.FormatYAML, []byte(configs.RulesTemplate))
			if err != nil {
				return nil, nil, ierrors.InternalError("decode built-in rules", err)
			}
			return tree, nil, nil
		}
		path = defaultRulesFile
	}

	file, err := rules.NewFileSource(path)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}
