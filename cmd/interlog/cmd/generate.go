package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/interlog/internal/config"
	"github.com/Aman-CERP/interlog/internal/generate"
	"github.com/Aman-CERP/interlog/internal/output"
)

func newGenerateCmd() *cobra.Command {
	var (
		dryRun  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "generate [dir...]",
		Short: "Generate interceptors for observable methods",
		Long: `Scan each package directory for methods marked with //interlog:observe and
write one <owner>_interlog.go file per owner with enabled methods.

Files are only rewritten when their content changes. Generated files whose
owner no longer has enabled methods are removed. Without arguments the
current directory is processed. A directory ending in /... also covers
every package below it.`,
		Example: `  # From a package, via go generate
  //go:generate interlog generate

  # Several packages at once
  interlog generate ./internal/service ./internal/cache

  # Every package of the module
  interlog generate ./...

  # Show what would be written
  interlog generate --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, dryRun, workers)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render without writing files")
	cmd.Flags().IntVar(&workers, "workers", 0, "Packages processed in parallel (default from config)")

	return cmd
}

func runGenerate(cmd *cobra.Command, patterns []string, dryRun bool, workers int) error {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	dirs, err := generate.ExpandDirs(cmd.Context(), patterns)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		output.New(cmd.OutOrStdout()).Statusf("", "no Go packages matched")
		return nil
	}
	explicit := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		explicit[filepath.Clean(p)] = true
	}

	cfg, err := config.Load(dirs[0])
	if err != nil {
		return err
	}

	opts := generate.Options{
		Suffix:       cfg.Generate.Suffix,
		TypeSuffix:   cfg.Generate.TypeSuffix,
		Workers:      cfg.Generate.Workers,
		IncludeTests: cfg.Generate.IncludeTestFiles(),
		DryRun:       dryRun,
	}
	if workers > 0 {
		opts.Workers = workers
	}

	results, genErr := generate.New(opts, slog.Default()).Generate(cmd.Context(), dirs)

	out := output.New(cmd.OutOrStdout())
	for _, res := range results {
		if res.Package == nil {
			continue
		}
		if len(res.Files) == 0 && len(res.Removed) == 0 {
			if explicit[res.Dir] {
				out.Statusf("", "%s: no observable methods", res.Dir)
			}
			continue
		}
		for _, f := range res.Files {
			switch {
			case dryRun:
				out.Statusf("📝", "would write %s (%s)", f.Path, f.Owner)
			case f.Changed:
				out.Successf("wrote %s", f.Path)
			default:
				out.Statusf("", "unchanged %s", f.Path)
			}
		}
		for _, path := range res.Removed {
			out.Statusf("🗑️ ", "removed %s", path)
		}
	}

	return genErr
}
