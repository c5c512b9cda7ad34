package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/interlog/configs"
	"github.com/Aman-CERP/interlog/internal/config"
	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/internal/logging"
	"github.com/Aman-CERP/interlog/internal/output"
)

// rulesFileName is the starter rule file written by config init --rules.
const rulesFileName = "appsettings.yaml"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage interlog configuration",
		Long: `Manage the generator configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/interlog/config.yaml)
  3. Project config (.interlog.yaml in the project root)
  4. Environment variables (INTERLOG_*)`,
		Example: `  # Create .interlog.yaml and a starter rule file
  interlog config init --rules

  # Show effective configuration
  interlog config show

  # Print config file locations
  interlog config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, user, withRules bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file",
		Long: `Create .interlog.yaml in the current directory from a template, or the
user configuration with --user. Existing files are kept unless --force is
given, in which case they are backed up first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force, user, withRules)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files after backing them up")
	cmd.Flags().BoolVar(&user, "user", false, "Create the user configuration instead")
	cmd.Flags().BoolVar(&withRules, "rules", false, "Also create a starter "+rulesFileName)

	return cmd
}

func runConfigInit(cmd *cobra.Command, force, user, withRules bool) error {
	out := output.New(cmd.OutOrStdout())

	configPath := filepath.Join(".", config.FileName)
	if user {
		configPath = config.GetUserConfigPath()
	}
	if err := writeTemplate(out, configPath, configs.ProjectConfigTemplate, force); err != nil {
		return err
	}

	if withRules {
		if err := writeTemplate(out, rulesFileName, configs.RulesTemplate, force); err != nil {
			return err
		}
	}
	return nil
}

func writeTemplate(out *output.Writer, path, content string, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warningf("%s already exists", path)
			out.Status("💡", "Use --force to overwrite it (a backup is kept)")
			return nil
		}
		backupPath, err := config.Backup(path)
		if err != nil {
			return fmt.Errorf("failed to backup %s: %w", path, err)
		}
		out.Statusf("💾", "Backup: %s", backupPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return ierrors.New(ierrors.ErrCodeWriteFailed, "failed to write file", err).WithDetail("path", path)
	}
	out.Successf("Created %s", path)
	return nil
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Show the effective configuration after merging all sources, or a single source.`,
		Example: `  interlog config show
  interlog config show --json
  interlog config show --source project`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, defaults, user, project")

	return cmd
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	var (
		cfg *config.Config
		err error
	)

	switch source {
	case "merged":
		cfg, err = config.Load(".")
	case "defaults":
		cfg = config.NewConfig()
	case "user":
		cfg, err = config.LoadFile(config.GetUserConfigPath())
	case "project":
		root, rootErr := config.FindProjectRoot(".")
		if rootErr != nil {
			return rootErr
		}
		cfg, err = config.LoadFile(config.ProjectConfigPath(root))
	default:
		return fmt.Errorf("unknown source %q (use: merged, defaults, user, project)", source)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print config and log file locations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := config.FindProjectRoot(".")
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())
			out.Table(nil, [][]string{
				{"user", config.GetUserConfigPath()},
				{"project", config.ProjectConfigPath(root)},
				{"log", logging.DefaultLogPath()},
			})
			return nil
		},
	}
}
