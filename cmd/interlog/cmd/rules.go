package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/interlog/internal/config"
	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/internal/output"
	"github.com/Aman-CERP/interlog/pkg/intercept"
	"github.com/Aman-CERP/interlog/pkg/rules"
	"github.com/Aman-CERP/interlog/pkg/value"
)

func newRulesCmd() *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and test log rules",
		Long: `Inspect the log rules that generated interceptors read at runtime.

Rules live under the Log section of the rule files, keyed by
<Owner>.<Method> (or <Owner>[<type params>].<Method> for generic owners).
Each rule is a JSON fragment or a list of fragments matched as a subset
against the call's arguments.

Rule files come from rules.files in the interlog config unless --file is
given. Environment variables with rules.env_prefix are layered on top.`,
		Example: `  # Report fragments the runtime would drop
  interlog rules check appsettings.yaml

  # Show the effective rules of one method
  interlog rules show MyService.DoSomethingElse

  # Would this call be logged?
  interlog rules eval MyService.ConditionalLogging '{"a": 2}'`,
	}

	cmd.PersistentFlags().StringSliceVar(&files, "file", nil, "Rule file (repeatable, later files win)")

	cmd.AddCommand(newRulesCheckCmd(&files))
	cmd.AddCommand(newRulesShowCmd(&files))
	cmd.AddCommand(newRulesEvalCmd(&files))

	return cmd
}

func newRulesCheckCmd(files *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file...]",
		Short: "Validate every rule in the rule files",
		Long: `Parse every Log fragment of each rule file and report the invalid ones.
The command fails when any fragment is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := append(args, *files...)
			if len(paths) == 0 {
				cfg, err := config.Load(".")
				if err != nil {
					return err
				}
				paths = cfg.RuleFiles(".")
			}
			return runRulesCheck(cmd, paths)
		},
	}
}

func runRulesCheck(cmd *cobra.Command, files []string) error {
	out := output.New(cmd.OutOrStdout())
	invalid := 0

	for _, path := range files {
		src, err := rules.NewFileSource(path)
		if err != nil {
			return err
		}
		reader := rules.NewReader(src)

		methods, valid := 0, 0
		var problems []error
		for _, method := range reader.Methods() {
			methods++
			ruleSet, errs := reader.ReadAll(method)
			valid += len(ruleSet)
			problems = append(problems, errs...)
		}

		if len(problems) == 0 {
			out.Successf("%s: %d methods, %d rules", path, methods, valid)
			continue
		}
		invalid += len(problems)
		out.Errorf("%s: %d invalid of %d rules", path, len(problems), valid+len(problems))
		for _, p := range problems {
			var pe *rules.ParseError
			if errors.As(p, &pe) {
				out.Statusf("", "%s: %q: %v", pe.Key, pe.Fragment, pe.Err)
				continue
			}
			out.Statusf("", "%v", p)
		}
	}

	if invalid > 0 {
		return ierrors.New(ierrors.ErrCodeRuleInvalid, fmt.Sprintf("%d invalid log rules", invalid), nil).
			WithSuggestion("Each rule must be a JSON fragment, e.g. '{\"a\": 1}'")
	}
	return nil
}

func newRulesShowCmd(files *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "show [method]",
		Short: "Show the effective rules",
		Long: `Show the effective rules after layering rule files and environment
variables. Without a method every configured method is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := newLayeredReader(*files)
			if err != nil {
				return err
			}
			methods := args
			if len(methods) == 0 {
				methods = reader.Methods()
			}
			return runRulesShow(cmd, reader, methods)
		},
	}
}

type ruleReport struct {
	Key     string   `yaml:"key"`
	Rules   []string `yaml:"rules"`
	Invalid []string `yaml:"invalid,omitempty"`
}

func runRulesShow(cmd *cobra.Command, reader *rules.ConfigReader, methods []string) error {
	reports := make([]ruleReport, 0, len(methods))
	for _, method := range methods {
		ruleSet, errs := reader.ReadAll(method)
		rep := ruleReport{Key: reader.Key(method), Rules: []string{}}
		for _, r := range ruleSet {
			rep.Rules = append(rep.Rules, r.String())
		}
		for _, err := range errs {
			rep.Invalid = append(rep.Invalid, err.Error())
		}
		reports = append(reports, rep)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return err
	}
	return enc.Close()
}

func newRulesEvalCmd(files *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <method> <arguments-json>",
		Short: "Check whether a call would be logged",
		Long: `Evaluate the rules of a method against an argument object, exactly as a
generated interceptor does for a real call.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := newLayeredReader(*files)
			if err != nil {
				return err
			}
			return runRulesEval(cmd, reader, args[0], args[1])
		},
	}
}

func runRulesEval(cmd *cobra.Command, reader rules.Reader, method, argsJSON string) error {
	snapshot, err := value.Parse(argsJSON)
	if err != nil {
		return ierrors.New(ierrors.ErrCodeRuleInvalid, "invalid arguments JSON", err)
	}

	ruleSet := reader.Read(method)
	matched, err := intercept.Evaluate(ruleSet, snapshot)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	switch {
	case len(ruleSet) == 0:
		out.Successf("logged: %s has no rules", method)
	case matched:
		out.Successf("logged: %s matches one of %d rules", method, len(ruleSet))
	default:
		out.Statusf("🔇", "not logged: %s matches none of %d rules", method, len(ruleSet))
	}
	return nil
}

// newLayeredReader reads rules from the given files, or the configured ones,
// with the environment layered on top. Missing configured files are skipped;
// missing explicit files are an error.
func newLayeredReader(files []string) (*rules.ConfigReader, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}

	explicit := len(files) > 0
	if !explicit {
		files = cfg.RuleFiles(".")
	}

	var layers rules.Layered
	for _, path := range files {
		src, err := rules.NewFileSource(path)
		if err != nil {
			if !explicit && ierrors.GetCode(err) == ierrors.ErrCodeFileNotFound {
				slog.Debug("skipping missing rule file", slog.String("path", path))
				continue
			}
			return nil, err
		}
		layers = append(layers, src)
	}
	if cfg.Rules.EnvPrefix != "" {
		layers = append(layers, rules.NewEnvSource(cfg.Rules.EnvPrefix, os.Environ()))
	}

	return rules.NewReader(layers), nil
}
