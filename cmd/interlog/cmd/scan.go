package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/interlog/internal/config"
	"github.com/Aman-CERP/interlog/internal/output"
	"github.com/Aman-CERP/interlog/internal/registry"
)

type scanReport struct {
	Package string        `json:"package"`
	Dir     string        `json:"dir"`
	Owners  []ownerReport `json:"owners"`
}

type ownerReport struct {
	Name        string         `json:"name"`
	TypeParams  int            `json:"type_params,omitempty"`
	Constructor string         `json:"constructor,omitempty"`
	File        string         `json:"file"`
	Line        int            `json:"line"`
	Methods     []methodReport `json:"methods"`
}

type methodReport struct {
	Name     string   `json:"name"`
	Key      string   `json:"key"`
	Severity string   `json:"severity"`
	Disabled bool     `json:"disabled"`
	Params   []string `json:"params"`
	Results  []string `json:"results"`
	Line     int      `json:"line"`
}

func newScanCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "List observable methods",
		Long: `List the observable methods of a package with their configuration key,
severity and whether they are disabled. Nothing is written.`,
		Example: `  # Current package
  interlog scan

  # Machine-readable
  interlog scan ./internal/demo --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runScan(cmd, dir, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runScan(cmd *cobra.Command, dir string, jsonOutput bool) error {
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	pkg, scanErr := registry.Scan(cmd.Context(), dir, registry.Options{
		IncludeTests:    cfg.Generate.IncludeTestFiles(),
		GeneratedSuffix: cfg.Generate.Suffix,
	})
	if pkg == nil {
		return scanErr
	}

	report := newScanReport(pkg)
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		return scanErr
	}

	out := output.New(cmd.OutOrStdout())
	if len(report.Owners) == 0 {
		out.Warningf("no observable methods in %s", dir)
		return scanErr
	}
	for _, o := range report.Owners {
		out.Statusf("📦", "%s (%s:%d)", o.Name, o.File, o.Line)
		rows := make([][]string, 0, len(o.Methods))
		for _, m := range o.Methods {
			status := "enabled"
			if m.Disabled {
				status = "disabled"
			}
			rows = append(rows, []string{m.Name, m.Key, m.Severity, status})
		}
		out.Table([]string{"METHOD", "KEY", "SEVERITY", "STATUS"}, rows)
	}
	out.Newline()
	out.Statusf("", "%d owners, %d observable methods", len(report.Owners), pkg.MethodCount())

	return scanErr
}

func newScanReport(pkg *registry.Package) scanReport {
	report := scanReport{Package: pkg.Name, Dir: pkg.Dir, Owners: []ownerReport{}}
	for _, o := range pkg.Owners {
		rep := ownerReport{
			Name:       o.Name,
			TypeParams: len(o.TypeParams),
			File:       o.File,
			Line:       o.Line,
			Methods:    make([]methodReport, 0, len(o.Methods)),
		}
		if o.Constructor != nil {
			rep.Constructor = o.Constructor.Name
		}
		for _, m := range o.Methods {
			params := make([]string, len(m.Params))
			for i, p := range m.Params {
				params[i] = formatParam(p)
			}
			results := m.Results
			if results == nil {
				results = []string{}
			}
			rep.Methods = append(rep.Methods, methodReport{
				Name:     m.Name,
				Key:      o.Key(m.Name),
				Severity: m.Severity.String(),
				Disabled: m.Disabled,
				Params:   params,
				Results:  results,
				Line:     m.Line,
			})
		}
		report.Owners = append(report.Owners, rep)
	}
	return report
}

func formatParam(p registry.Param) string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	sb.WriteByte(' ')
	if p.Variadic {
		sb.WriteString("...")
	}
	sb.WriteString(p.Type)
	return sb.String()
}
