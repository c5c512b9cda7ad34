package generate

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"
	"unicode"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/internal/registry"
)

// Header starts every generated file.
const Header = "// Code generated by interlog; DO NOT EDIT."

const modulePath = "github.com/Aman-CERP/interlog"

// runtimeImports are always imported by generated files.
var runtimeImports = map[string]string{
	"calllog":   modulePath + "/pkg/calllog",
	"intercept": modulePath + "/pkg/intercept",
	"rules":     modulePath + "/pkg/rules",
}

//go:embed templates/interceptor.go.tmpl
var interceptorTemplate string

var tmpl = template.Must(template.New("interceptor").Parse(interceptorTemplate))

type importLine struct {
	Name string
	Path string
}

type ctorData struct {
	Name           string
	Params         []string
	Args           string
	ReturnsPointer bool
	ReturnsError   bool
}

type methodData struct {
	Var      string
	Name     string
	Key      string
	Severity string
	Params   string
	Args     string
	ArgNames []string
	Ctx      string
	Results  string
	Outs     string
	Err      bool
	Report   string
}

type ownerData struct {
	Package        string
	StdImports     []importLine
	Imports        []importLine
	Owner          string
	Wrapper        string
	TypeParamsDecl string
	TypeArgs       string
	Ctor           ctorData
	Methods        []methodData
}

// Render produces the formatted wrapper source for one owner.
func Render(pkg *registry.Package, owner registry.Owner, typeSuffix string) ([]byte, error) {
	if owner.Constructor == nil {
		return nil, ierrors.New(ierrors.ErrCodeConstructorMissing,
			fmt.Sprintf("%s has no usable constructor", owner.Name), nil)
	}
	methods := owner.Enabled()
	if len(methods) == 0 {
		return nil, ierrors.New(ierrors.ErrCodeInternal,
			fmt.Sprintf("%s has no enabled observable methods", owner.Name), nil)
	}

	data := ownerData{
		Package: pkg.Name,
		Owner:   owner.Name,
		Wrapper: owner.Name + typeSuffix,
		Ctor: ctorData{
			Name:           owner.Constructor.Name,
			Params:         paramDecls(owner.Constructor.Params),
			Args:           callArgs(owner.Constructor.Params),
			ReturnsPointer: owner.Constructor.ReturnsPointer,
			ReturnsError:   owner.Constructor.ReturnsError,
		},
	}
	if len(owner.TypeParams) > 0 {
		decls := make([]string, len(owner.TypeParams))
		names := make([]string, len(owner.TypeParams))
		for i, tp := range owner.TypeParams {
			decls[i] = tp.Name + " " + tp.Constraint
			names[i] = tp.Name
		}
		data.TypeParamsDecl = "[" + strings.Join(decls, ", ") + "]"
		data.TypeArgs = "[" + strings.Join(names, ", ") + "]"
	}

	var typeTexts []string
	for _, tp := range owner.TypeParams {
		typeTexts = append(typeTexts, tp.Constraint)
	}
	for _, p := range owner.Constructor.Params {
		typeTexts = append(typeTexts, p.Type)
	}

	needContext := false
	for _, m := range methods {
		md := methodData{
			Var:      "interlog" + owner.Name + m.Name,
			Name:     m.Name,
			Key:      owner.Key(m.Name),
			Severity: m.Severity.String(),
			Params:   strings.Join(paramDecls(m.Params), ", "),
			Args:     callArgs(m.Params),
			Ctx:      "context.Background()",
			Results:  resultDecl(m.Results),
		}
		for _, p := range m.Params {
			md.ArgNames = append(md.ArgNames, p.Name)
			typeTexts = append(typeTexts, p.Type)
		}
		typeTexts = append(typeTexts, m.Results...)
		if len(m.Params) > 0 && m.Params[0].Type == "context.Context" && !m.Params[0].Variadic {
			md.Ctx = m.Params[0].Name
		} else {
			needContext = true
		}

		values := m.Values()
		outs := make([]string, len(values))
		for i := range values {
			outs[i] = fmt.Sprintf("interlogR%d", i)
		}
		switch len(outs) {
		case 0:
			md.Report = "interlogCall.Done()"
		case 1:
			md.Report = "interlogCall.Returned(" + outs[0] + ")"
		default:
			md.Report = "interlogCall.Returned([]any{" + strings.Join(outs, ", ") + "})"
		}
		if m.ReturnsError() {
			md.Err = true
			outs = append(outs, "interlogErr")
		}
		md.Outs = strings.Join(outs, ", ")
		data.Methods = append(data.Methods, md)
	}

	std, other, err := resolveImports(pkg, typeTexts, needContext)
	if err != nil {
		return nil, err
	}
	data.StdImports, data.Imports = std, other

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, ierrors.New(ierrors.ErrCodeRender, "execute template", err).WithDetail("owner", owner.Name)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, ierrors.New(ierrors.ErrCodeRender, "format generated source", err).WithDetail("owner", owner.Name)
	}
	return src, nil
}

// resolveImports returns the standard library and other imports needed by
// the generated file, each sorted by path.
func resolveImports(pkg *registry.Package, typeTexts []string, needContext bool) ([]importLine, []importLine, error) {
	lines := make(map[string]importLine)
	for name, path := range runtimeImports {
		lines[name] = importLine{Path: path}
	}
	if needContext {
		lines["context"] = importLine{Path: "context"}
	}

	for _, text := range typeTexts {
		for _, q := range registry.Qualifiers(text) {
			imp, ok := pkg.ResolveImport(q)
			if !ok {
				return nil, nil, ierrors.New(ierrors.ErrCodeNotInterceptable,
					fmt.Sprintf("cannot resolve the import of package %q used in %q", q, text), nil)
			}
			line := importLine{Name: imp.Name, Path: imp.Path}
			if existing, ok := lines[q]; ok {
				if existing.Path != line.Path {
					return nil, nil, ierrors.New(ierrors.ErrCodeNotInterceptable,
						fmt.Sprintf("package name %q is used by both %s and %s", q, existing.Path, line.Path), nil)
				}
				continue
			}
			lines[q] = line
		}
	}

	var std, other []importLine
	for _, l := range lines {
		if isStdlib(l.Path) {
			std = append(std, l)
		} else {
			other = append(other, l)
		}
	}
	byPath := func(s []importLine) {
		sort.Slice(s, func(i, j int) bool { return s[i].Path < s[j].Path })
	}
	byPath(std)
	byPath(other)
	return std, other, nil
}

// isStdlib reports whether path looks like a standard library import: its
// first element has no dot.
func isStdlib(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

func paramDecls(params []registry.Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		if p.Variadic {
			out[i] = p.Name + " ..." + p.Type
		} else {
			out[i] = p.Name + " " + p.Type
		}
	}
	return out
}

func callArgs(params []registry.Param) string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
		if p.Variadic {
			out[i] += "..."
		}
	}
	return strings.Join(out, ", ")
}

func resultDecl(results []string) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return " " + results[0]
	default:
		return " (" + strings.Join(results, ", ") + ")"
	}
}

// FileName returns the generated file name for an owner, e.g. MyService
// becomes my_service_interlog.go.
func FileName(owner, suffix string) string {
	var b strings.Builder
	runes := []rune(owner)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String() + suffix
}
