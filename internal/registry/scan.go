package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
)

// Options controls which files are scanned.
type Options struct {
	// IncludeTests also scans _test.go files.
	IncludeTests bool
	// GeneratedSuffix names files written by the generator; they are skipped.
	GeneratedSuffix string
}

// DefaultGeneratedSuffix is the file suffix of generated wrappers.
const DefaultGeneratedSuffix = "_interlog.go"

var generatedHeader = []byte("// Code generated ")

// reservedPrefix is used by generated identifiers.
const reservedPrefix = "interlog"

// reservedParams would shadow packages referenced by generated bodies.
var reservedParams = map[string]bool{"context": true, "intercept": true}

// Scan parses the Go files of dir and returns its observable methods.
// Every declaration that cannot be wrapped is reported; the returned error
// joins one *GenerationError per problem.
func Scan(ctx context.Context, dir string, opts Options) (*Package, error) {
	if opts.GeneratedSuffix == "" {
		opts.GeneratedSuffix = DefaultGeneratedSuffix
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ierrors.New(ierrors.ErrCodeFileNotFound, "read package directory", err).
			WithDetail("dir", dir)
	}

	var files []sourceFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, opts.GeneratedSuffix) {
			continue
		}
		if strings.HasSuffix(name, "_test.go") && !opts.IncludeTests {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, ierrors.New(ierrors.ErrCodeFileNotFound, "read source file", err).
				WithDetail("file", name)
		}
		if bytes.HasPrefix(data, generatedHeader) {
			continue
		}
		files = append(files, sourceFile{name: name, data: data})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	return scanFiles(ctx, dir, files)
}

type sourceFile struct {
	name string
	data []byte
}

// fileScan collects the raw declarations of one file.
type fileScan struct {
	file       string
	src        []byte
	pkg        string
	imports    []Import
	types      map[string][]TypeParam
	typeOrder  []string
	typeLines  map[string]int
	ctors      map[string]*Constructor // built while the tree is alive
	methods    []Method
	receivers  map[int][]string // method index -> receiver type argument names
	errs       []error
	dotImports bool
}

func scanFiles(ctx context.Context, dir string, files []sourceFile) (*Package, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(golang.GetLanguage())

	pkg := &Package{Dir: dir, Imports: make(map[string]Import)}
	types := make(map[string][]TypeParam)
	typeFiles := make(map[string]string)
	typeLines := make(map[string]int)
	order := make(map[string]int)
	ctors := make(map[string]*Constructor)
	owners := make(map[string]*Owner)
	var errs []error

	dotFiles := make(map[string]bool)
	type pendingMethod struct {
		m        Method
		recvArgs []string
	}
	var pending []pendingMethod

	for _, f := range files {
		tree, err := parser.ParseCtx(ctx, nil, f.data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
		fs := scanTree(f.name, f.data, tree.RootNode())
		// Nodes are invalid after Close; scanTree copies out everything needed.
		tree.Close()

		if pkg.Name == "" {
			pkg.Name = fs.pkg
		}
		pkg.Files = append(pkg.Files, f.name)
		errs = append(errs, fs.errs...)
		if fs.dotImports {
			dotFiles[f.name] = true
		}
		for _, imp := range fs.imports {
			if _, ok := pkg.Imports[imp.LocalName()]; !ok {
				pkg.Imports[imp.LocalName()] = imp
			}
		}
		for _, name := range fs.typeOrder {
			types[name] = fs.types[name]
			typeFiles[name] = f.name
			typeLines[name] = fs.typeLines[name]
			order[name] = len(order)
		}
		for name, c := range fs.ctors {
			ctors[name] = c
		}
		for i, m := range fs.methods {
			pending = append(pending, pendingMethod{m: m, recvArgs: fs.receivers[i]})
		}
	}

	for _, p := range pending {
		m := p.m
		tps, declared := types[m.Owner]
		if !declared {
			errs = append(errs, newGenerationError(ierrors.ErrCodeNotInterceptable, m.File, m.Line, m.Owner, m.Name,
				"receiver type is not declared in this package"))
			continue
		}
		o, ok := owners[m.Owner]
		if !ok {
			o = &Owner{Name: m.Owner, TypeParams: tps, File: typeFiles[m.Owner], Line: typeLines[m.Owner]}
			owners[m.Owner] = o
		}
		o.Methods = append(o.Methods, m)
		if m.Disabled {
			continue
		}
		if err := checkMethod(m, tps, p.recvArgs, dotFiles[m.File]); err != nil {
			errs = append(errs, err)
		}
	}

	for _, o := range owners {
		pkg.Owners = append(pkg.Owners, *o)
	}
	sortOwners(pkg.Owners, order)

	for i := range pkg.Owners {
		o := &pkg.Owners[i]
		if len(o.Enabled()) == 0 {
			continue
		}
		c, ok := ctors["New"+o.Name]
		if !ok {
			errs = append(errs, newGenerationError(ierrors.ErrCodeConstructorMissing, o.File, o.Line, o.Name, "",
				fmt.Sprintf("no constructor New%s in package %s", o.Name, pkg.Name)))
			continue
		}
		if err := checkConstructor(o, c); err != nil {
			errs = append(errs, err)
			continue
		}
		o.Constructor = c
	}

	if len(errs) > 0 {
		return pkg, errors.Join(errs...)
	}
	return pkg, nil
}

func scanTree(file string, src []byte, root *sitter.Node) *fileScan {
	fs := &fileScan{
		file:      file,
		src:       src,
		types:     make(map[string][]TypeParam),
		typeLines: make(map[string]int),
		ctors:     make(map[string]*Constructor),
		receivers: make(map[int][]string),
	}
	if root.HasError() {
		fs.errs = append(fs.errs, newGenerationError(ierrors.ErrCodeSourceInvalid, file, 0, "", "", "syntax error"))
		return fs
	}

	var comments []*sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if n.Type() == "comment" {
			if len(comments) > 0 && comments[len(comments)-1].EndPoint().Row+1 < n.StartPoint().Row {
				comments = nil
			}
			comments = append(comments, n)
			continue
		}

		var doc []*sitter.Node
		if len(comments) > 0 && comments[len(comments)-1].EndPoint().Row+1 == n.StartPoint().Row {
			doc = comments
		}
		comments = nil
		fs.visit(n, doc)
	}
	return fs
}

func (fs *fileScan) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(fs.src)
}

func (fs *fileScan) line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func (fs *fileScan) visit(n *sitter.Node, doc []*sitter.Node) {
	var directive string
	for _, c := range doc {
		if line := fs.text(c); isDirective(line) {
			directive = line
		}
	}

	if directive != "" && n.Type() != "method_declaration" && n.Type() != "function_declaration" {
		fs.errs = append(fs.errs, newGenerationError(ierrors.ErrCodeMarkerInvalid, fs.file, fs.line(n), "", "",
			"observe marker must precede a method declaration"))
	}

	switch n.Type() {
	case "package_clause":
		if id := n.NamedChild(0); id != nil {
			fs.pkg = fs.text(id)
		}
	case "import_declaration":
		fs.visitImports(n)
	case "type_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			spec := n.NamedChild(i)
			if spec.Type() != "type_spec" {
				continue
			}
			name := fs.text(spec.ChildByFieldName("name"))
			fs.types[name] = parseTypeParams(fs.text(spec.ChildByFieldName("type_parameters")))
			fs.typeOrder = append(fs.typeOrder, name)
			fs.typeLines[name] = fs.line(spec)
		}
	case "function_declaration":
		name := fs.text(n.ChildByFieldName("name"))
		if directive != "" {
			fs.errs = append(fs.errs, newGenerationError(ierrors.ErrCodeNotInterceptable, fs.file, fs.line(n), "", name,
				"observe marker on a function without a receiver"))
			return
		}
		if strings.HasPrefix(name, "New") {
			fs.ctors[name] = constructorFrom(fs, name, n)
		}
	case "method_declaration":
		if directive != "" {
			fs.visitMethod(n, directive)
		}
	}
}

func (fs *fileScan) visitImports(n *sitter.Node) {
	var specs []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "import_spec":
			specs = append(specs, c)
		case "import_spec_list":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if s := c.NamedChild(j); s.Type() == "import_spec" {
					specs = append(specs, s)
				}
			}
		}
	}

	for _, s := range specs {
		imp := Import{
			Name: fs.text(s.ChildByFieldName("name")),
			Path: unquoteImport(fs.text(s.ChildByFieldName("path"))),
		}
		switch imp.Name {
		case ".":
			fs.dotImports = true
			continue
		case "_":
			continue
		}
		fs.imports = append(fs.imports, imp)
	}
}

func (fs *fileScan) visitMethod(n *sitter.Node, directive string) {
	name := fs.text(n.ChildByFieldName("name"))
	line := fs.line(n)

	mk, err := parseMarker(directive)
	if err != nil {
		fs.errs = append(fs.errs, newGenerationError(ierrors.ErrCodeMarkerInvalid, fs.file, line, "", name, err.Error()))
		return
	}

	recv := fs.params(n.ChildByFieldName("receiver"))
	if len(recv) != 1 {
		fs.errs = append(fs.errs, newGenerationError(ierrors.ErrCodeNotInterceptable, fs.file, line, "", name,
			"method must have exactly one receiver"))
		return
	}
	owner, recvArgs := splitGeneric(strings.TrimPrefix(strings.TrimSpace(recv[0].Type), "*"))

	m := Method{
		Owner:    owner,
		Name:     name,
		Params:   fs.params(n.ChildByFieldName("parameters")),
		Results:  fs.results(n.ChildByFieldName("result")),
		Severity: mk.severity,
		Disabled: mk.disabled,
		File:     fs.file,
		Line:     line,
	}
	fs.receivers[len(fs.methods)] = recvArgs
	fs.methods = append(fs.methods, m)
}

// params flattens a parameter_list. Grouped names ("a, b int") become one
// Param each; an unnamed parameter has an empty Name.
func (fs *fileScan) params(list *sitter.Node) []Param {
	if list == nil {
		return nil
	}
	var out []Param
	for i := 0; i < int(list.NamedChildCount()); i++ {
		decl := list.NamedChild(i)
		typ := decl.ChildByFieldName("type")
		if typ == nil {
			continue
		}
		switch decl.Type() {
		case "parameter_declaration":
			var names []string
			for j := 0; j < int(decl.NamedChildCount()); j++ {
				c := decl.NamedChild(j)
				if (c.Type() == "identifier" || c.Type() == "blank_identifier") && c.StartByte() < typ.StartByte() {
					names = append(names, fs.text(c))
				}
			}
			if len(names) == 0 {
				names = []string{""}
			}
			for _, name := range names {
				out = append(out, Param{Name: name, Type: fs.text(typ)})
			}
		case "variadic_parameter_declaration":
			out = append(out, Param{
				Name:     fs.text(decl.ChildByFieldName("name")),
				Type:     fs.text(typ),
				Variadic: true,
			})
		}
	}
	return out
}

func (fs *fileScan) results(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	if n.Type() != "parameter_list" {
		return []string{fs.text(n)}
	}
	var out []string
	for _, p := range fs.params(n) {
		out = append(out, p.Type)
	}
	return out
}

func constructorFrom(fs *fileScan, name string, fn *sitter.Node) *Constructor {
	c := &Constructor{
		Name:   name,
		Params: fs.params(fn.ChildByFieldName("parameters")),
		line:   fs.line(fn),
		file:   fs.file,
	}
	for i := range c.Params {
		switch p := c.Params[i].Name; {
		case p == "" || p == "_":
			c.Params[i].Name = fmt.Sprintf("%sP%d", reservedPrefix, i)
		case strings.HasPrefix(p, reservedPrefix) && c.reservedParam == "":
			c.reservedParam = p
		}
	}

	results := fs.results(fn.ChildByFieldName("result"))
	if len(results) == 2 && results[1] == "error" {
		c.ReturnsError = true
		results = results[:1]
	}
	if len(results) != 1 {
		return c
	}
	ret := strings.TrimSpace(results[0])
	c.ReturnsPointer = strings.HasPrefix(ret, "*")
	c.returns, c.returnArgs = splitGeneric(strings.TrimPrefix(ret, "*"))
	c.typeParams = parseTypeParams(fs.text(fn.ChildByFieldName("type_parameters")))
	return c
}

// checkConstructor verifies that c builds o and that its type parameters
// line up with o's so they can be forwarded positionally.
func checkConstructor(o *Owner, c *Constructor) error {
	fail := func(reason string) error {
		return newGenerationError(ierrors.ErrCodeConstructorMissing, c.file, c.line, o.Name, "", reason)
	}

	if c.returns != o.Name {
		return fail(fmt.Sprintf("%s must return *%s or %s, optionally followed by error", c.Name, o.Name, o.Name))
	}
	if len(c.typeParams) != len(o.TypeParams) || len(c.returnArgs) != len(o.TypeParams) {
		return fail(fmt.Sprintf("%s must declare the %d type parameters of %s", c.Name, len(o.TypeParams), o.Name))
	}
	for i, tp := range c.typeParams {
		if c.returnArgs[i] != tp.Name {
			return fail(fmt.Sprintf("%s must return %s instantiated with its type parameters in order", c.Name, o.Name))
		}
	}
	if c.reservedParam != "" {
		return fail(fmt.Sprintf("parameter %s uses the reserved prefix %q", c.reservedParam, reservedPrefix))
	}
	return nil
}

func checkMethod(m Method, tps []TypeParam, recvArgs []string, dotImports bool) error {
	fail := func(reason string) error {
		return newGenerationError(ierrors.ErrCodeNotInterceptable, m.File, m.Line, m.Owner, m.Name, reason)
	}

	if len(recvArgs) != len(tps) {
		return fail(fmt.Sprintf("receiver has %d type arguments, %s declares %d", len(recvArgs), m.Owner, len(tps)))
	}
	for i, tp := range tps {
		if recvArgs[i] != tp.Name {
			return fail(fmt.Sprintf("receiver type parameter %s must be named %s as in the type declaration", recvArgs[i], tp.Name))
		}
	}
	if m.Name == m.Owner || strings.HasPrefix(m.Name, reservedPrefix) {
		return fail("method name collides with a wrapper field")
	}
	if dotImports {
		return fail("files with dot imports cannot be wrapped")
	}

	seen := make(map[string]bool)
	for _, p := range m.Params {
		switch {
		case p.Name == "" || p.Name == "_":
			return fail("every parameter must be named")
		case strings.HasPrefix(p.Name, reservedPrefix) || reservedParams[p.Name]:
			return fail(fmt.Sprintf("parameter name %s is reserved", p.Name))
		case seen[p.Name]:
			return fail(fmt.Sprintf("duplicate parameter %s", p.Name))
		}
		seen[p.Name] = true
	}
	return nil
}

// splitGeneric splits "Cache[K, V]" into "Cache" and ["K", "V"].
func splitGeneric(typ string) (string, []string) {
	name, args, ok := strings.Cut(typ, "[")
	if !ok {
		return strings.TrimSpace(typ), nil
	}
	args = strings.TrimSuffix(strings.TrimSpace(args), "]")
	var out []string
	for _, a := range splitTopLevel(args) {
		out = append(out, strings.TrimSpace(a))
	}
	return strings.TrimSpace(name), out
}

// parseTypeParams parses a type parameter list such as "[K comparable, V any]".
// Grouped names ("K, V any") share the following constraint.
func parseTypeParams(list string) []TypeParam {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil
	}
	list = strings.TrimSuffix(strings.TrimPrefix(list, "["), "]")

	var out []TypeParam
	var group []string
	for _, piece := range splitTopLevel(list) {
		piece = strings.TrimSpace(piece)
		fields := strings.Fields(piece)
		if len(fields) == 0 {
			continue
		}
		if len(fields) == 1 {
			group = append(group, fields[0])
			continue
		}
		constraint := strings.TrimSpace(piece[len(fields[0]):])
		for _, name := range append(group, fields[0]) {
			out = append(out, TypeParam{Name: name, Constraint: constraint})
		}
		group = nil
	}
	return out
}

// splitTopLevel splits s on commas that are not nested in brackets.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(s[start:]) != "" {
		out = append(out, s[start:])
	}
	return out
}
