// Package registry scans Go packages for methods marked observable.
//
// A method is observable when its doc comment carries a directive line:
//
//	//interlog:observe severity=Information
//	func (s *Service) Run(ctx context.Context, id string) error
//
// Options are severity (Trace, Debug, Information, Warning, Error,
// Critical; default Debug) and disabled (default false). The registry
// records owners, their constructors and every observable method, and
// rejects declarations that cannot be wrapped.
package registry

import (
	"sort"
	"strings"

	"github.com/Aman-CERP/interlog/pkg/calllog"
	"github.com/Aman-CERP/interlog/pkg/intercept"
)

// Directive marks an observable method.
const Directive = "//interlog:observe"

// Param is one declared parameter.
type Param struct {
	Name string
	// Type is the declared type text; for a variadic parameter it is the
	// element type.
	Type     string
	Variadic bool
}

// TypeParam is one type parameter of a generic owner.
type TypeParam struct {
	Name       string
	Constraint string
}

// Method is an observable method.
type Method struct {
	Owner    string
	Name     string
	Params   []Param
	Results  []string
	Severity calllog.Severity
	Disabled bool
	File     string
	Line     int
}

// ReturnsError reports whether the last result is error.
func (m Method) ReturnsError() bool {
	return len(m.Results) > 0 && m.Results[len(m.Results)-1] == "error"
}

// Values returns the results that are logged, i.e. all results except a
// trailing error.
func (m Method) Values() []string {
	if m.ReturnsError() {
		return m.Results[:len(m.Results)-1]
	}
	return m.Results
}

// Constructor is the New<Owner> function forwarded by the wrapper.
type Constructor struct {
	Name           string
	Params         []Param
	ReturnsPointer bool
	ReturnsError   bool

	returns    string
	returnArgs []string
	typeParams []TypeParam
	// reservedParam is the first parameter name clashing with generated
	// identifiers.
	reservedParam string
	file          string
	line          int
}

// Owner is a type declaring observable methods.
type Owner struct {
	Name        string
	TypeParams  []TypeParam
	Constructor *Constructor
	// Methods holds every observable method, disabled ones included, in
	// source order.
	Methods []Method
	File    string
	Line    int
}

// Enabled returns the methods that get an override.
func (o Owner) Enabled() []Method {
	var out []Method
	for _, m := range o.Methods {
		if !m.Disabled {
			out = append(out, m)
		}
	}
	return out
}

// Key returns the configuration key of one of o's methods.
func (o Owner) Key(method string) string {
	return intercept.Key(o.Name, len(o.TypeParams), method)
}

// Import is one import of the scanned package.
type Import struct {
	// Name is the explicit alias, empty when the package name is used.
	Name string
	Path string
}

// Package is the scan result for one directory.
type Package struct {
	Name string
	Dir  string
	// Imports maps the local name used in source to its import.
	Imports map[string]Import
	Owners  []Owner
	Files   []string
}

// ResolveImport finds the import referenced by qualifier. When no import is
// known under that name, an import whose last path element contains it is
// used, which covers paths like ".../golang-lru/v2" for package lru.
func (p *Package) ResolveImport(qualifier string) (Import, bool) {
	if imp, ok := p.Imports[qualifier]; ok {
		return imp, true
	}
	for _, imp := range p.Imports {
		if imp.Name != "" {
			continue
		}
		elems := strings.Split(imp.Path, "/")
		last := elems[len(elems)-1]
		if len(elems) > 1 && versionElem.MatchString(last) {
			last = elems[len(elems)-2]
		}
		if strings.Contains(last, qualifier) {
			return Import{Name: qualifier, Path: imp.Path}, true
		}
	}
	return Import{}, false
}

// Observable returns the owners with at least one enabled method.
func (p *Package) Observable() []Owner {
	var out []Owner
	for _, o := range p.Owners {
		if len(o.Enabled()) > 0 {
			out = append(out, o)
		}
	}
	return out
}

// MethodCount returns the number of observable methods, disabled included.
func (p *Package) MethodCount() int {
	n := 0
	for _, o := range p.Owners {
		n += len(o.Methods)
	}
	return n
}

func sortOwners(owners []Owner, order map[string]int) {
	sort.SliceStable(owners, func(i, j int) bool {
		return order[owners[i].Name] < order[owners[j].Name]
	})
}
