package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
	"github.com/Aman-CERP/interlog/pkg/calllog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

const serviceSrc = `package demo

import (
	"context"
	yaml "gopkg.in/yaml.v3"
	"time"
)

// Service does things.
type Service struct {
	prefix string
}

// NewService builds a Service.
func NewService(prefix string, _ int) *Service {
	return &Service{prefix: prefix}
}

// DoSomething runs.
//
//interlog:observe
func (s *Service) DoSomething() {}

//interlog:observe severity=information
func (s *Service) DoSomethingElse(a bool, b int, c []int) int { return 4 }

//interlog:observe disabled
func (s *Service) DisableLogging() {}

//interlog:observe severity=Warn disabled=false
func (s *Service) Wait(ctx context.Context, d time.Duration, tags ...string) (string, error) {
	return "", nil
}

//interlog:observe severity=Critical
func (s Service) Pair(x, y int) (int, int, error) { return x, y, nil }

func (s *Service) Plain() {}

var _ = yaml.Marshal
`

const cacheSrc = `package demo

type Cache[K comparable, V any] struct {
	items map[K]V
}

func NewCache[K comparable, V any](size int) (*Cache[K, V], error) {
	return &Cache[K, V]{items: make(map[K]V, size)}, nil
}

//interlog:observe severity=Trace
func (c *Cache[K, V]) Put(key K, value V) {
	c.items[key] = value
}

//interlog:observe
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.items[key]
	return v, ok
}
`

func TestScan_CollectsObservableMethods(t *testing.T) {
	// Given: a package with a plain and a generic owner
	dir := writePackage(t, map[string]string{
		"service.go":        serviceSrc,
		"cache.go":          cacheSrc,
		"cache_interlog.go": "// Code generated by interlog; DO NOT EDIT.\n\npackage demo\n",
		"service_test.go":   "package demo\n",
		"notes.txt":         "ignored",
	})

	// When: scanning
	pkg, err := Scan(context.Background(), dir, Options{})

	// Then: both owners are found in declaration order
	require.NoError(t, err)
	assert.Equal(t, "demo", pkg.Name)
	assert.Equal(t, []string{"cache.go", "service.go"}, pkg.Files)
	require.Len(t, pkg.Owners, 2)

	cache := pkg.Owners[0]
	assert.Equal(t, "Cache", cache.Name)
	assert.Equal(t, []TypeParam{{Name: "K", Constraint: "comparable"}, {Name: "V", Constraint: "any"}}, cache.TypeParams)
	require.NotNil(t, cache.Constructor)
	assert.True(t, cache.Constructor.ReturnsPointer)
	assert.True(t, cache.Constructor.ReturnsError)
	assert.Equal(t, []Param{{Name: "size", Type: "int"}}, cache.Constructor.Params)
	assert.Equal(t, "Cache[2].Get", cache.Key("Get"))

	require.Len(t, cache.Methods, 2)
	assert.Equal(t, "Put", cache.Methods[0].Name)
	assert.Equal(t, calllog.Trace, cache.Methods[0].Severity)
	assert.Equal(t, []Param{{Name: "key", Type: "K"}, {Name: "value", Type: "V"}}, cache.Methods[0].Params)
	assert.Equal(t, []string{"V", "bool"}, cache.Methods[1].Results)

	svc := pkg.Owners[1]
	assert.Equal(t, "Service", svc.Name)
	assert.Equal(t, "Service.DoSomething", svc.Key("DoSomething"))
	assert.Equal(t, []Param{{Name: "prefix", Type: "string"}, {Name: "interlogP1", Type: "int"}}, svc.Constructor.Params)
	assert.False(t, svc.Constructor.ReturnsError)

	names := make([]string, 0, len(svc.Methods))
	for _, m := range svc.Methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"DoSomething", "DoSomethingElse", "DisableLogging", "Wait", "Pair"}, names)
	assert.Len(t, svc.Enabled(), 4)

	assert.Equal(t, calllog.Debug, svc.Methods[0].Severity)
	assert.Equal(t, calllog.Information, svc.Methods[1].Severity)
	assert.Equal(t, []string{"int"}, svc.Methods[1].Results)
	assert.True(t, svc.Methods[2].Disabled)

	wait := svc.Methods[3]
	assert.Equal(t, calllog.Warning, wait.Severity)
	assert.False(t, wait.Disabled)
	assert.Equal(t, Param{Name: "tags", Type: "string", Variadic: true}, wait.Params[2])
	assert.True(t, wait.ReturnsError())
	assert.Equal(t, []string{"string"}, wait.Values())

	pair := svc.Methods[4]
	assert.Equal(t, []Param{{Name: "x", Type: "int"}, {Name: "y", Type: "int"}}, pair.Params)
	assert.Equal(t, []string{"int", "int"}, pair.Values())

	assert.Equal(t, Import{Name: "yaml", Path: "gopkg.in/yaml.v3"}, pkg.Imports["yaml"])
	assert.Equal(t, "time", pkg.Imports["time"].LocalName())
	assert.Len(t, pkg.Observable(), 2)
	assert.Equal(t, 7, pkg.MethodCount())
}

func TestScan_IncludeTests(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"fake_test.go": `package demo

type Fake struct{}

func NewFake() Fake { return Fake{} }

//interlog:observe
func (f *Fake) Call(n int) {}
`,
	})

	pkg, err := Scan(context.Background(), dir, Options{})
	require.NoError(t, err)
	assert.Empty(t, pkg.Owners)

	pkg, err = Scan(context.Background(), dir, Options{IncludeTests: true})
	require.NoError(t, err)
	require.Len(t, pkg.Owners, 1)
	assert.False(t, pkg.Owners[0].Constructor.ReturnsPointer)
}

func TestScan_DisabledOnlyOwnerNeedsNoConstructor(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"quiet.go": `package demo

type Quiet struct{}

//interlog:observe disabled=true
func (q *Quiet) Hush(_ int) {}
`,
	})

	pkg, err := Scan(context.Background(), dir, Options{})

	require.NoError(t, err)
	require.Len(t, pkg.Owners, 1)
	assert.Empty(t, pkg.Observable())
	assert.Nil(t, pkg.Owners[0].Constructor)
}

func TestScan_GenerationErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantCode string
		wantMsg  string
	}{
		{
			name: "missing constructor",
			src: `package demo
type Svc struct{}
//interlog:observe
func (s *Svc) Run() {}
`,
			wantCode: ierrors.ErrCodeConstructorMissing,
			wantMsg:  "no constructor NewSvc",
		},
		{
			name: "constructor returns another type",
			src: `package demo
type Svc struct{}
type Other struct{}
func NewSvc() *Other { return nil }
//interlog:observe
func (s *Svc) Run() {}
`,
			wantCode: ierrors.ErrCodeConstructorMissing,
			wantMsg:  "must return *Svc",
		},
		{
			name: "generic constructor arity",
			src: `package demo
type Box[T any] struct{}
func NewBox() *Box[int] { return nil }
//interlog:observe
func (b *Box[T]) Put(v T) {}
`,
			wantCode: ierrors.ErrCodeConstructorMissing,
			wantMsg:  "type parameters",
		},
		{
			name: "function without receiver",
			src: `package demo
//interlog:observe
func Run() {}
`,
			wantCode: ierrors.ErrCodeNotInterceptable,
			wantMsg:  "without a receiver",
		},
		{
			name: "receiver declared elsewhere",
			src: `package demo
type Alias = struct{}
//interlog:observe
func (a *Missing) Run() {}
`,
			wantCode: ierrors.ErrCodeNotInterceptable,
			wantMsg:  "not declared in this package",
		},
		{
			name: "unnamed parameter",
			src: `package demo
type Svc struct{}
func NewSvc() *Svc { return nil }
//interlog:observe
func (s *Svc) Run(int) {}
`,
			wantCode: ierrors.ErrCodeNotInterceptable,
			wantMsg:  "must be named",
		},
		{
			name: "blank parameter",
			src: `package demo
type Svc struct{}
func NewSvc() *Svc { return nil }
//interlog:observe
func (s *Svc) Run(_ string) {}
`,
			wantCode: ierrors.ErrCodeNotInterceptable,
			wantMsg:  "must be named",
		},
		{
			name: "reserved parameter",
			src: `package demo
type Svc struct{}
func NewSvc() *Svc { return nil }
//interlog:observe
func (s *Svc) Run(intercept int) {}
`,
			wantCode: ierrors.ErrCodeNotInterceptable,
			wantMsg:  "reserved",
		},
		{
			name: "renamed receiver type parameter",
			src: `package demo
type Box[T any] struct{}
func NewBox[T any]() *Box[T] { return nil }
//interlog:observe
func (b *Box[X]) Put(v X) {}
`,
			wantCode: ierrors.ErrCodeNotInterceptable,
			wantMsg:  "must be named T",
		},
		{
			name: "unknown marker option",
			src: `package demo
type Svc struct{}
func NewSvc() *Svc { return nil }
//interlog:observe level=debug
func (s *Svc) Run() {}
`,
			wantCode: ierrors.ErrCodeMarkerInvalid,
			wantMsg:  "unknown option",
		},
		{
			name: "unknown severity",
			src: `package demo
type Svc struct{}
func NewSvc() *Svc { return nil }
//interlog:observe severity=loud
func (s *Svc) Run() {}
`,
			wantCode: ierrors.ErrCodeMarkerInvalid,
			wantMsg:  "invalid severity",
		},
		{
			name: "marker on a type",
			src: `package demo
//interlog:observe
type Svc struct{}
`,
			wantCode: ierrors.ErrCodeMarkerInvalid,
			wantMsg:  "must precede a method",
		},
		{
			name: "syntax error",
			src: `package demo
func (s *Svc Run() {
`,
			wantCode: ierrors.ErrCodeSourceInvalid,
			wantMsg:  "syntax error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePackage(t, map[string]string{"svc.go": tt.src})

			_, err := Scan(context.Background(), dir, Options{})

			require.Error(t, err)
			var genErr *GenerationError
			require.True(t, errors.As(err, &genErr), "got %v", err)
			assert.Equal(t, tt.wantCode, genErr.Code)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, tt.wantCode, ierrors.GetCode(err))
		})
	}
}

func TestScan_ReportsEveryProblem(t *testing.T) {
	dir := writePackage(t, map[string]string{"svc.go": `package demo
type Svc struct{}
//interlog:observe
func (s *Svc) Run(int) {}
//interlog:observe severity=loud
func (s *Svc) Stop() {}
`})

	_, err := Scan(context.Background(), dir, Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be named")
	assert.Contains(t, err.Error(), "invalid severity")
	assert.Contains(t, err.Error(), "no constructor NewSvc")
}

func TestScan_MissingDirectory(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	assert.Equal(t, ierrors.ErrCodeFileNotFound, ierrors.GetCode(err))
}

func TestGenerationError_Message(t *testing.T) {
	err := newGenerationError(ierrors.ErrCodeNotInterceptable, "svc.go", 12, "Svc", "Run", "every parameter must be named")
	assert.Equal(t, "svc.go:12: Svc.Run: every parameter must be named", err.Error())
	assert.Equal(t, "svc.go", err.ierr.Details["file"])

	err = newGenerationError(ierrors.ErrCodeSourceInvalid, "svc.go", 0, "", "", "syntax error")
	assert.Equal(t, "svc.go:0: syntax error", err.Error())
}

func TestScan_ConstructorFromAnotherFile(t *testing.T) {
	// Given: constructors declared apart from their types, followed by more files
	files := map[string]string{
		"a_types.go": "package demo\n\ntype Store[K comparable] struct{}\n\ntype Queue struct{}\n",
		"b_ctors.go": `package demo

import "context"

func NewQueue(ctx context.Context, name string, sizes ...int) (Queue, error) {
	return Queue{}, nil
}

func NewStore[K comparable](cap int) *Store[K] {
	return &Store[K]{}
}
`,
		"c_methods.go": `package demo

//interlog:observe
func (q Queue) Push(v string) error { return nil }

//interlog:observe severity=Error
func (s *Store[K]) Has(key K) bool { return false }
`,
	}
	for i := range 10 {
		files[fmt.Sprintf("d_filler%d.go", i)] = fmt.Sprintf("package demo\n\nfunc NewFiller%d(x, y int) {}\n", i)
	}
	dir := writePackage(t, files)

	for range 5 {
		// When: scanning repeatedly
		pkg, err := Scan(context.Background(), dir, Options{})

		// Then: constructor details survive the per-file parse
		require.NoError(t, err)
		require.Len(t, pkg.Owners, 2)

		store, queue := pkg.Owners[0], pkg.Owners[1]
		require.NotNil(t, store.Constructor)
		assert.Equal(t, "NewStore", store.Constructor.Name)
		assert.Equal(t, []Param{{Name: "cap", Type: "int"}}, store.Constructor.Params)
		assert.True(t, store.Constructor.ReturnsPointer)
		assert.Equal(t, []TypeParam{{Name: "K", Constraint: "comparable"}}, store.Constructor.typeParams)
		assert.Equal(t, "b_ctors.go", store.Constructor.file)
		assert.Equal(t, 9, store.Constructor.line)

		require.NotNil(t, queue.Constructor)
		assert.False(t, queue.Constructor.ReturnsPointer)
		assert.True(t, queue.Constructor.ReturnsError)
		assert.Equal(t, []Param{
			{Name: "ctx", Type: "context.Context"},
			{Name: "name", Type: "string"},
			{Name: "sizes", Type: "int", Variadic: true},
		}, queue.Constructor.Params)
	}
}
