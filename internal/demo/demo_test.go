package demo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/interlog/internal/generate"
	"github.com/Aman-CERP/interlog/internal/registry"
	"github.com/Aman-CERP/interlog/pkg/calllog"
	"github.com/Aman-CERP/interlog/pkg/calllog/calllogtest"
	"github.com/Aman-CERP/interlog/pkg/rules"
)

// ruleReader builds a reader from method -> rule fragments.
func ruleReader(t *testing.T, set map[string][]string) rules.Reader {
	t.Helper()
	tree := rules.NewTree()
	for method, frags := range set {
		for i, frag := range frags {
			tree.Set("Log:"+method+":"+string(rune('0'+i)), frag)
		}
	}
	return rules.NewReader(tree)
}

func methodsOf(recs []calllog.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Method
	}
	return out
}

func TestWorker_NoRulesLogsEveryEnabledMethod(t *testing.T) {
	// Given: a wrapped service without any rules
	rec := &calllogtest.Recorder{}
	svc := NewMyServiceInterceptor(calllog.New(rec), nil, StaticDependency("test"))

	// When: the worker runs its sequence
	require.NoError(t, NewWorker(svc, nil).Execute(context.Background()))

	// Then: every enabled method is logged on call and return
	want := []string{
		"MyService.DoSomething",
		"MyService.DoSomethingElse",
		"MyService.ConditionalLogging",
		"MyService.ConditionalLogging",
		"MyService.ConditionalLogging",
		"MyService.ListReturnType",
		"MyService.Fetch",
	}
	assert.Equal(t, want, methodsOf(rec.Events(calllog.EventCall)))
	assert.Equal(t, want, methodsOf(rec.Events(calllog.EventReturn)))

	// And: the disabled method still ran but produced nothing
	assert.Equal(t, 1, svc.Calls("DisableLogging"))
	assert.NotContains(t, methodsOf(rec.Records()), "MyService.DisableLogging")
}

func TestMyServiceInterceptor_RecordsCarrySnapshotsAndSeverity(t *testing.T) {
	// Given: a wrapped service without rules
	rec := &calllogtest.Recorder{}
	svc := NewMyServiceInterceptor(calllog.New(rec), nil, StaticDependency("test"))

	// When: DoSomethingElse is called
	got := svc.DoSomethingElse(true, 3, []int{1, 2, 3})

	// Then: the result is unchanged and both records describe the call
	assert.Equal(t, 4, got)
	records := rec.Records()
	require.Len(t, records, 2)
	assert.Equal(t, `{"a":true,"b":3,"c":[1,2,3]}`, records[0].Parameters)
	assert.Equal(t, calllog.Warning, records[0].Severity)
	assert.True(t, records[1].HasValue)
	assert.Equal(t, "4", records[1].Value)
	assert.Equal(t, 1, svc.Calls("DoSomethingElse"))
}

func TestMyServiceInterceptor_ConditionalRules(t *testing.T) {
	// Given: rules selecting a=1 and a=2
	rec := &calllogtest.Recorder{}
	reader := ruleReader(t, map[string][]string{"MyService.ConditionalLogging": {"1", "2"}})
	svc := NewMyServiceInterceptor(calllog.New(rec), reader, StaticDependency("test"))

	// When: the method is called with 1, 2 and 3
	for _, a := range []int{1, 2, 3} {
		svc.ConditionalLogging(a)
	}

	// Then: only the selected calls are logged, but all three ran
	var params []string
	for _, r := range rec.Events(calllog.EventCall) {
		params = append(params, r.Parameters)
	}
	assert.Equal(t, []string{`{"a":1}`, `{"a":2}`}, params)
	assert.Len(t, rec.Events(calllog.EventReturn), 2)
	assert.Equal(t, 3, svc.Calls("ConditionalLogging"))
}

func TestMyServiceInterceptor_ObjectRuleSubsetMatch(t *testing.T) {
	tests := []struct {
		name   string
		a      bool
		logged bool
	}{
		{name: "matching field", a: true, logged: true},
		{name: "different field", a: false, logged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a rule naming only one of three parameters
			rec := &calllogtest.Recorder{}
			reader := ruleReader(t, map[string][]string{"MyService.DoSomethingElse": {`{"a": true}`}})
			svc := NewMyServiceInterceptor(calllog.New(rec), reader, StaticDependency("test"))

			// When: the method is called
			svc.DoSomethingElse(tt.a, 3, []int{1, 2, 3})

			// Then: the call is logged only when the named field matches
			assert.Equal(t, tt.logged, len(rec.Records()) == 2)
		})
	}
}

func TestMyServiceInterceptor_ListRule(t *testing.T) {
	// Given: a rule requiring 3 inside the list argument
	rec := &calllogtest.Recorder{}
	reader := ruleReader(t, map[string][]string{"MyService.ListReturnType": {`{"a": [3]}`}})
	svc := NewMyServiceInterceptor(calllog.New(rec), reader, StaticDependency("test"))

	// When: lists with and without 3 are passed
	svc.ListReturnType([]int{1, 2, 3})
	svc.ListReturnType([]int{1, 2})

	// Then: only the first call is logged, with its returned list
	returns := rec.Events(calllog.EventReturn)
	require.Len(t, returns, 1)
	assert.Equal(t, "[1,2,3]", returns[0].Value)
}

func TestMyServiceInterceptor_ErrorSuppressesReturnRecord(t *testing.T) {
	// Given: a wrapped service without rules
	rec := &calllogtest.Recorder{}
	svc := NewMyServiceInterceptor(calllog.New(rec), nil, StaticDependency("test"))

	// When: Fetch fails
	_, err := svc.Fetch(context.Background(), "missing")

	// Then: the error passes through and only the call record exists
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, rec.Events(calllog.EventCall), 1)
	assert.Empty(t, rec.Events(calllog.EventReturn))
	assert.Contains(t, rec.Records()[0].Parameters, `"id":"missing"`)
}

func TestMyServiceInterceptor_FetchReturnsValue(t *testing.T) {
	// Given: a rule matching one of two parameters
	rec := &calllogtest.Recorder{}
	reader := ruleReader(t, map[string][]string{"MyService.Fetch": {`{"id": "greeting"}`}})
	svc := NewMyServiceInterceptor(calllog.New(rec), reader, StaticDependency("demo"))

	// When: Fetch succeeds
	got, err := svc.Fetch(context.Background(), "greeting")

	// Then: the return record carries the value
	require.NoError(t, err)
	assert.Equal(t, "hello from demo", got)
	returns := rec.Events(calllog.EventReturn)
	require.Len(t, returns, 1)
	assert.Equal(t, `"hello from demo"`, returns[0].Value)
}

func TestCacheInterceptor_GenericKey(t *testing.T) {
	// Given: a wrapped cache with a rule on the generic key
	rec := &calllogtest.Recorder{}
	reader := ruleReader(t, map[string][]string{"Cache[2].Get": {`"hot"`}})
	cache, err := NewCacheInterceptor[string, string](calllog.New(rec), reader, 8)
	require.NoError(t, err)

	// When: two keys are stored and read
	cache.Put("hot", "1")
	cache.Put("cold", "2")
	v, ok := cache.Get("hot")
	cache.Get("cold")

	// Then: both puts are logged and only the selected get
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, []string{"Cache[2].Put", "Cache[2].Put", "Cache[2].Get"},
		methodsOf(rec.Events(calllog.EventCall)))
	returns := rec.Events(calllog.EventReturn)
	assert.Equal(t, `["1",true]`, returns[len(returns)-1].Value)
	assert.Equal(t, calllog.Trace, returns[len(returns)-1].Severity)
}

func TestNewCacheInterceptor_ConstructorError(t *testing.T) {
	// When: the cache size is invalid
	_, err := NewCacheInterceptor[string, int](nil, nil, 0)

	// Then: the constructor error is returned
	assert.Error(t, err)
}

func TestWorker_UsesCache(t *testing.T) {
	// Given: a plain service and a wrapped cache
	rec := &calllogtest.Recorder{}
	cache, err := NewCacheInterceptor[string, string](calllog.New(rec), nil, 4)
	require.NoError(t, err)

	// When: the worker runs
	require.NoError(t, NewWorker(NewMyService(StaticDependency("x")), cache).Execute(context.Background()))

	// Then: the greeting is cached after a miss
	v, ok := cache.Cache.Get("greeting")
	assert.True(t, ok)
	assert.Equal(t, "hello from x", v)
	assert.Equal(t, []string{"Cache[2].Get", "Cache[2].Put", "Cache[2].Get"},
		methodsOf(rec.Events(calllog.EventCall)))
}

func TestWorker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWorker(NewMyService(StaticDependency("x")), nil).Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeneratedFilesAreCurrent(t *testing.T) {
	// Given: the package sources
	pkg, err := registry.Scan(context.Background(), ".", registry.Options{})
	require.NoError(t, err)
	owners := pkg.Observable()
	require.Len(t, owners, 2)

	for _, owner := range owners {
		t.Run(owner.Name, func(t *testing.T) {
			// When: the owner is rendered again
			want, err := generate.Render(pkg, owner, "Interceptor")
			require.NoError(t, err)

			// Then: the checked-in file is identical
			got, err := os.ReadFile(generate.FileName(owner.Name, registry.DefaultGeneratedSuffix))
			require.NoError(t, err)
			assert.Equal(t, string(want), string(got))
		})
	}
}
