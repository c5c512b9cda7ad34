package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_SetAndLookup(t *testing.T) {
	tree := NewTree()
	tree.Set("Log:Svc.Run:0", "a")
	tree.Set("LOG:svc.run:1", "b")

	n := tree.Lookup("log:SVC.RUN")
	require.NotNil(t, n)
	assert.Equal(t, "Svc.Run", n.Key())
	require.Len(t, n.Children(), 2)

	v, ok := tree.Lookup("Log:Svc.Run:1").Value()
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	assert.Nil(t, tree.Lookup("Log:Missing"))
	assert.Same(t, tree, tree.Lookup(""))
}

func TestLayered_LaterSourceWins(t *testing.T) {
	base := NewTree()
	base.Set("Log:Svc.Run:0", `"base0"`)
	base.Set("Log:Svc.Run:1", `"base1"`)
	base.Set("Log:Svc.Stop", `"stop"`)

	override := NewTree()
	override.Set("Log:Svc.Run:1", `"over1"`)

	layered := Layered{base, nil, override}
	reader := NewReader(layered)

	assert.Equal(t, []string{`"base0"`, `"over1"`}, texts(reader.Read("Svc.Run")))
	assert.Equal(t, []string{`"stop"`}, texts(reader.Read("Svc.Stop")))
	assert.Nil(t, layered.Lookup("Log:Other"))
}

func TestLayered_DoesNotModifySources(t *testing.T) {
	a := NewTree()
	a.Set("Log:X.Y", "1")
	b := NewTree()
	b.Set("Log:X.Y", "2")

	Layered{a, b}.Lookup("Log")

	v, _ := a.Lookup("Log:X.Y").Value()
	assert.Equal(t, "1", v)
}

func TestEnvSource(t *testing.T) {
	env := []string{
		"HOME=/root",
		`INTERLOG_Log__MyService.ConditionalLogging__0=1`,
		`interlog_log__MyService.ConditionalLogging__1=2`,
		`INTERLOG_Log__Cache[2].Get={"key":"a"}`,
		"INTERLOG_=ignored",
		"BROKEN",
	}

	src := NewEnvSource(DefaultEnvPrefix, env)
	reader := NewReader(src)

	assert.Equal(t, []string{"1", "2"}, texts(reader.Read("MyService.ConditionalLogging")))
	assert.Equal(t, []string{`{"key":"a"}`}, texts(reader.Read("Cache[2].Get")))
	assert.Nil(t, src.Lookup("HOME"))
}
