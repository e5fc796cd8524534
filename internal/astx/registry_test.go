package astx

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctxengine/internal/detect"
)

const sampleGo = `package sample

import "fmt"

// Greet returns a greeting.
func Greet(name string) string {
	return fmt.Sprintf("hello %s", name)
}

type Widget struct {
	Name string
}

func (w *Widget) Describe() string {
	return w.Name
}

func unexportedHelper() {}
`

func TestRegistry_ParseGo(t *testing.T) {
	r := NewRegistry(0)
	fs, err := r.Parse(context.Background(), []byte(sampleGo), "sample.go", detect.LangGo)
	require.NoError(t, err)
	require.False(t, fs.ParseDegraded)

	var names []string
	for _, f := range fs.Functions {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "Greet")
	assert.Contains(t, names, "Describe")
	assert.Contains(t, names, "unexportedHelper")

	require.Len(t, fs.Classes, 1)
	assert.Equal(t, "Widget", fs.Classes[0].Name)
}

func TestRegistry_ParseGoExportedness(t *testing.T) {
	r := NewRegistry(0)
	fs, err := r.Parse(context.Background(), []byte(sampleGo), "sample.go", detect.LangGo)
	require.NoError(t, err)

	for _, f := range fs.Functions {
		switch f.Name {
		case "Greet", "Describe":
			assert.True(t, f.IsExported, f.Name)
		case "unexportedHelper":
			assert.False(t, f.IsExported, f.Name)
		}
	}
}

func TestRegistry_EmptyBlob(t *testing.T) {
	r := NewRegistry(0)
	fs, err := r.Parse(context.Background(), []byte(""), "empty.go", detect.LangGo)
	require.NoError(t, err)
	assert.Equal(t, 1, fs.TotalLines)
	assert.Empty(t, fs.AllElements())
}

func TestRegistry_UnwiredLanguageUsesQuickScan(t *testing.T) {
	r := NewRegistry(0)
	rust := "pub fn compute(x: i32) -> i32 {\n    x + 1\n}\n"
	fs, err := r.Parse(context.Background(), []byte(rust), "lib.rs", detect.LangRust)
	require.NoError(t, err)
	assert.False(t, fs.ParseDegraded, "absence of a grammar is not a degradation")
	require.Len(t, fs.Functions, 1)
	assert.Equal(t, "compute", fs.Functions[0].Name)
	assert.Equal(t, fs.Functions[0].StartLine, fs.Functions[0].EndLine)
}

func TestRegistry_InvalidUTF8Degrades(t *testing.T) {
	r := NewRegistry(0)
	bad := []byte{0xff, 0xfe, 0x00}
	fs, err := r.Parse(context.Background(), bad, "bad.go", detect.LangGo)
	require.NoError(t, err)
	assert.True(t, fs.ParseDegraded)
}

func TestRegistry_Extract(t *testing.T) {
	r := NewRegistry(0)
	result, ok := r.Extract(context.Background(), []byte(sampleGo), "sample.go", detect.LangGo,
		ElementTarget{Kind: KindFunction, Name: "Greet"}, ExtractOptions{})
	require.True(t, ok)
	assert.Contains(t, result.Content, "func Greet")
}

func TestRegistry_ExtractMissingElement(t *testing.T) {
	r := NewRegistry(0)
	_, ok := r.Extract(context.Background(), []byte(sampleGo), "sample.go", detect.LangGo,
		ElementTarget{Kind: KindFunction, Name: "DoesNotExist"}, ExtractOptions{})
	assert.False(t, ok)
}

func TestRegistry_SearchRanksExportedFirst(t *testing.T) {
	r := NewRegistry(0)
	hits := r.Search(context.Background(), []byte(sampleGo), "sample.go", detect.LangGo, "e")
	require.NotEmpty(t, hits)
	assert.True(t, hits[0].Element.IsExported)
}

func TestRegistry_ExtractGoMethodWithReceiver(t *testing.T) {
	source := `package sample

type User struct {
	Name string
}

func (u *User) Greet() string {
	return "hello " + u.Name
}
`
	r := NewRegistry(0)
	result, ok := r.Extract(context.Background(), []byte(source), "user.go", detect.LangGo,
		ElementTarget{Kind: KindMethod, Name: "Greet"}, ExtractOptions{})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(result.Content, "func (u *User) Greet() string {"), result.Content)
	require.Len(t, result.Elements, 1)
	assert.Equal(t, "User", result.Elements[0].Parent)
}

func TestFileStructure_Validate(t *testing.T) {
	fs := &FileStructure{TotalLines: 5, Functions: []CodeElement{{Name: "f", StartLine: 1, EndLine: 2}}}
	assert.NoError(t, fs.Validate())

	bad := &FileStructure{TotalLines: 5, Functions: []CodeElement{{Name: "f", StartLine: 1, EndLine: 10}}}
	assert.Error(t, bad.Validate())
}
