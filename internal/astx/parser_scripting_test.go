package astx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctxengine/internal/detect"
)

const samplePython = `import os


def public_fn(x):
    return x + 1


def _private_fn():
    pass


class Widget:
    def method_one(self):
        return 1

    def _hidden(self):
        return 2
`

func TestPythonParser_ExportRule(t *testing.T) {
	p := newPythonParser(0)
	fs, err := p.Parse(context.Background(), []byte(samplePython), "sample.py")
	require.NoError(t, err)

	byName := map[string]CodeElement{}
	for _, f := range fs.Functions {
		byName[f.Name] = f
	}
	assert.True(t, byName["public_fn"].IsExported)
	assert.False(t, byName["_private_fn"].IsExported)
	assert.False(t, byName["_hidden"].IsExported)
	assert.Equal(t, "Widget", byName["method_one"].Parent)
}

const sampleTS = `import { Foo } from "./foo";

export function doThing(x: number): number {
  return x + 1;
}

export class Service {
  async run(): Promise<void> {}
}

interface Shape {
  area(): number;
}
`

func TestTypeScriptParser_ExportsAndClasses(t *testing.T) {
	p := newTypeScriptParser(0)
	fs, err := p.Parse(context.Background(), []byte(sampleTS), "sample.ts")
	require.NoError(t, err)

	require.Len(t, fs.Classes, 1)
	assert.Equal(t, "Service", fs.Classes[0].Name)
	require.Len(t, fs.Interfaces, 1)
	assert.Equal(t, "Shape", fs.Interfaces[0].Name)

	var run CodeElement
	for _, f := range fs.Functions {
		if f.Name == "run" {
			run = f
		}
	}
	assert.Equal(t, "Service", run.Parent)
	assert.True(t, run.IsAsync)
}

func TestRegistry_ParsePythonViaRegistry(t *testing.T) {
	r := NewRegistry(0)
	fs, err := r.Parse(context.Background(), []byte(samplePython), "sample.py", detect.LangPython)
	require.NoError(t, err)
	assert.False(t, fs.ParseDegraded)
	assert.NotEmpty(t, fs.Functions)
}
