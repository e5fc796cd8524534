package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromPath_KnownExtensions(t *testing.T) {
	assert.Equal(t, LangGo, FromPath("main.go"))
	assert.Equal(t, LangPython, FromPath("script.py"))
	assert.Equal(t, LangTypeScript, FromPath("component.tsx"))
	assert.Equal(t, LangGeneric, FromPath("README"))
}

func TestFromContent_ShebangOverridesKeywords(t *testing.T) {
	blob := "#!/usr/bin/env python3\nimport sys\ndef main():\n    pass\n"
	assert.Equal(t, LangPython, FromContent(blob))
}

func TestFromContent_GoKeywords(t *testing.T) {
	blob := "package main\n\nfunc main() {}\n"
	assert.Equal(t, LangGo, FromContent(blob))
}

func TestFromContent_UnrecognizedIsGeneric(t *testing.T) {
	assert.Equal(t, LangGeneric, FromContent("just some plain text"))
}

func TestResolve_PathWinsOverContent(t *testing.T) {
	assert.Equal(t, LangGo, Resolve("main.go", "not really go code"))
}

func TestResolve_FallsBackToContentWhenPathUnknown(t *testing.T) {
	assert.Equal(t, LangGo, Resolve("snippet.txt", "package main\n\nfunc main() {}\n"))
}
