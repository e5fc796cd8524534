// Package detect implements the content detector (C2) and language
// detector (C3): classifying a blob's content type and, for code blobs,
// its programming language.
package detect

import (
	"path/filepath"
	"strings"
)

// Language is the closed set of languages the engine understands.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangSwift      Language = "swift"
	LangPHP        Language = "php"
	LangRuby       Language = "ruby"
	LangGeneric    Language = "generic"
)

// extensionMap is the closed path-extension -> Language table.
var extensionMap = map[string]Language{
	".ts":    LangTypeScript,
	".tsx":   LangTypeScript,
	".js":    LangJavaScript,
	".jsx":   LangJavaScript,
	".mjs":   LangJavaScript,
	".cjs":   LangJavaScript,
	".py":    LangPython,
	".pyw":   LangPython,
	".go":    LangGo,
	".rs":    LangRust,
	".java":  LangJava,
	".c":     LangC,
	".h":     LangC,
	".cpp":   LangCPP,
	".cc":    LangCPP,
	".cxx":   LangCPP,
	".hpp":   LangCPP,
	".cs":    LangCSharp,
	".swift": LangSwift,
	".php":   LangPHP,
	".rb":    LangRuby,
}

// FromPath maps a file path's extension to a Language using the closed
// extension table. Unknown extensions (including no extension) map to
// LangGeneric.
func FromPath(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionMap[ext]; ok {
		return lang
	}
	return LangGeneric
}

// FromContent sniffs a blob's language from its content when no reliable
// path hint is available: shebang lines map to the interpreter, and a
// handful of distinguishing keyword patterns break remaining ties.
func FromContent(blob string) Language {
	trimmed := strings.TrimLeft(blob, " \t\r\n")
	if strings.HasPrefix(trimmed, "#!") {
		firstLine := trimmed
		if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
			firstLine = trimmed[:idx]
		}
		switch {
		case strings.Contains(firstLine, "python"):
			return LangPython
		case strings.Contains(firstLine, "node"):
			return LangJavaScript
		case strings.Contains(firstLine, "ruby"):
			return LangRuby
		case strings.Contains(firstLine, "php"):
			return LangPHP
		}
	}

	switch {
	case strings.Contains(blob, "package main") || (strings.Contains(blob, "func ") && strings.Contains(blob, "package ")):
		return LangGo
	case strings.Contains(blob, "fn ") && (strings.Contains(blob, "let mut") || strings.Contains(blob, "impl ")):
		return LangRust
	case strings.Contains(blob, "def ") && !strings.Contains(blob, ";") && (strings.Contains(blob, "import ") || strings.Contains(blob, ":\n")):
		return LangPython
	case strings.Contains(blob, "interface ") && strings.Contains(blob, ": "):
		return LangTypeScript
	}
	return LangGeneric
}

// Resolve picks a Language given both a path hint and content, resolving
// ambiguity toward the path hint when both disagree and the path hint is
// not itself LangGeneric.
func Resolve(path, blob string) Language {
	fromPath := FromPath(path)
	if fromPath != LangGeneric {
		return fromPath
	}
	return FromContent(blob)
}
