// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package astx is the AST extractor (spec component C4): it parses source
// into a language-agnostic FileStructure, with a regex quick-scan fallback
// for languages without a wired grammar and for syntactically invalid
// source.
//
// Design principles (carried from the teacher's ast package):
//   - Language-agnostic: one FileStructure shape for every language.
//   - Concrete types only, no map[string]interface{} payloads.
//   - 1-indexed line numbers referring to the original blob.
package astx

import (
	"encoding/json"
	"fmt"

	"github.com/ctxengine/ctxengine/internal/detect"
)

// ElementKind is the closed set of code-element kinds spec §3 defines.
type ElementKind int

const (
	KindFunction ElementKind = iota
	KindMethod
	KindClass
	KindInterface
	KindType
	KindVariable
	KindImport
	KindExport
)

var elementKindNames = map[ElementKind]string{
	KindFunction:  "function",
	KindMethod:    "method",
	KindClass:     "class",
	KindInterface: "interface",
	KindType:      "type",
	KindVariable:  "variable",
	KindImport:    "import",
	KindExport:    "export",
}

func (k ElementKind) String() string {
	if s, ok := elementKindNames[k]; ok {
		return s
	}
	return "unknown"
}

func (k ElementKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ElementKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for kind, name := range elementKindNames {
			if name == s {
				*k = kind
				return nil
			}
		}
		return fmt.Errorf("unknown element kind %q", s)
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("ElementKind must be string or int: %w", err)
	}
	*k = ElementKind(i)
	return nil
}

// CodeElement is one parsed construct: a function, class, import, etc.
//
// Invariant: 1 <= StartLine <= EndLine. A method's Parent must name a class
// that also appears in FileStructure.Classes.
type CodeElement struct {
	Kind          ElementKind `json:"kind"`
	Name          string      `json:"name"`
	StartLine     int         `json:"start_line"`
	EndLine       int         `json:"end_line"`
	Signature     string      `json:"signature,omitempty"`
	Documentation string      `json:"documentation,omitempty"`
	Parent        string      `json:"parent,omitempty"`
	IsExported    bool        `json:"is_exported"`
	IsAsync       bool        `json:"is_async"`
}

// FileStructure is the parsed, typed index of a single source file.
//
// Invariant: every element's [StartLine,EndLine] lies within
// [1,TotalLines]. No two same-kind elements share both name and StartLine.
type FileStructure struct {
	Language    detect.Language `json:"language"`
	TotalLines  int             `json:"total_lines"`
	Functions   []CodeElement   `json:"functions"`
	Classes     []CodeElement   `json:"classes"`
	Interfaces  []CodeElement   `json:"interfaces"`
	Types       []CodeElement   `json:"types"`
	Variables   []CodeElement   `json:"variables"`
	Imports     []CodeElement   `json:"imports"`
	Exports     []CodeElement   `json:"exports"`
	ParseDegraded bool          `json:"parse_degraded,omitempty"`
}

// AllElements returns every element across all kind-buckets, in a stable
// order (functions, classes, interfaces, types, variables, imports,
// exports) — used by Extract/Search so callers don't need to know the
// bucket layout.
func (fs *FileStructure) AllElements() []CodeElement {
	out := make([]CodeElement, 0,
		len(fs.Functions)+len(fs.Classes)+len(fs.Interfaces)+len(fs.Types)+len(fs.Variables)+len(fs.Imports)+len(fs.Exports))
	out = append(out, fs.Functions...)
	out = append(out, fs.Classes...)
	out = append(out, fs.Interfaces...)
	out = append(out, fs.Types...)
	out = append(out, fs.Variables...)
	out = append(out, fs.Imports...)
	out = append(out, fs.Exports...)
	return out
}

// Validate checks the FileStructure invariants from spec §3.
func (fs *FileStructure) Validate() error {
	seen := map[string]bool{}
	for _, e := range fs.AllElements() {
		if e.StartLine < 1 || e.EndLine < e.StartLine || e.EndLine > fs.TotalLines {
			return fmt.Errorf("element %q has out-of-range lines [%d,%d] for %d total lines", e.Name, e.StartLine, e.EndLine, fs.TotalLines)
		}
		key := fmt.Sprintf("%d:%s:%d", e.Kind, e.Name, e.StartLine)
		if seen[key] {
			return fmt.Errorf("duplicate element %q (kind %s) at line %d", e.Name, e.Kind, e.StartLine)
		}
		seen[key] = true
	}
	return nil
}

// ElementTarget identifies the element Extract/Search should operate on.
type ElementTarget struct {
	Kind ElementKind
	Name string
}

// ElementRef is a search hit: the element plus its owning file.
type ElementRef struct {
	FilePath string      `json:"file_path"`
	Element  CodeElement `json:"element"`
}

// ExtractOptions configures Extract (spec §4.4).
type ExtractOptions struct {
	IncludeImports  bool
	IncludeComments bool
}

// ExtractResult is what Extract returns for a found element.
type ExtractResult struct {
	Content  string        `json:"content"`
	Elements []CodeElement `json:"elements"`
}
