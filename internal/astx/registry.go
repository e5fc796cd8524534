// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package astx

import (
	"context"
	"sort"
	"strings"

	"github.com/ctxengine/ctxengine/internal/detect"
)

// parser is the contract every full-parse implementation satisfies. A
// parser instance is created per call (tree-sitter parsers are not safe
// for concurrent reuse), so the registry holds factories, not instances.
type parser interface {
	Parse(ctx context.Context, content []byte, filePath string) (*FileStructure, error)
}

// Registry wires the closed language set to the parser that handles its
// full parse, falling back to QuickScan for everything else and for any
// full parse that errors.
//
// UNINIT -> READY -> WALKED is realized implicitly: a Registry with
// MaxFileSize == 0 is UNINIT-equivalent (NewRegistry fills the default,
// making it READY), Parse performs the walk, and a non-nil, Validate-clean
// FileStructure is WALKED/emitted.
type Registry struct {
	MaxFileSize int64
}

// NewRegistry builds a Registry with the given max full-parse file size
// (0 selects the default of 10MB).
func NewRegistry(maxFileSize int64) *Registry {
	return &Registry{MaxFileSize: clampSize(maxFileSize)}
}

func (r *Registry) factory(language detect.Language) parser {
	switch language {
	case detect.LangGo:
		return newGoParser(r.MaxFileSize)
	case detect.LangTypeScript:
		return newTypeScriptParser(r.MaxFileSize)
	case detect.LangJavaScript:
		return newJavaScriptParser(r.MaxFileSize)
	case detect.LangPython:
		return newPythonParser(r.MaxFileSize)
	default:
		return nil
	}
}

// Parse runs the full tree-sitter parse for languages with a wired
// grammar, degrading to QuickScan (with ParseDegraded=true) on any parse
// error. Languages without a grammar go straight to QuickScan, which is
// their only path and is not a degradation.
func (r *Registry) Parse(ctx context.Context, content []byte, filePath string, language detect.Language) (*FileStructure, error) {
	p := r.factory(language)
	if p == nil {
		return QuickScan(content, language), nil
	}
	fs, err := p.Parse(ctx, content, filePath)
	if err != nil {
		degraded := QuickScan(content, language)
		degraded.ParseDegraded = true
		return degraded, nil
	}
	return fs, nil
}

// Extract returns the source lines for one named element plus its leading
// comment/imports when requested, per spec §4.4. It returns (nil, false)
// when no matching element is found ("none").
func (r *Registry) Extract(ctx context.Context, content []byte, filePath string, language detect.Language, target ElementTarget, opts ExtractOptions) (*ExtractResult, bool) {
	fs, err := r.Parse(ctx, content, filePath, language)
	if err != nil {
		return nil, false
	}
	el, ok := findElement(fs, target)
	if !ok {
		return nil, false
	}

	lines := strings.Split(string(content), "\n")
	start := el.StartLine
	if opts.IncludeComments && el.Documentation != "" {
		commentLines := strings.Count(el.Documentation, "\n") + 1
		if start-commentLines >= 1 {
			start -= commentLines
		}
	}

	var b strings.Builder
	if opts.IncludeImports {
		for _, imp := range fs.Imports {
			if imp.StartLine-1 < len(lines) {
				b.WriteString(lines[imp.StartLine-1])
				b.WriteString("\n")
			}
		}
		if len(fs.Imports) > 0 {
			b.WriteString("\n")
		}
	}
	for i := start; i <= el.EndLine && i-1 < len(lines); i++ {
		if i < 1 {
			continue
		}
		b.WriteString(lines[i-1])
		b.WriteString("\n")
	}

	return &ExtractResult{Content: strings.TrimRight(b.String(), "\n"), Elements: []CodeElement{el}}, true
}

func findElement(fs *FileStructure, target ElementTarget) (CodeElement, bool) {
	for _, e := range fs.AllElements() {
		if e.Kind == target.Kind && e.Name == target.Name {
			return e, true
		}
	}
	return CodeElement{}, false
}

// Search ranks elements whose name contains query (case-insensitive),
// ties broken by exported-first, per spec §4.4.
func (r *Registry) Search(ctx context.Context, content []byte, filePath string, language detect.Language, query string) []ElementRef {
	fs, err := r.Parse(ctx, content, filePath, language)
	if err != nil {
		return nil
	}
	q := strings.ToLower(query)
	var hits []ElementRef
	for _, e := range fs.AllElements() {
		if q != "" && !strings.Contains(strings.ToLower(e.Name), q) {
			continue
		}
		hits = append(hits, ElementRef{FilePath: filePath, Element: e})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return boolRank(hits[i].Element.IsExported) < boolRank(hits[j].Element.IsExported)
	})
	return hits
}

func boolRank(exported bool) int {
	if exported {
		return 0
	}
	return 1
}
