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
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/ctxengine/ctxengine/internal/detect"
)

// tsLikeParser covers TypeScript and JavaScript, whose tree-sitter
// grammars share node-type names for the constructs this extractor cares
// about (function_declaration, class_declaration, method_definition,
// interface_declaration — the last absent from JS, which is fine, it
// simply never matches).
type tsLikeParser struct {
	lang        detect.Language
	grammar     func() *sitter.Language
	maxFileSize int64
}

func newTypeScriptParser(maxFileSize int64) *tsLikeParser {
	return &tsLikeParser{lang: detect.LangTypeScript, grammar: typescript.GetLanguage, maxFileSize: clampSize(maxFileSize)}
}

func newJavaScriptParser(maxFileSize int64) *tsLikeParser {
	return &tsLikeParser{lang: detect.LangJavaScript, grammar: javascript.GetLanguage, maxFileSize: clampSize(maxFileSize)}
}

func clampSize(n int64) int64 {
	if n <= 0 {
		return defaultMaxFileSize
	}
	return n
}

func (p *tsLikeParser) Parse(ctx context.Context, content []byte, filePath string) (*FileStructure, error) {
	if int64(len(content)) > p.maxFileSize {
		return nil, ErrFileTooLarge
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidContent
	}

	parser := sitter.NewParser()
	parser.SetLanguage(p.grammar())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned nil root node")
	}

	fs := &FileStructure{Language: p.lang, TotalLines: countLines(content)}
	p.walk(root, content, fs, "")

	if err := fs.Validate(); err != nil {
		return nil, fmt.Errorf("result validation failed: %w", err)
	}
	return fs, nil
}

func (p *tsLikeParser) walk(n *sitter.Node, content []byte, fs *FileStructure, enclosingClass string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "import_statement":
			p.extractImport(child, content, fs)
		case "export_statement":
			p.extractExport(child, content, fs, enclosingClass)
		case "function_declaration", "generator_function_declaration":
			p.extractFunction(child, content, fs, false, enclosingClass)
		case "class_declaration":
			p.extractClass(child, content, fs, false)
		case "interface_declaration":
			p.extractInterface(child, content, fs, false)
		case "type_alias_declaration":
			p.extractTypeAlias(child, content, fs, false)
		case "lexical_declaration", "variable_declaration":
			p.extractVariables(child, content, fs, false)
		default:
			p.walk(child, content, fs, enclosingClass)
		}
	}
}

func (p *tsLikeParser) extractImport(node *sitter.Node, content []byte, fs *FileStructure) {
	start, end := lineOf(node)
	text := nodeText(node, content)
	name := strings.TrimSpace(text)
	fs.Imports = append(fs.Imports, CodeElement{Kind: KindImport, Name: truncate(name, 120), StartLine: start, EndLine: end, IsExported: true})
}

func (p *tsLikeParser) extractExport(node *sitter.Node, content []byte, fs *FileStructure, enclosingClass string) {
	exported := true
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "function_declaration", "generator_function_declaration":
			p.extractFunction(child, content, fs, exported, enclosingClass)
		case "class_declaration":
			p.extractClass(child, content, fs, exported)
		case "interface_declaration":
			p.extractInterface(child, content, fs, exported)
		case "type_alias_declaration":
			p.extractTypeAlias(child, content, fs, exported)
		case "lexical_declaration", "variable_declaration":
			p.extractVariables(child, content, fs, true)
		}
	}
	start, end := lineOf(node)
	fs.Exports = append(fs.Exports, CodeElement{Kind: KindExport, Name: exportName(node, content), StartLine: start, EndLine: end, IsExported: true})
}

func exportName(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if name := fieldByName(child, "name"); name != nil {
			return nodeText(name, content)
		}
	}
	return "default"
}

func (p *tsLikeParser) extractFunction(node *sitter.Node, content []byte, fs *FileStructure, exported bool, parent string) {
	name := childFieldText(node, content, "name")
	if name == "" {
		return
	}
	start, end := lineOf(node)
	fs.Functions = append(fs.Functions, CodeElement{
		Kind: KindFunction, Name: name, StartLine: start, EndLine: end,
		Signature: signatureLine(node, content), Parent: parent, IsExported: exported, IsAsync: isAsync(node, content),
	})
}

func (p *tsLikeParser) extractClass(node *sitter.Node, content []byte, fs *FileStructure, exported bool) {
	name := childFieldText(node, content, "name")
	if name == "" {
		return
	}
	start, end := lineOf(node)
	fs.Classes = append(fs.Classes, CodeElement{
		Kind: KindClass, Name: name, StartLine: start, EndLine: end, Signature: signatureLine(node, content), IsExported: exported,
	})

	body := fieldByName(node, "body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		if member.Type() != "method_definition" {
			continue
		}
		mName := childFieldText(member, content, "name")
		if mName == "" {
			continue
		}
		mStart, mEnd := lineOf(member)
		fs.Functions = append(fs.Functions, CodeElement{
			Kind: KindMethod, Name: mName, StartLine: mStart, EndLine: mEnd,
			Signature: signatureLine(member, content), Parent: name, IsAsync: isAsync(member, content),
		})
	}
}

func (p *tsLikeParser) extractInterface(node *sitter.Node, content []byte, fs *FileStructure, exported bool) {
	name := childFieldText(node, content, "name")
	if name == "" {
		return
	}
	start, end := lineOf(node)
	fs.Interfaces = append(fs.Interfaces, CodeElement{Kind: KindInterface, Name: name, StartLine: start, EndLine: end, IsExported: exported})
}

func (p *tsLikeParser) extractTypeAlias(node *sitter.Node, content []byte, fs *FileStructure, exported bool) {
	name := childFieldText(node, content, "name")
	if name == "" {
		return
	}
	start, end := lineOf(node)
	fs.Types = append(fs.Types, CodeElement{Kind: KindType, Name: name, StartLine: start, EndLine: end, IsExported: exported})
}

func (p *tsLikeParser) extractVariables(node *sitter.Node, content []byte, fs *FileStructure, exported bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := fieldByName(child, "name")
		if nameNode == nil {
			continue
		}
		start, end := lineOf(child)
		fs.Variables = append(fs.Variables, CodeElement{
			Kind: KindVariable, Name: nodeText(nameNode, content), StartLine: start, EndLine: end, IsExported: exported,
		})
	}
}

func isAsync(node *sitter.Node, content []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "async" {
			return true
		}
	}
	return strings.HasPrefix(strings.TrimSpace(nodeText(node, content)), "async ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// pythonParser covers Python via tree-sitter, treating classes and
// top-level `def`s, with Python's "all top-level symbols are exported
// unless the name starts with an underscore" rule (spec §4.4).
type pythonParser struct {
	maxFileSize int64
}

func newPythonParser(maxFileSize int64) *pythonParser {
	return &pythonParser{maxFileSize: clampSize(maxFileSize)}
}

func (p *pythonParser) Parse(ctx context.Context, content []byte, filePath string) (*FileStructure, error) {
	if int64(len(content)) > p.maxFileSize {
		return nil, ErrFileTooLarge
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidContent
	}
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned nil root node")
	}

	fs := &FileStructure{Language: detect.LangPython, TotalLines: countLines(content)}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement", "import_from_statement":
			start, end := lineOf(child)
			fs.Imports = append(fs.Imports, CodeElement{Kind: KindImport, Name: strings.TrimSpace(nodeText(child, content)), StartLine: start, EndLine: end, IsExported: true})
		case "function_definition":
			p.extractFunction(child, content, fs, "")
		case "class_definition":
			p.extractClass(child, content, fs)
		}
	}

	if err := fs.Validate(); err != nil {
		return nil, fmt.Errorf("result validation failed: %w", err)
	}
	return fs, nil
}

func pyExported(name string) bool {
	return !strings.HasPrefix(name, "_")
}

func (p *pythonParser) extractFunction(node *sitter.Node, content []byte, fs *FileStructure, parent string) {
	name := childFieldText(node, content, "name")
	if name == "" {
		return
	}
	start, end := lineOf(node)
	kind := KindFunction
	if parent != "" {
		kind = KindMethod
	}
	fs.Functions = append(fs.Functions, CodeElement{
		Kind: kind, Name: name, StartLine: start, EndLine: end,
		Signature: pySignature(node, content), Parent: parent,
		IsExported: pyExported(name), IsAsync: isAsync(node, content),
	})
}

// pySignature renders the def line only: everything before the body node,
// since Python has no brace for signatureLine to cut at.
func pySignature(node *sitter.Node, content []byte) string {
	body := fieldByName(node, "body")
	if body == nil {
		return signatureLine(node, content)
	}
	head := string(content[node.StartByte():body.StartByte()])
	head = strings.TrimRight(strings.Join(strings.Fields(head), " "), ": ")
	return head
}

func (p *pythonParser) extractClass(node *sitter.Node, content []byte, fs *FileStructure) {
	name := childFieldText(node, content, "name")
	if name == "" {
		return
	}
	start, end := lineOf(node)
	fs.Classes = append(fs.Classes, CodeElement{Kind: KindClass, Name: name, StartLine: start, EndLine: end, IsExported: pyExported(name)})

	body := fieldByName(node, "body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		if member.Type() == "function_definition" {
			p.extractFunction(member, content, fs, name)
		}
	}
}
