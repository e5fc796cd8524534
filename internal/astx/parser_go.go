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
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/ctxengine/ctxengine/internal/detect"
)

// goParser implements full parsing for Go source via tree-sitter, mirroring
// the teacher's GoParser (ast/go_parser.go): per-call parser instance for
// thread safety, UTF-8 validation, syntax-error tolerance, and exported-ness
// by identifier case.
type goParser struct {
	maxFileSize int64
}

func newGoParser(maxFileSize int64) *goParser {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	return &goParser{maxFileSize: maxFileSize}
}

func (p *goParser) Parse(ctx context.Context, content []byte, filePath string) (*FileStructure, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(content)) > p.maxFileSize {
		return nil, ErrFileTooLarge
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidContent
	}

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned nil root node")
	}

	fs := &FileStructure{
		Language:   detect.LangGo,
		TotalLines: countLines(content),
	}

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_declaration":
			p.extractImports(child, content, fs)
		case "function_declaration":
			p.extractFunction(child, content, root, fs)
		case "method_declaration":
			p.extractMethod(child, content, root, fs)
		case "type_declaration":
			p.extractTypes(child, content, root, fs)
		case "var_declaration":
			p.extractVars(child, content, fs, KindVariable)
		case "const_declaration":
			p.extractVars(child, content, fs, KindVariable)
		}
	}

	if err := fs.Validate(); err != nil {
		return nil, fmt.Errorf("result validation failed: %w", err)
	}
	return fs, nil
}

func lineOf(n *sitter.Node) (int, int) {
	return int(n.StartPoint().Row) + 1, int(n.EndPoint().Row) + 1
}

func nodeText(n *sitter.Node, content []byte) string {
	return string(content[n.StartByte():n.EndByte()])
}

func isExportedGo(name string) bool {
	if name == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func (p *goParser) extractImports(node *sitter.Node, content []byte, fs *FileStructure) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "import_spec":
				var path string
				for j := 0; j < int(child.ChildCount()); j++ {
					c := child.Child(j)
					if c.Type() == "interpreted_string_literal" {
						path = strings.Trim(nodeText(c, content), `"`)
					}
				}
				if path == "" {
					continue
				}
				start, end := lineOf(child)
				fs.Imports = append(fs.Imports, CodeElement{
					Kind: KindImport, Name: path, StartLine: start, EndLine: end, IsExported: true,
				})
			case "import_spec_list":
				walk(child)
			}
		}
	}
	walk(node)
}

func (p *goParser) leadingComment(root, node *sitter.Node, content []byte) string {
	var prev *sitter.Node
	for i := 0; i < int(root.ChildCount()); i++ {
		c := root.Child(i)
		if c.StartByte() >= node.StartByte() {
			break
		}
		prev = c
	}
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	if int(node.StartPoint().Row)-int(prev.EndPoint().Row) > 1 {
		return ""
	}
	return strings.TrimSpace(nodeText(prev, content))
}

func (p *goParser) extractFunction(node *sitter.Node, content []byte, root *sitter.Node, fs *FileStructure) {
	name := childFieldText(node, content, "name")
	if name == "" {
		return
	}
	start, end := lineOf(node)
	fs.Functions = append(fs.Functions, CodeElement{
		Kind:          KindFunction,
		Name:          name,
		StartLine:     start,
		EndLine:       end,
		Signature:     signatureLine(node, content),
		Documentation: p.leadingComment(root, node, content),
		IsExported:    isExportedGo(name),
	})
}

func (p *goParser) extractMethod(node *sitter.Node, content []byte, root *sitter.Node, fs *FileStructure) {
	name := childFieldText(node, content, "name")
	if name == "" {
		return
	}
	recv := receiverTypeName(node, content)
	start, end := lineOf(node)
	fs.Functions = append(fs.Functions, CodeElement{
		Kind:          KindMethod,
		Name:          name,
		StartLine:     start,
		EndLine:       end,
		Signature:     signatureLine(node, content),
		Documentation: p.leadingComment(root, node, content),
		Parent:        recv,
		IsExported:    isExportedGo(name),
	})
	if recv != "" {
		ensureClassPlaceholder(fs, recv, start)
	}
}

// ensureClassPlaceholder guarantees a method's Parent also appears in
// Classes, per the invariant in spec §3, even for receivers on types
// declared via `type X struct{}` that tree-sitter visits separately (and,
// defensively, for those it doesn't — e.g. type aliases to non-struct
// underlying types used as method receivers).
func ensureClassPlaceholder(fs *FileStructure, name string, fallbackLine int) {
	for _, c := range fs.Classes {
		if c.Name == name {
			return
		}
	}
	for _, t := range fs.Types {
		if t.Name == name {
			fs.Classes = append(fs.Classes, CodeElement{
				Kind: KindClass, Name: name, StartLine: t.StartLine, EndLine: t.EndLine, IsExported: t.IsExported,
			})
			return
		}
	}
	fs.Classes = append(fs.Classes, CodeElement{
		Kind: KindClass, Name: name, StartLine: fallbackLine, EndLine: fallbackLine, IsExported: isExportedGo(name),
	})
}

func receiverTypeName(node *sitter.Node, content []byte) string {
	recv := fieldByName(node, "receiver")
	if recv == nil {
		return ""
	}
	var find func(n *sitter.Node) string
	find = func(n *sitter.Node) string {
		switch n.Type() {
		case "type_identifier":
			return nodeText(n, content)
		case "pointer_type":
			if t := n.ChildByFieldName("type"); t != nil {
				return find(t)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if r := find(n.Child(i)); r != "" {
				return r
			}
		}
		return ""
	}
	return find(recv)
}

func (p *goParser) extractTypes(node *sitter.Node, content []byte, root *sitter.Node, fs *FileStructure) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "type_spec" {
			continue
		}
		nameNode := fieldByName(child, "name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, content)
		typeNode := fieldByName(child, "type")
		start, end := lineOf(child)
		doc := p.leadingComment(root, node, content)
		el := CodeElement{
			Name: name, StartLine: start, EndLine: end, Documentation: doc, IsExported: isExportedGo(name),
		}
		switch {
		case typeNode != nil && typeNode.Type() == "struct_type":
			el.Kind = KindClass
			fs.Classes = append(fs.Classes, el)
		case typeNode != nil && typeNode.Type() == "interface_type":
			el.Kind = KindInterface
			fs.Interfaces = append(fs.Interfaces, el)
		default:
			el.Kind = KindType
			fs.Types = append(fs.Types, el)
		}
	}
}

func (p *goParser) extractVars(node *sitter.Node, content []byte, fs *FileStructure, kind ElementKind) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Type() == "var_spec" || child.Type() == "const_spec" {
				nameNode := fieldByName(child, "name")
				if nameNode == nil {
					for j := 0; j < int(child.ChildCount()); j++ {
						if child.Child(j).Type() == "identifier" {
							nameNode = child.Child(j)
							break
						}
					}
				}
				if nameNode == nil {
					continue
				}
				name := nodeText(nameNode, content)
				start, end := lineOf(child)
				fs.Variables = append(fs.Variables, CodeElement{
					Kind: kind, Name: name, StartLine: start, EndLine: end, IsExported: isExportedGo(name),
				})
			} else if child.Type() == "var_spec_list" || child.Type() == "const_spec_list" {
				walk(child)
			}
		}
	}
	walk(node)
}

func fieldByName(n *sitter.Node, field string) *sitter.Node {
	return n.ChildByFieldName(field)
}

func childFieldText(node *sitter.Node, content []byte, field string) string {
	n := fieldByName(node, field)
	if n == nil {
		return ""
	}
	return nodeText(n, content)
}

// signatureLine renders the declaration line (up to the opening brace or
// the first newline) as a compact, one-line signature.
func signatureLine(node *sitter.Node, content []byte) string {
	full := nodeText(node, content)
	if idx := strings.IndexByte(full, '{'); idx >= 0 {
		full = full[:idx]
	}
	full = strings.Join(strings.Fields(full), " ")
	return full
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 1
	}
	n := 1
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	if content[len(content)-1] == '\n' {
		n--
	}
	return n
}
