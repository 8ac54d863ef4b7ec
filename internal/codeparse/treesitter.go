//go:build cgo

package codeparse

import (
	"context"
	"fmt"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser is safe for concurrent use. Each call gets its own tree-sitter parser.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func grammar(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, lang)
}

// Extract parses source and returns the declared function and class names.
func (p *Parser) Extract(ctx context.Context, lang Language, source []byte) (Symbols, error) {
	tsLang, err := grammar(lang)
	if err != nil {
		return Symbols{}, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsLang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return Symbols{}, fmt.Errorf("parse %s source: %w", lang, err)
	}
	defer tree.Close()

	fnTypes := functionNodeTypes(lang)
	classTypes := classNodeTypes(lang)

	var functions, classes symbolSet
	walk(tree.RootNode(), func(n *sitter.Node) {
		switch {
		case slices.Contains(fnTypes, n.Type()):
			functions.add(nodeName(n, source))
		case slices.Contains(classTypes, n.Type()):
			classes.add(nodeName(n, source))
		}
	})

	return Symbols{Functions: functions.list(), Classes: classes.list()}, nil
}

func walk(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	visit(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visit)
	}
}

func nodeName(node *sitter.Node, source []byte) string {
	name := node.ChildByFieldName("name")
	if name == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && (child.Type() == "identifier" || child.Type() == "type_identifier") {
				name = child
				break
			}
		}
	}
	if name == nil {
		return ""
	}
	return name.Content(source)
}
