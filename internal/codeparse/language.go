// Package codeparse extracts function and class names from source files so
// code file records can be correlated by symbol name.
package codeparse

import (
	"errors"
	"path/filepath"
	"strings"
)

type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJava       Language = "java"
)

// ErrUnsupported is returned for languages without a grammar.
var ErrUnsupported = errors.New("codeparse: unsupported language")

// Symbols holds the distinct names declared in one file, in source order.
type Symbols struct {
	Functions []string
	Classes   []string
}

var extensions = map[string]Language{
	".go":   LangGo,
	".py":   LangPython,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".java": LangJava,
}

// Detect resolves the language from the declared name first and the file
// extension second.
func Detect(path, declared string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case "go", "golang":
		return LangGo, true
	case "python", "py":
		return LangPython, true
	case "javascript", "js":
		return LangJavaScript, true
	case "typescript", "ts":
		return LangTypeScript, true
	case "java":
		return LangJava, true
	}
	lang, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

func functionNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"function_declaration", "method_declaration"}
	case LangPython:
		return []string{"function_definition"}
	case LangJavaScript, LangTypeScript:
		return []string{"function_declaration", "generator_function_declaration", "method_definition"}
	case LangJava:
		return []string{"method_declaration", "constructor_declaration"}
	}
	return nil
}

func classNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"type_spec"}
	case LangPython:
		return []string{"class_definition"}
	case LangJavaScript:
		return []string{"class_declaration"}
	case LangTypeScript:
		return []string{"class_declaration", "interface_declaration"}
	case LangJava:
		return []string{"class_declaration", "interface_declaration", "enum_declaration"}
	}
	return nil
}

type symbolSet struct {
	seen  map[string]struct{}
	names []string
}

func (s *symbolSet) add(name string) {
	if name == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
}

func (s *symbolSet) list() []string {
	if s.names == nil {
		return []string{}
	}
	return s.names
}
