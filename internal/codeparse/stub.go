//go:build !cgo

package codeparse

import (
	"context"
	"errors"
)

// ErrNoCGO is returned when symbol extraction is unavailable because the
// binary was built without cgo.
var ErrNoCGO = errors.New("codeparse requires cgo (tree-sitter)")

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Extract(ctx context.Context, lang Language, source []byte) (Symbols, error) {
	return Symbols{}, ErrNoCGO
}
