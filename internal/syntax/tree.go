// Package syntax exposes shell syntax trees behind a small node contract and
// provides two interchangeable parser backends: tree-sitter bash and mvdan.cc/sh.
package syntax

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/shellhint/internal/geometry"
)

// Node types shared by both backends.
const (
	ProgramNodeType     = "program"
	CommandNodeType     = "command"
	CommandNameNodeType = "command_name"
	WordNodeType        = "word"
)

// Backend names accepted by NewParser.
const (
	BackendAutomatic  = "auto"
	BackendTreeSitter = "tree-sitter"
	BackendShell      = "shell"
)

var statementSeparatorTypes = map[string]struct{}{
	";":  {},
	";;": {},
	"&":  {},
	"\n": {},
	"&&": {},
	"||": {},
	"|":  {},
	"|&": {},
}

// ErrBackendUnavailable indicates a parser backend that cannot run in this build.
var ErrBackendUnavailable = errors.New("syntax: parser backend unavailable")

// Node is an immutable view of one syntax tree node.
type Node interface {
	Type() string
	Text() string
	Range() geometry.Range
	IsNamed() bool
	Children() []Node
	Parent() Node
	FirstNamedChild() Node
	NextSibling() Node
}

// Tree is a parsed document.
type Tree interface {
	Root() Node
	Source() string
	// Edit records a span replacement so the next Parse can reuse unchanged subtrees.
	Edit(delta EditDelta)
}

// Parser turns shell source into a Tree. previous may be nil; when present it
// must have received every Edit describing the change to source.
type Parser interface {
	Parse(ctx context.Context, source string, previous Tree) (Tree, error)
}

// IsStatementSeparator reports whether nodeType terminates or joins statements.
func IsStatementSeparator(nodeType string) bool {
	_, separator := statementSeparatorTypes[nodeType]
	return separator
}

// NewParser returns the parser for backend. The automatic backend prefers
// tree-sitter and falls back to the pure Go shell parser without cgo.
func NewParser(backend string) (Parser, error) {
	switch backend {
	case BackendAutomatic, "":
		if treeSitterParser := newTreeSitterParser(); treeSitterParser != nil {
			return treeSitterParser, nil
		}
		return NewShellParser(), nil
	case BackendTreeSitter:
		treeSitterParser := newTreeSitterParser()
		if treeSitterParser == nil {
			return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, backend)
		}
		return treeSitterParser, nil
	case BackendShell:
		return NewShellParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, backend)
	}
}

// branch is the concrete Node built by both backends.
type branch struct {
	nodeType string
	text     string
	span     geometry.Range
	named    bool
	parent   *branch
	children []*branch
	index    int
}

func newBranch(nodeType string, named bool, text string, span geometry.Range) *branch {
	return &branch{nodeType: nodeType, named: named, text: text, span: span}
}

func (node *branch) appendChild(child *branch) {
	if child == nil {
		return
	}
	child.parent = node
	child.index = len(node.children)
	node.children = append(node.children, child)
}

func (node *branch) Type() string          { return node.nodeType }
func (node *branch) Text() string          { return node.text }
func (node *branch) Range() geometry.Range { return node.span }
func (node *branch) IsNamed() bool         { return node.named }

func (node *branch) Children() []Node {
	children := make([]Node, 0, len(node.children))
	for _, child := range node.children {
		children = append(children, child)
	}
	return children
}

func (node *branch) Parent() Node {
	if node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *branch) FirstNamedChild() Node {
	for _, child := range node.children {
		if child.named {
			return child
		}
	}
	return nil
}

func (node *branch) NextSibling() Node {
	if node.parent == nil || node.index+1 >= len(node.parent.children) {
		return nil
	}
	return node.parent.children[node.index+1]
}
