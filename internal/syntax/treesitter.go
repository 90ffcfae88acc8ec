//go:build cgo

package syntax

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"

	"github.com/temirov/shellhint/internal/geometry"
)

const treeSitterParseFailedFormat = "tree-sitter parse: %w"

// TreeSitterParser parses bash with the tree-sitter grammar and supports
// incremental re-parsing.
type TreeSitterParser struct {
	parserMutex sync.Mutex
	parser      *sitter.Parser
}

type treeSitterTree struct {
	tree   *sitter.Tree
	source string
	root   *branch
}

// NewTreeSitterParser constructs a TreeSitterParser.
func NewTreeSitterParser() *TreeSitterParser {
	parser := sitter.NewParser()
	parser.SetLanguage(bash.GetLanguage())
	return &TreeSitterParser{parser: parser}
}

func newTreeSitterParser() Parser {
	return NewTreeSitterParser()
}

// Parse implements Parser.
func (treeSitterParser *TreeSitterParser) Parse(ctx context.Context, source string, previous Tree) (Tree, error) {
	var previousTree *sitter.Tree
	if typedPrevious, ok := previous.(*treeSitterTree); ok && typedPrevious != nil {
		previousTree = typedPrevious.tree
	}
	content := []byte(source)

	treeSitterParser.parserMutex.Lock()
	parsedTree, parseError := treeSitterParser.parser.ParseCtx(ctx, previousTree, content)
	treeSitterParser.parserMutex.Unlock()
	if parseError != nil {
		return nil, fmt.Errorf(treeSitterParseFailedFormat, parseError)
	}

	index := geometry.NewLineIndex(source)
	return &treeSitterTree{
		tree:   parsedTree,
		source: source,
		root:   convertTreeSitterNode(parsedTree.RootNode(), content, index),
	}, nil
}

func (tree *treeSitterTree) Root() Node {
	return tree.root
}

func (tree *treeSitterTree) Source() string {
	return tree.source
}

func (tree *treeSitterTree) Edit(delta EditDelta) {
	tree.tree.Edit(sitter.EditInput{
		StartIndex:  uint32(delta.StartByte),
		OldEndIndex: uint32(delta.OldEndByte),
		NewEndIndex: uint32(delta.NewEndByte),
		StartPoint:  toSitterPoint(delta.StartPoint),
		OldEndPoint: toSitterPoint(delta.OldEndPoint),
		NewEndPoint: toSitterPoint(delta.NewEndPoint),
	})
}

func toSitterPoint(point Point) sitter.Point {
	return sitter.Point{Row: uint32(point.Row), Column: uint32(point.Column)}
}

func convertTreeSitterNode(node *sitter.Node, content []byte, index geometry.LineIndex) *branch {
	startByte := int(node.StartByte())
	endByte := int(node.EndByte())
	span := geometry.Range{
		Start: index.PositionAt(startByte),
		End:   index.PositionAt(endByte),
	}
	converted := newBranch(node.Type(), node.IsNamed(), string(content[startByte:endByte]), span)
	childCount := int(node.ChildCount())
	for childIndex := 0; childIndex < childCount; childIndex++ {
		child := node.Child(childIndex)
		if child == nil {
			continue
		}
		converted.appendChild(convertTreeSitterNode(child, content, index))
	}
	return converted
}
