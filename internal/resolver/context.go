// Package resolver locates the command invocation surrounding a cursor in a
// shell syntax tree and reconstructs the command and subcommand chain it names.
package resolver

import (
	"errors"
	"strings"

	"github.com/temirov/shellhint/internal/geometry"
	"github.com/temirov/shellhint/internal/syntax"
)

const (
	privilegeElevationPrefix = "sudo"
	optionPrefix             = "-"
	longOptionPrefix         = "--"
	optionValueSign          = "="
	lineContinuationMarker   = "\\"
	trailingWhitespace       = " \t\r\n"
	lineFeed                 = "\n"
)

var (
	// ErrNoCommandInContext indicates a cursor outside any command invocation.
	ErrNoCommandInContext = errors.New("resolver: no command in context")
	// ErrUnknownCommand indicates a command name without known metadata.
	ErrUnknownCommand = errors.New("resolver: unknown command")
	// ErrOptionTableEmpty indicates an option-like token that matches no known option.
	ErrOptionTableEmpty = errors.New("resolver: no matching option")
	// ErrOutOfRangePosition indicates a position outside the root node.
	ErrOutOfRangePosition = errors.New("resolver: position outside of syntax tree")
)

// Token is one argument of a command invocation.
type Token struct {
	Text  string
	Range geometry.Range
}

// CheckPosition reports ErrOutOfRangePosition when root does not cover position.
func CheckPosition(root syntax.Node, position geometry.Position) error {
	if !geometry.Contains(root.Range(), position) {
		return ErrOutOfRangePosition
	}
	return nil
}

// LocateDeepestNode descends into the first child covering position until no
// child does, and returns the node reached.
func LocateDeepestNode(root syntax.Node, position geometry.Position) syntax.Node {
	current := root
	for {
		var next syntax.Node
		for _, child := range current.Children() {
			if geometry.Contains(child.Range(), position) {
				next = child
				break
			}
		}
		if next == nil {
			return current
		}
		current = next
	}
}

// WalkBackToWord moves position left, and across line continuations, until it
// lands on a word token. It stops on statement separators, at the start of a
// line that does not continue the previous one, and at the document start.
func WalkBackToWord(document string, root syntax.Node, position geometry.Position) geometry.Position {
	if stopsWalkBack(LocateDeepestNode(root, position)) {
		return position
	}
	current := clampToLineEnd(document, position)
	for {
		if stopsWalkBack(LocateDeepestNode(root, current)) {
			return current
		}
		if current.Character > 0 {
			current = geometry.Translate(current, 0, -1)
			continue
		}
		if current.Line == 0 {
			return current
		}
		previousLineIndex := current.Line - 1
		previousLine := strings.TrimRight(geometry.LineAt(document, previousLineIndex), trailingWhitespace)
		if !strings.HasSuffix(previousLine, lineContinuationMarker) {
			return current
		}
		current = geometry.NewPosition(previousLineIndex, geometry.UTF16Length(previousLine)-1)
	}
}

func stopsWalkBack(node syntax.Node) bool {
	return node.Type() == syntax.WordNodeType || syntax.IsStatementSeparator(node.Type())
}

// clampToLineEnd pulls a column past the end of its line back to the line end.
func clampToLineEnd(document string, position geometry.Position) geometry.Position {
	lineLength := geometry.UTF16Length(strings.TrimSuffix(geometry.LineAt(document, position.Line), lineFeed))
	if position.Character > lineLength {
		position.Character = lineLength
	}
	return position
}

// FindEnclosingCommandNode returns the command node whose name or argument
// covers position, or nil.
func FindEnclosingCommandNode(root syntax.Node, position geometry.Position) syntax.Node {
	current := LocateDeepestNode(root, position)
	parent := current.Parent()
	if parent != nil && parent.Type() == syntax.CommandNameNodeType {
		current = parent
		parent = current.Parent()
	}
	if parent != nil && parent.Type() == syntax.CommandNodeType {
		return parent
	}
	return nil
}

// commandNameNode returns the node holding the real command name, skipping a
// leading sudo.
func commandNameNode(commandNode syntax.Node) syntax.Node {
	nameNode := commandNode.FirstNamedChild()
	if nameNode != nil && nameNode.Text() == privilegeElevationPrefix {
		return nameNode.NextSibling()
	}
	return nameNode
}

// ResolveCommandName returns the name of the command invoked at position.
func ResolveCommandName(root syntax.Node, position geometry.Position) (string, bool) {
	commandNode := FindEnclosingCommandNode(root, position)
	if commandNode == nil {
		return "", false
	}
	nameNode := commandNameNode(commandNode)
	if nameNode == nil || len(nameNode.Text()) == 0 {
		return "", false
	}
	return nameNode.Text(), true
}

// ArgumentTokens lists the tokens following the command name at position, with
// --option=value reduced to --option.
func ArgumentTokens(root syntax.Node, position geometry.Position) []Token {
	commandNode := FindEnclosingCommandNode(root, position)
	if commandNode == nil {
		return nil
	}
	nameNode := commandNameNode(commandNode)
	if nameNode == nil {
		return nil
	}
	var tokens []Token
	for sibling := nameNode.NextSibling(); sibling != nil; sibling = sibling.NextSibling() {
		tokens = append(tokens, Token{Text: normalizeArgument(sibling.Text()), Range: sibling.Range()})
	}
	return tokens
}

// CollectArgumentTokens returns the text of ArgumentTokens.
func CollectArgumentTokens(root syntax.Node, position geometry.Position) []string {
	tokens := ArgumentTokens(root, position)
	texts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		texts = append(texts, token.Text)
	}
	return texts
}

// SubcommandCandidates returns the argument tokens that do not look like options.
func SubcommandCandidates(root syntax.Node, position geometry.Position) []string {
	var candidates []string
	for _, token := range CollectArgumentTokens(root, position) {
		if strings.HasPrefix(token, optionPrefix) {
			continue
		}
		candidates = append(candidates, token)
	}
	return candidates
}

// CurrentWord returns the text of the deepest node covering position.
func CurrentWord(root syntax.Node, position geometry.Position) string {
	return LocateDeepestNode(root, position).Text()
}

func normalizeArgument(text string) string {
	if !strings.HasPrefix(text, longOptionPrefix) {
		return text
	}
	name, _, _ := strings.Cut(text, optionValueSign)
	return name
}
