// Package analyzer answers completion and hover requests for a shell document
// by resolving the command context at the cursor.
package analyzer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/shellhint/internal/assist"
	"github.com/temirov/shellhint/internal/cmdspec"
	"github.com/temirov/shellhint/internal/geometry"
	"github.com/temirov/shellhint/internal/resolver"
	"github.com/temirov/shellhint/internal/syntax"
	"github.com/temirov/shellhint/internal/types"
)

const (
	parseDocumentFailedFormat = "parse document: %w"

	logFieldLine      = "line"
	logFieldCharacter = "character"
	logFieldWord      = "word"
	logFieldSequence  = "sequence"
	logFieldCount     = "count"

	logMessageOutOfRange      = "position outside of syntax tree"
	logMessageNoContext       = "completion context unresolved"
	logMessageFallback        = "offering command names"
	logMessageNamesFailed     = "listing command names failed"
	logMessageNoHover         = "hover unavailable"
	logMessageCompletionReady = "completion resolved"
)

// Settings tune completion behavior.
type Settings struct {
	Fallback            assist.FallbackPolicy
	FilterBySubsequence bool
}

// DefaultSettings returns the default fallback policy with subsequence filtering enabled.
func DefaultSettings() Settings {
	return Settings{Fallback: assist.DefaultFallbackPolicy(), FilterBySubsequence: true}
}

// Analyzer resolves completions and hovers. It holds no per-request state and
// is safe for concurrent use when its collaborators are.
type Analyzer struct {
	lookup   resolver.Lookup
	parser   syntax.Parser
	settings Settings
	logger   *zap.Logger
}

// New constructs an Analyzer. A nil logger disables logging.
func New(lookup resolver.Lookup, parser syntax.Parser, settings Settings, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{lookup: lookup, parser: parser, settings: settings, logger: logger}
}

// Complete parses document and resolves completions at position.
func (analyzer *Analyzer) Complete(ctx context.Context, document string, position geometry.Position) ([]types.Candidate, error) {
	tree, parseError := analyzer.parser.Parse(ctx, document, nil)
	if parseError != nil {
		return nil, fmt.Errorf(parseDocumentFailedFormat, parseError)
	}
	return analyzer.ResolveCompletions(ctx, document, tree.Root(), position), nil
}

// Hover parses document and resolves the hover at position.
func (analyzer *Analyzer) Hover(ctx context.Context, document string, position geometry.Position) (*types.Hover, error) {
	tree, parseError := analyzer.parser.Parse(ctx, document, nil)
	if parseError != nil {
		return nil, fmt.Errorf(parseDocumentFailedFormat, parseError)
	}
	return analyzer.ResolveHover(ctx, document, tree.Root(), position), nil
}

// ResolveCompletions returns the candidates for position, possibly none.
// Subcommands of the deepest resolved command come first, then options when
// the cursor follows whitespace or an option-like word. Without a command
// context, known command names matching the word being typed are offered.
func (analyzer *Analyzer) ResolveCompletions(ctx context.Context, document string, root syntax.Node, position geometry.Position) []types.Candidate {
	analyzer.checkPosition(root, position)
	anchor := resolver.WalkBackToWord(document, root, position)
	freshToken := anchor != position
	currentWord := wordAt(root, position)

	sequence, resolveError := resolver.ResolveCommandSequence(ctx, root, anchor, analyzer.lookup, !freshToken)
	if resolveError == nil && len(sequence) == 0 {
		resolveError = resolver.ErrNoCommandInContext
	}
	if resolveError != nil {
		analyzer.logger.Debug(logMessageNoContext, zap.Error(resolveError), zap.String(logFieldWord, currentWord))
		if freshToken {
			return nil
		}
		return analyzer.fallbackCandidates(ctx, currentWord)
	}

	candidates := assist.SubcommandCandidates(sequence[len(sequence)-1])
	if assist.OffersOptions(freshToken, currentWord) {
		candidates = append(candidates, assist.OptionCandidates(sequence, usedTokens(root, anchor, position, freshToken))...)
	}
	if !freshToken && analyzer.settings.FilterBySubsequence {
		candidates = assist.FilterBySubsequence(candidates, currentWord)
	}
	analyzer.logger.Debug(logMessageCompletionReady,
		zap.Strings(logFieldSequence, commandNames(sequence)),
		zap.Int(logFieldLine, position.Line),
		zap.Int(logFieldCharacter, position.Character))
	return candidates
}

// ResolveHover describes the word at position, or returns nil when there is
// nothing to describe.
func (analyzer *Analyzer) ResolveHover(ctx context.Context, document string, root syntax.Node, position geometry.Position) *types.Hover {
	analyzer.checkPosition(root, position)
	node := resolver.LocateDeepestNode(root, position)
	sequence, resolveError := resolver.ResolveCommandSequence(ctx, root, position, analyzer.lookup, false)
	if resolveError != nil {
		analyzer.logger.Debug(logMessageNoHover, zap.Error(resolveError), zap.String(logFieldWord, node.Text()))
		return nil
	}
	message, hoverError := assist.HoverMessage(sequence, node.Text())
	if hoverError != nil {
		analyzer.logger.Debug(logMessageNoHover, zap.Error(hoverError), zap.String(logFieldWord, node.Text()))
		return nil
	}
	hoverRange := node.Range()
	return &types.Hover{Markdown: message, Range: &hoverRange}
}

func (analyzer *Analyzer) fallbackCandidates(ctx context.Context, currentWord string) []types.Candidate {
	names, namesError := analyzer.lookup.Names(ctx)
	if namesError != nil {
		analyzer.logger.Warn(logMessageNamesFailed, zap.Error(namesError))
		return nil
	}
	candidates := assist.FallbackCandidates(names, currentWord, analyzer.settings.Fallback)
	if len(candidates) > 0 {
		analyzer.logger.Debug(logMessageFallback, zap.String(logFieldWord, currentWord), zap.Int(logFieldCount, len(candidates)))
	}
	return candidates
}

func (analyzer *Analyzer) checkPosition(root syntax.Node, position geometry.Position) {
	if positionError := resolver.CheckPosition(root, position); positionError != nil {
		analyzer.logger.Warn(logMessageOutOfRange,
			zap.Int(logFieldLine, position.Line),
			zap.Int(logFieldCharacter, position.Character))
	}
}

// wordAt returns the word token under position, or an empty string.
func wordAt(root syntax.Node, position geometry.Position) string {
	node := resolver.LocateDeepestNode(root, position)
	if node.Type() != syntax.WordNodeType {
		return ""
	}
	return node.Text()
}

// usedTokens lists argument tokens already present, leaving out the one being
// typed at position.
func usedTokens(root syntax.Node, anchor geometry.Position, position geometry.Position, freshToken bool) []string {
	var used []string
	for _, token := range resolver.ArgumentTokens(root, anchor) {
		if !freshToken && geometry.Contains(token.Range, position) {
			continue
		}
		used = append(used, token.Text)
	}
	return used
}

func commandNames(sequence []cmdspec.Command) []string {
	names := make([]string, 0, len(sequence))
	for _, command := range sequence {
		names = append(names, command.Name)
	}
	return names
}
