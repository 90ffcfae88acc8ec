package resolver

import (
	"context"
	"fmt"

	"github.com/temirov/shellhint/internal/cmdspec"
	"github.com/temirov/shellhint/internal/geometry"
	"github.com/temirov/shellhint/internal/syntax"
)

const unknownCommandMessageFormat = "%w: %s: %v"

// Lookup resolves command names to their specifications.
type Lookup interface {
	Fetch(ctx context.Context, name string) (cmdspec.Command, error)
	Names(ctx context.Context) ([]string, error)
}

// ResolveCommandSequence resolves the command at position and greedily walks its
// subcommands: each source word, left to right, is checked against the current
// command's subcommands and aliases in declared order; the first match is
// appended and the walk continues with the words after it. When dropCurrentWord
// is set and the deepest entry is named exactly like the word under position,
// that entry is dropped so it is offered as a completion rather than used as context.
func ResolveCommandSequence(ctx context.Context, root syntax.Node, position geometry.Position, lookup Lookup, dropCurrentWord bool) ([]cmdspec.Command, error) {
	name, found := ResolveCommandName(root, position)
	if !found {
		return nil, ErrNoCommandInContext
	}
	rootCommand, fetchError := lookup.Fetch(ctx, name)
	if fetchError != nil {
		return nil, fmt.Errorf(unknownCommandMessageFormat, ErrUnknownCommand, name, fetchError)
	}

	sequence := []cmdspec.Command{rootCommand}
	current := rootCommand
	remainingWords := SubcommandCandidates(root, position)
	for current.HasSubcommands() && len(remainingWords) > 0 {
		matchedIndex, matched := firstSubcommandMatch(current, remainingWords)
		if matchedIndex < 0 {
			break
		}
		sequence = append(sequence, matched)
		current = matched
		remainingWords = remainingWords[matchedIndex+1:]
	}

	if dropCurrentWord && sequence[len(sequence)-1].Name == CurrentWord(root, position) {
		sequence = sequence[:len(sequence)-1]
	}
	return sequence, nil
}

func firstSubcommandMatch(command cmdspec.Command, words []string) (int, cmdspec.Command) {
	subcommands := cmdspec.ExpandAliases(command)
	for wordIndex, word := range words {
		for _, subcommand := range subcommands {
			if subcommand.Name == word {
				return wordIndex, subcommand
			}
		}
	}
	return -1, cmdspec.Command{}
}
