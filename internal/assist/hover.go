package assist

import (
	"errors"
	"strings"

	"github.com/temirov/shellhint/internal/cmdspec"
	"github.com/temirov/shellhint/internal/resolver"
)

const emphasisMarker = "**"

// ErrNothingToDescribe indicates a word that is neither a command in the
// sequence nor option-like.
var ErrNothingToDescribe = errors.New("assist: nothing to describe")

// HoverMessage describes word within sequence: the root command with its tldr
// or usage, a subcommand with its ancestors, or the options it spells. An
// option-like word without a match yields resolver.ErrOptionTableEmpty.
func HoverMessage(sequence []cmdspec.Command, word string) (string, error) {
	if len(sequence) == 0 {
		return "", ErrNothingToDescribe
	}
	rootCommand := sequence[0]
	if word == rootCommand.Name {
		return describeRoot(rootCommand), nil
	}
	for commandIndex := 1; commandIndex < len(sequence); commandIndex++ {
		if sequence[commandIndex].Name == word {
			return describeSubcommand(sequence[:commandIndex], sequence[commandIndex]), nil
		}
	}
	if !strings.HasPrefix(word, optionPrefix) {
		return "", ErrNothingToDescribe
	}
	options := cmdspec.MatchOption(word, sequence)
	if len(options) == 0 {
		return "", resolver.ErrOptionTableEmpty
	}
	return FormatOptions(options), nil
}

func describeRoot(command cmdspec.Command) string {
	message := inlineCode(command.Name)
	if len(command.Tldr) > 0 {
		return message + FormatTldr(command.Tldr)
	}
	return message + FormatDescription(command.Description) + FormatUsage(command.Usage)
}

func describeSubcommand(ancestors []cmdspec.Command, command cmdspec.Command) string {
	ancestorNames := make([]string, 0, len(ancestors))
	for _, ancestor := range ancestors {
		ancestorNames = append(ancestorNames, ancestor.Name)
	}
	message := strings.Join(ancestorNames, " ") + " " + emphasisMarker + command.Name + emphasisMarker +
		paragraphBreak + strings.TrimSpace(command.Description)
	return message + FormatUsage(command.Usage)
}
