// Package assist turns a resolved command context into completion candidates
// and hover messages.
package assist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/temirov/shellhint/internal/cmdspec"
	"github.com/temirov/shellhint/internal/types"
)

const (
	subcommandSortFormat = "33-%04d"
	optionSortFormat     = "55-%04d"
	fallbackSortFormat   = "77-%04d"
	optionSnippetFormat  = "%s ${1:%s}"
	optionPrefix         = "-"

	// DefaultMinimumFallbackLength is the shortest word that triggers command name fallback.
	DefaultMinimumFallbackLength = 3
)

// MatchMode selects how fallback command names are matched against the current word.
type MatchMode string

const (
	MatchPrefix      MatchMode = "prefix"
	MatchSubsequence MatchMode = "subsequence"
)

// ErrUnknownMatchMode indicates an unsupported MatchMode spelling.
var ErrUnknownMatchMode = errors.New("assist: unknown match mode")

// ParseMatchMode converts a configuration value to a MatchMode.
func ParseMatchMode(value string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(value))) {
	case MatchPrefix, "":
		return MatchPrefix, nil
	case MatchSubsequence:
		return MatchSubsequence, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownMatchMode, value)
	}
}

// FallbackPolicy controls top-level command name completion when no command
// context resolves.
type FallbackPolicy struct {
	MinimumLength int
	Match         MatchMode
}

// DefaultFallbackPolicy requires three characters and prefix matching.
func DefaultFallbackPolicy() FallbackPolicy {
	return FallbackPolicy{MinimumLength: DefaultMinimumFallbackLength, Match: MatchPrefix}
}

// Accepts reports whether name matches word under the policy.
func (policy FallbackPolicy) Accepts(word string, name string) bool {
	if policy.Match == MatchSubsequence {
		return IsSubsequence(word, name)
	}
	return strings.HasPrefix(name, word)
}

// IsSubsequence reports whether every character of token appears in text in order.
func IsSubsequence(token string, text string) bool {
	return fuzzy.Match(token, text)
}

// SubcommandCandidates lists the subcommands of command, aliases included, in declared order.
func SubcommandCandidates(command cmdspec.Command) []types.Candidate {
	subcommands := cmdspec.ExpandAliases(command)
	candidates := make([]types.Candidate, 0, len(subcommands))
	for subcommandIndex, subcommand := range subcommands {
		candidates = append(candidates, types.Candidate{
			Label:    subcommand.Name,
			Detail:   subcommand.Description,
			SortText: fmt.Sprintf(subcommandSortFormat, subcommandIndex),
			Kind:     types.CandidateKindSubcommand,
		})
	}
	return candidates
}

// OptionCandidates lists every spelling of the merged options of sequence,
// skipping options with any spelling among usedTokens. Options that take an
// argument insert a snippet with an argument placeholder.
func OptionCandidates(sequence []cmdspec.Command, usedTokens []string) []types.Candidate {
	used := make(map[string]struct{}, len(usedTokens))
	for _, token := range usedTokens {
		used[token] = struct{}{}
	}
	var candidates []types.Candidate
	for optionIndex, option := range cmdspec.MergedOptions(sequence) {
		if optionUsed(option, used) {
			continue
		}
		for _, name := range option.Names {
			candidate := types.Candidate{
				Label:    name,
				Detail:   option.Description,
				SortText: fmt.Sprintf(optionSortFormat, optionIndex),
				Kind:     types.CandidateKindOption,
			}
			if option.TakesArgument() {
				candidate.InsertText = fmt.Sprintf(optionSnippetFormat, name, option.Argument)
				candidate.IsSnippet = true
			}
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

func optionUsed(option cmdspec.Option, used map[string]struct{}) bool {
	for _, name := range option.Names {
		if _, exists := used[name]; exists {
			return true
		}
	}
	return false
}

// OffersOptions reports whether option candidates apply: after whitespace or
// while typing an option-like word.
func OffersOptions(freshToken bool, currentWord string) bool {
	return freshToken || strings.HasPrefix(currentWord, optionPrefix)
}

// FallbackCandidates lists known command names matching word under policy.
// Words shorter than the policy minimum yield nothing.
func FallbackCandidates(names []string, word string, policy FallbackPolicy) []types.Candidate {
	if len([]rune(word)) < policy.MinimumLength {
		return nil
	}
	var candidates []types.Candidate
	for _, name := range names {
		if !policy.Accepts(word, name) {
			continue
		}
		candidates = append(candidates, types.Candidate{
			Label:    name,
			SortText: fmt.Sprintf(fallbackSortFormat, len(candidates)),
			Kind:     types.CandidateKindCommand,
		})
	}
	return candidates
}

// FilterBySubsequence keeps candidates whose label contains token as a subsequence.
func FilterBySubsequence(candidates []types.Candidate, token string) []types.Candidate {
	if len(token) == 0 {
		return candidates
	}
	filtered := make([]types.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if IsSubsequence(token, candidate.Label) {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}
