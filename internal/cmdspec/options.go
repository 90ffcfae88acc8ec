package cmdspec

import "strings"

const (
	optionPrefix     = "-"
	longOptionPrefix = "--"
	optionValueSign  = "="
	shortOptionRunes = 2
)

// MergedOptions returns the options of the deepest command followed by the
// inherited options of every command in sequence, root first.
func MergedOptions(sequence []Command) []Option {
	if len(sequence) == 0 {
		return nil
	}
	deepestCommand := sequence[len(sequence)-1]
	merged := make([]Option, 0, len(deepestCommand.Options))
	merged = append(merged, deepestCommand.Options...)
	for _, command := range sequence {
		merged = append(merged, command.InheritedOptions...)
	}
	return merged
}

// OptionName strips an inline value from token, so --file=a.txt becomes --file.
func OptionName(token string) string {
	name, _, _ := strings.Cut(token, optionValueSign)
	return name
}

// IsOldStyle reports whether name is a short form that is neither a long flag
// nor exactly two characters, such as -xvf or -oARG.
func IsOldStyle(name string) bool {
	if !strings.HasPrefix(name, optionPrefix) || strings.HasPrefix(name, longOptionPrefix) {
		return false
	}
	return len([]rune(name)) != shortOptionRunes
}

// UnstackOption splits a clustered short option into two-character spellings,
// dropping repeats while keeping first-seen order.
func UnstackOption(name string) []string {
	seen := make(map[string]struct{})
	var unstacked []string
	for _, character := range strings.TrimPrefix(name, optionPrefix) {
		shortName := optionPrefix + string(character)
		if _, exists := seen[shortName]; exists {
			continue
		}
		seen[shortName] = struct{}{}
		unstacked = append(unstacked, shortName)
	}
	return unstacked
}

// FindOption returns the first option spelled name.
func FindOption(options []Option, name string) (Option, bool) {
	for _, option := range options {
		if option.HasName(name) {
			return option, true
		}
	}
	return Option{}, false
}

// MatchOption resolves token against the merged options of sequence. It returns
// a single option for an exact spelling, every option of a fully known cluster,
// the first known option of a short flag with an attached argument, or nothing.
func MatchOption(token string, sequence []Command) []Option {
	name := OptionName(token)
	if !strings.HasPrefix(name, optionPrefix) {
		return nil
	}
	options := MergedOptions(sequence)
	if option, found := FindOption(options, name); found {
		return []Option{option}
	}
	if !IsOldStyle(name) {
		return nil
	}
	shortNames := UnstackOption(name)
	matched := make([]Option, 0, len(shortNames))
	for _, shortName := range shortNames {
		if option, found := FindOption(options, shortName); found {
			matched = append(matched, option)
		}
	}
	switch {
	case len(shortNames) > 0 && len(matched) == len(shortNames):
		return matched
	case len(matched) > 0:
		return matched[:1]
	default:
		return nil
	}
}
