package assist

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/temirov/shellhint/internal/cmdspec"
	"github.com/temirov/shellhint/internal/resolver"
	"github.com/temirov/shellhint/internal/types"
)

func condaSequence() []cmdspec.Command {
	install := cmdspec.Command{
		Name:        "install",
		Description: "Installs a list of packages into a specified conda environment.",
		Usage:       "conda install [-h] [--yes]\n[package_spec ...]",
		Aliases:     []string{"i"},
		Options: []cmdspec.Option{
			{Names: []string{"-y", "--yes"}, Description: "Do not ask for confirmation."},
			{Names: []string{"-n", "--name"}, Argument: "ENVIRONMENT", Description: "Name of environment."},
		},
	}
	conda := cmdspec.Command{
		Name:             "conda",
		Description:      "conda is a tool for managing and deploying applications.",
		Tldr:             "# conda\n\n> Package manager.\n\n- Create an environment:\n\n`conda create --name {{env_name}}`",
		Subcommands:      []cmdspec.Command{install, {Name: "list", Description: "List packages."}},
		InheritedOptions: []cmdspec.Option{{Names: []string{"--json"}, Description: "Report all output as json."}},
	}
	return []cmdspec.Command{conda, install}
}

func tarSequence() []cmdspec.Command {
	return []cmdspec.Command{{
		Name: "tar",
		Options: []cmdspec.Option{
			{Names: []string{"-x", "--extract"}, Description: "extract files from an archive"},
			{Names: []string{"-v", "--verbose"}, Description: "verbosely list files processed"},
			{Names: []string{"-f", "--file"}, Argument: "ARCHIVE", Description: "use archive file"},
		},
	}}
}

func labels(candidates []types.Candidate) []string {
	result := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		result = append(result, candidate.Label)
	}
	return result
}

func TestSubcommandCandidatesRankBeforeOptions(t *testing.T) {
	t.Parallel()

	sequence := condaSequence()
	subcommands := SubcommandCandidates(sequence[0])
	if expected := []string{"install", "i", "list"}; !reflect.DeepEqual(labels(subcommands), expected) {
		t.Fatalf("labels = %v, want %v", labels(subcommands), expected)
	}
	if subcommands[1].SortText != "33-0001" || subcommands[1].Detail != "(Alias of install) Installs a list of packages into a specified conda environment." {
		t.Fatalf("unexpected alias candidate %+v", subcommands[1])
	}
	options := OptionCandidates(sequence, nil)
	if len(options) == 0 || subcommands[len(subcommands)-1].SortText >= options[0].SortText {
		t.Fatalf("subcommands must sort before options: %+v / %+v", subcommands, options)
	}
}

func TestOptionCandidates(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		usedTokens     []string
		expectedLabels []string
	}{
		{name: "nothing_used", expectedLabels: []string{"-y", "--yes", "-n", "--name", "--json"}},
		{name: "short_spelling_used", usedTokens: []string{"install", "-y"}, expectedLabels: []string{"-n", "--name", "--json"}},
		{name: "inherited_used", usedTokens: []string{"--json"}, expectedLabels: []string{"-y", "--yes", "-n", "--name"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			candidates := OptionCandidates(condaSequence(), testCase.usedTokens)
			if actual := labels(candidates); !reflect.DeepEqual(actual, testCase.expectedLabels) {
				t.Fatalf("labels = %v, want %v", actual, testCase.expectedLabels)
			}
		})
	}

	candidates := OptionCandidates(condaSequence(), nil)
	if candidates[3].InsertText != "--name ${1:ENVIRONMENT}" || !candidates[3].IsSnippet {
		t.Fatalf("unexpected snippet candidate %+v", candidates[3])
	}
	if candidates[0].InsertText != "" || candidates[0].SortText != "55-0000" || candidates[2].SortText != "55-0001" {
		t.Fatalf("unexpected plain candidates %+v", candidates[:3])
	}
}

func TestOffersOptions(t *testing.T) {
	t.Parallel()

	if !OffersOptions(true, "install") {
		t.Fatalf("fresh token must offer options")
	}
	if !OffersOptions(false, "--ye") {
		t.Fatalf("option-like word must offer options")
	}
	if OffersOptions(false, "inst") {
		t.Fatalf("mid-identifier must not offer options")
	}
}

func TestFallbackCandidates(t *testing.T) {
	t.Parallel()

	names := []string{"conda", "cd", "docker", "mamba"}
	testCases := []struct {
		name     string
		word     string
		policy   FallbackPolicy
		expected []string
	}{
		{name: "prefix", word: "cond", policy: DefaultFallbackPolicy(), expected: []string{"conda"}},
		{name: "too_short", word: "co", policy: DefaultFallbackPolicy(), expected: []string{}},
		{name: "shorter_threshold", word: "cd", policy: FallbackPolicy{MinimumLength: 2, Match: MatchPrefix}, expected: []string{"cd"}},
		{name: "subsequence", word: "cda", policy: FallbackPolicy{MinimumLength: 3, Match: MatchSubsequence}, expected: []string{"conda"}},
		{name: "prefix_rejects_subsequence", word: "cda", policy: DefaultFallbackPolicy(), expected: []string{}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			actual := labels(FallbackCandidates(names, testCase.word, testCase.policy))
			if !reflect.DeepEqual(actual, testCase.expected) {
				t.Fatalf("labels = %v, want %v", actual, testCase.expected)
			}
		})
	}
}

func TestParseMatchMode(t *testing.T) {
	t.Parallel()

	if mode, parseError := ParseMatchMode(" Subsequence "); parseError != nil || mode != MatchSubsequence {
		t.Fatalf("ParseMatchMode = %q, %v", mode, parseError)
	}
	if mode, parseError := ParseMatchMode(""); parseError != nil || mode != MatchPrefix {
		t.Fatalf("ParseMatchMode(empty) = %q, %v", mode, parseError)
	}
	if _, parseError := ParseMatchMode("regex"); !errors.Is(parseError, ErrUnknownMatchMode) {
		t.Fatalf("expected ErrUnknownMatchMode, got %v", parseError)
	}
}

func TestFilterBySubsequence(t *testing.T) {
	t.Parallel()

	candidates := []types.Candidate{{Label: "install"}, {Label: "list"}, {Label: "info"}}
	if actual := labels(FilterBySubsequence(candidates, "ist")); !reflect.DeepEqual(actual, []string{"install", "list"}) {
		t.Fatalf("filtered = %v", actual)
	}
	if actual := labels(FilterBySubsequence(candidates, "")); len(actual) != 3 {
		t.Fatalf("empty token must keep everything, got %v", actual)
	}
}

func TestHoverMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		sequence      []cmdspec.Command
		word          string
		expected      string
		expectedError error
	}{
		{
			name:     "subcommand",
			sequence: []cmdspec.Command{{Name: "conda"}, {Name: "install", Description: "Installs packages."}},
			word:     "install",
			expected: "conda **install**\n\nInstalls packages.",
		},
		{
			name:     "stacked_options",
			sequence: tarSequence(),
			word:     "-xvf",
			expected: "`-x`, `--extract`\n\nextract files from an archive\n\n`-v`, `--verbose`\n\nverbosely list files processed\n\n`-f`, `--file` `ARCHIVE`\n\nuse archive file",
		},
		{
			name:     "option_with_value",
			sequence: tarSequence(),
			word:     "--file=a.tar",
			expected: "`-f`, `--file` `ARCHIVE`\n\nuse archive file",
		},
		{
			name:     "root_without_tldr",
			sequence: []cmdspec.Command{{Name: "ls", Description: "list directory contents", Usage: "ls [OPTION]... [FILE]..."}},
			word:     "ls",
			expected: "`ls`\n\nlist directory contents\n\nUsage:\n\n     ls [OPTION]... [FILE]...\n\n\n",
		},
		{name: "unknown_option", sequence: tarSequence(), word: "--bogus", expectedError: resolver.ErrOptionTableEmpty},
		{name: "plain_argument", sequence: tarSequence(), word: "archive.tar", expectedError: ErrNothingToDescribe},
		{name: "empty_sequence", word: "tar", expectedError: ErrNothingToDescribe},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			message, hoverError := HoverMessage(testCase.sequence, testCase.word)
			if testCase.expectedError != nil {
				if !errors.Is(hoverError, testCase.expectedError) {
					t.Fatalf("expected %v, got %v", testCase.expectedError, hoverError)
				}
				return
			}
			if hoverError != nil {
				t.Fatalf("unexpected error: %v", hoverError)
			}
			if message != testCase.expected {
				t.Fatalf("message = %q\nwant      %q", message, testCase.expected)
			}
		})
	}
}

func TestHoverMessageRootUsesTldr(t *testing.T) {
	t.Parallel()

	message, hoverError := HoverMessage(condaSequence(), "conda")
	if hoverError != nil {
		t.Fatalf("unexpected error: %v", hoverError)
	}
	if !strings.HasPrefix(message, "`conda`\n\n> Package manager.") {
		t.Fatalf("message = %q", message)
	}
	if strings.Contains(message, "{{") || strings.Contains(message, "# conda") {
		t.Fatalf("tldr markup not stripped: %q", message)
	}
	if !strings.Contains(message, "    `conda create --name env_name`\n\n") {
		t.Fatalf("example line not indented: %q", message)
	}
}

func TestFormatters(t *testing.T) {
	t.Parallel()

	if FormatUsage("  \n ") != "" || FormatTldr("") != "" || FormatDescription(" ") != "" {
		t.Fatalf("blank input must format to empty text")
	}
	if actual := FormatUsage("a\nb"); actual != "\n\nUsage:\n\n     a\n     b\n\n\n" {
		t.Fatalf("FormatUsage = %q", actual)
	}
	if actual := FormatDescription("  described  "); actual != "\n\ndescribed" {
		t.Fatalf("FormatDescription = %q", actual)
	}
}
