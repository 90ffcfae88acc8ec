package cmdspec

import (
	"reflect"
	"testing"
)

func tarSequence() []Command {
	return []Command{{
		Name:        "tar",
		Description: "archiving utility",
		Options: []Option{
			{Names: []string{"-x", "--extract"}, Description: "extract files from an archive"},
			{Names: []string{"-v", "--verbose"}, Description: "verbosely list files processed"},
			{Names: []string{"-f", "--file"}, Argument: "ARCHIVE", Description: "use archive file"},
			{Names: []string{"-C", "--directory"}, Argument: "DIR", Description: "change to DIR"},
		},
	}}
}

func optionHeads(options []Option) []string {
	heads := make([]string, 0, len(options))
	for _, option := range options {
		heads = append(heads, option.Names[0])
	}
	return heads
}

func TestUnstackOptionDeduplicatesInOrder(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "repeat_collapsed", input: "-xvfx", expected: []string{"-x", "-v", "-f"}},
		{name: "plain_cluster", input: "-xvf", expected: []string{"-x", "-v", "-f"}},
		{name: "attached_argument", input: "-oout", expected: []string{"-o", "-u", "-t"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			actual := UnstackOption(testCase.input)
			if !reflect.DeepEqual(actual, testCase.expected) {
				t.Fatalf("UnstackOption(%q) = %v, want %v", testCase.input, actual, testCase.expected)
			}
			if again := UnstackOption("-" + joinShortNames(actual)); !reflect.DeepEqual(again, actual) {
				t.Fatalf("unstacking is not stable: %v then %v", actual, again)
			}
		})
	}
}

func joinShortNames(shortNames []string) string {
	joined := ""
	for _, shortName := range shortNames {
		joined += shortName[1:]
	}
	return joined
}

func TestIsOldStyle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "cluster", input: "-xvf", expected: true},
		{name: "single_short", input: "-x", expected: false},
		{name: "long", input: "--extract", expected: false},
		{name: "word", input: "install", expected: false},
		{name: "java_style", input: "-version", expected: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			if actual := IsOldStyle(testCase.input); actual != testCase.expected {
				t.Fatalf("IsOldStyle(%q) = %t, want %t", testCase.input, actual, testCase.expected)
			}
		})
	}
}

func TestMatchOption(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		token    string
		expected []string
	}{
		{name: "exact_long", token: "--verbose", expected: []string{"-v"}},
		{name: "exact_with_value", token: "--file=archive.tar", expected: []string{"-f"}},
		{name: "stacked", token: "-xvf", expected: []string{"-x", "-v", "-f"}},
		{name: "attached_argument", token: "-Cbuild", expected: []string{"-C"}},
		{name: "unknown_cluster", token: "-qz", expected: []string{}},
		{name: "unknown_long", token: "--nothing", expected: []string{}},
		{name: "not_an_option", token: "archive.tar", expected: []string{}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			actual := optionHeads(MatchOption(testCase.token, tarSequence()))
			if !reflect.DeepEqual(actual, testCase.expected) {
				t.Fatalf("MatchOption(%q) = %v, want %v", testCase.token, actual, testCase.expected)
			}
		})
	}
}

func TestMergedOptionsOrder(t *testing.T) {
	t.Parallel()

	sequence := []Command{
		{
			Name:             "git",
			Options:          []Option{{Names: []string{"--version"}}},
			InheritedOptions: []Option{{Names: []string{"-C"}, Argument: "PATH"}},
		},
		{
			Name:             "commit",
			Options:          []Option{{Names: []string{"-m", "--message"}, Argument: "MSG"}},
			InheritedOptions: []Option{{Names: []string{"--no-pager"}}},
		},
	}

	expected := []string{"-m", "-C", "--no-pager"}
	if actual := optionHeads(MergedOptions(sequence)); !reflect.DeepEqual(actual, expected) {
		t.Fatalf("MergedOptions = %v, want %v", actual, expected)
	}
	if merged := MergedOptions(nil); merged != nil {
		t.Fatalf("expected nil for empty sequence, got %v", merged)
	}
}
