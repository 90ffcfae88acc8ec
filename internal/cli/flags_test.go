package cli

import (
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

func TestRegisterBooleanFlagParsesValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		defaultValue bool
		arguments    []string
		expected     bool
		expectError  bool
	}{
		{name: "defaults_to_false", arguments: []string{}, expected: false},
		{name: "sets_true_without_value", arguments: []string{"--copy"}, expected: true},
		{name: "sets_false_with_equals", defaultValue: true, arguments: []string{"--copy=false"}, expected: false},
		{name: "sets_false_with_no_literal", defaultValue: true, arguments: []string{"--copy", "no"}, expected: false},
		{name: "sets_true_with_on_literal", arguments: []string{"--copy", "on"}, expected: true},
		{name: "ignores_non_boolean_trailing_value", arguments: []string{"--copy", "script.sh"}, expected: true},
		{name: "rejects_invalid_literal", arguments: []string{"--copy=maybe"}, expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "boolean-test"}
			flagValue := !testCase.defaultValue
			registerBooleanFlag(command.Flags(), &flagValue, copyFlagName, testCase.defaultValue, copyFlagDescription)
			parseError := command.ParseFlags(normalizeBooleanFlagArguments(command, testCase.arguments))
			if testCase.expectError {
				if parseError == nil {
					t.Fatalf("expected parse error for arguments %v", testCase.arguments)
				}
				return
			}
			if parseError != nil {
				t.Fatalf("unexpected parse error: %v", parseError)
			}
			if flagValue != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, flagValue)
			}
		})
	}
}

func TestRegisterChoiceFlag(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		arguments   []string
		expected    string
		expectError bool
	}{
		{name: "default", arguments: []string{}, expected: "raw"},
		{name: "lower_case", arguments: []string{"--format", "json"}, expected: "json"},
		{name: "normalizes_case", arguments: []string{"--format=XML"}, expected: "xml"},
		{name: "rejects_unknown", arguments: []string{"--format", "toon"}, expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "choice-test"}
			var format string
			registerChoiceFlag(command.Flags(), &format, formatFlagName, "raw", supportedFormats, formatFlagDescription)
			parseError := command.ParseFlags(testCase.arguments)
			if testCase.expectError {
				if parseError == nil {
					t.Fatalf("expected parse error for arguments %v", testCase.arguments)
				}
				return
			}
			if parseError != nil {
				t.Fatalf("unexpected parse error: %v", parseError)
			}
			if format != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, format)
			}
		})
	}
}

func TestNormalizeBooleanFlagArgumentsStopsAtTerminator(t *testing.T) {
	t.Parallel()

	rootCommand := createRootCommand(dependencies{})
	arguments := []string{"complete", "--copy", "yes", "--", "--copy", "no"}
	expected := []string{"complete", "--copy=yes", "--", "--copy", "no"}
	if normalized := normalizeBooleanFlagArguments(rootCommand, arguments); !reflect.DeepEqual(normalized, expected) {
		t.Fatalf("normalized = %v, want %v", normalized, expected)
	}
}
