//go:build cgo

package syntax

import (
	"context"
	"testing"

	"github.com/temirov/shellhint/internal/geometry"
)

func TestTreeSitterParserIncrementalEdit(t *testing.T) {
	t.Parallel()

	parser := NewTreeSitterParser()
	original := "git sta"
	tree, parseError := parser.Parse(context.Background(), original, nil)
	if parseError != nil {
		t.Fatalf("parse: %v", parseError)
	}
	command := tree.Root().FirstNamedChild()
	if command == nil || command.Type() != CommandNodeType {
		t.Fatalf("expected command, got %v", command)
	}
	if name := command.FirstNamedChild(); name == nil || name.Type() != CommandNameNodeType || name.Text() != "git" {
		t.Fatalf("unexpected command name %v", name)
	}

	updated, delta := ApplyEdit(original, geometry.NewRange(0, 7, 0, 7), "tus -s")
	tree.Edit(delta)
	reparsed, reparseError := parser.Parse(context.Background(), updated, tree)
	if reparseError != nil {
		t.Fatalf("reparse: %v", reparseError)
	}
	if reparsed.Source() != "git status -s" {
		t.Fatalf("source = %q", reparsed.Source())
	}
	lastArgument := reparsed.Root().FirstNamedChild().Children()
	if text := lastArgument[len(lastArgument)-1].Text(); text != "-s" {
		t.Fatalf("last argument = %q", text)
	}
}
