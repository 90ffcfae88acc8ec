//go:build cgo

package analyzer

import "github.com/temirov/shellhint/internal/syntax"

func init() {
	testBackends = append(testBackends, parserBackend{
		name:      "tree_sitter",
		newParser: func() syntax.Parser { return syntax.NewTreeSitterParser() },
	})
}
