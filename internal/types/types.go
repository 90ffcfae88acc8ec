// Package types defines every cross‑package data structure produced by the shellhint CLI and servers.
package types

import (
	"encoding/xml"

	"github.com/temirov/shellhint/internal/geometry"
)

const (
	CommandServe    = "serve"
	CommandHTTP     = "http"
	CommandComplete = "complete"
	CommandHover    = "hover"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"

	CandidateKindSubcommand = "subcommand"
	CandidateKindOption     = "option"
	CandidateKindCommand    = "command"
)

// Candidate is one completion proposal.
type Candidate struct {
	Label      string `json:"label" xml:"label"`
	Detail     string `json:"detail,omitempty" xml:"detail,omitempty"`
	SortText   string `json:"sortText" xml:"sortText"`
	InsertText string `json:"insertText,omitempty" xml:"insertText,omitempty"`
	Kind       string `json:"kind" xml:"kind,attr"`
	IsSnippet  bool   `json:"snippet,omitempty" xml:"snippet,attr,omitempty"`
}

// Hover is a markdown message describing the token under the cursor.
type Hover struct {
	Markdown string          `json:"markdown" xml:"markdown"`
	Range    *geometry.Range `json:"range,omitempty" xml:"range,omitempty"`
}

// CompletionOutput is the result of the complete command.
type CompletionOutput struct {
	XMLName    xml.Name    `json:"-" xml:"completion"`
	Line       int         `json:"line" xml:"line,attr"`
	Character  int         `json:"character" xml:"character,attr"`
	Candidates []Candidate `json:"candidates" xml:"candidates>candidate"`
}

// HoverOutput is the result of the hover command.
type HoverOutput struct {
	XMLName   xml.Name `json:"-" xml:"hover"`
	Line      int      `json:"line" xml:"line,attr"`
	Character int      `json:"character" xml:"character,attr"`
	Found     bool     `json:"found" xml:"found,attr"`
	Hover     *Hover   `json:"hover,omitempty" xml:"result,omitempty"`
}
