// Package output renders completion and hover results for the command line.
package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/shellhint/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader = xml.Header

	separatorLine        = "----------------------------------------"
	completionHeaderForm = "----- COMPLETION %d:%d -----\n"
	hoverHeaderForm      = "----- HOVER %d:%d -----\n"
	candidateLineFormat  = "%s\t%s\t%s\n"
	rangeLineFormat      = "Range: %d:%d-%d:%d\n"
	noCandidatesLine     = "(no candidates)\n"
	noHoverLine          = "(nothing to describe)\n"
	insertLabel          = "Insert: "
)

// ErrUnsupportedFormat indicates an output format other than raw, json or xml.
var ErrUnsupportedFormat = errors.New("output: unsupported format")

// RenderCompletion renders data in format.
func RenderCompletion(format string, data types.CompletionOutput) (string, error) {
	switch format {
	case types.FormatRaw:
		return RenderCompletionRaw(data), nil
	case types.FormatJSON:
		return renderJSON(data)
	case types.FormatXML:
		return renderXML(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// RenderHover renders data in format.
func RenderHover(format string, data types.HoverOutput) (string, error) {
	switch format {
	case types.FormatRaw:
		return RenderHoverRaw(data), nil
	case types.FormatJSON:
		return renderJSON(data)
	case types.FormatXML:
		return renderXML(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// RenderCompletionRaw lists one tab separated candidate per line: label, kind, detail.
func RenderCompletionRaw(data types.CompletionOutput) string {
	var buffer bytes.Buffer
	buffer.WriteString(fmt.Sprintf(completionHeaderForm, data.Line, data.Character))
	if len(data.Candidates) == 0 {
		buffer.WriteString(noCandidatesLine)
		return buffer.String()
	}
	for _, candidate := range data.Candidates {
		buffer.WriteString(fmt.Sprintf(candidateLineFormat, candidate.Label, candidate.Kind, singleLine(candidate.Detail)))
		if candidate.InsertText != "" {
			buffer.WriteString(indentSpacer + insertLabel + candidate.InsertText + "\n")
		}
	}
	return buffer.String()
}

// RenderHoverRaw prints the hover markdown between separator lines.
func RenderHoverRaw(data types.HoverOutput) string {
	var buffer bytes.Buffer
	buffer.WriteString(fmt.Sprintf(hoverHeaderForm, data.Line, data.Character))
	if !data.Found || data.Hover == nil {
		buffer.WriteString(noHoverLine)
		return buffer.String()
	}
	if hoverRange := data.Hover.Range; hoverRange != nil {
		buffer.WriteString(fmt.Sprintf(rangeLineFormat, hoverRange.Start.Line, hoverRange.Start.Character, hoverRange.End.Line, hoverRange.End.Character))
	}
	buffer.WriteString(separatorLine + "\n")
	buffer.WriteString(strings.TrimRight(data.Hover.Markdown, "\n") + "\n")
	buffer.WriteString(separatorLine + "\n")
	return buffer.String()
}

func renderJSON(payload interface{}) (string, error) {
	encoded, jsonEncodeError := json.MarshalIndent(payload, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return "", jsonEncodeError
	}
	return string(encoded), nil
}

func renderXML(payload interface{}) (string, error) {
	encoded, xmlMarshalError := xml.MarshalIndent(payload, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded), nil
}

func singleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
