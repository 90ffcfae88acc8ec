// Package geometry provides line/character coordinates and the comparisons used
// to map an editor cursor onto a syntax tree.
package geometry

import (
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// MaximumCoordinate bounds translated coordinates.
const MaximumCoordinate = math.MaxInt32

// Position is a zero-based line and UTF-16 character offset.
type Position struct {
	Line      int `json:"line" xml:"line"`
	Character int `json:"character" xml:"character"`
}

// Range spans Start to End, both inclusive for containment checks.
type Range struct {
	Start Position `json:"start" xml:"start"`
	End   Position `json:"end" xml:"end"`
}

// NewPosition constructs a Position.
func NewPosition(line int, character int) Position {
	return Position{Line: line, Character: character}
}

// NewRange constructs a Range from its four coordinates.
func NewRange(startLine int, startCharacter int, endLine int, endCharacter int) Range {
	return Range{Start: NewPosition(startLine, startCharacter), End: NewPosition(endLine, endCharacter)}
}

// Compare orders positions line first, character second.
// It returns -1, 0 or 1.
func Compare(left Position, right Position) int {
	switch {
	case left.Line < right.Line:
		return -1
	case left.Line > right.Line:
		return 1
	case left.Character < right.Character:
		return -1
	case left.Character > right.Character:
		return 1
	default:
		return 0
	}
}

// IsBefore reports whether left precedes right.
func IsBefore(left Position, right Position) bool {
	return Compare(left, right) < 0
}

// IsBeforeOrEqual reports whether left precedes or equals right.
func IsBeforeOrEqual(left Position, right Position) bool {
	return Compare(left, right) <= 0
}

// Contains reports whether position lies within range, endpoints included.
func Contains(container Range, position Position) bool {
	return IsBeforeOrEqual(container.Start, position) && IsBeforeOrEqual(position, container.End)
}

// Translate shifts position by the deltas, flooring each coordinate at zero.
func Translate(position Position, lineDelta int, characterDelta int) Position {
	return Position{
		Line:      clampCoordinate(position.Line + lineDelta),
		Character: clampCoordinate(position.Character + characterDelta),
	}
}

func clampCoordinate(value int) int {
	if value < 0 {
		return 0
	}
	if value > MaximumCoordinate {
		return MaximumCoordinate
	}
	return value
}

// LineAt returns the text of line lineIndex including its trailing newline when present.
// lineIndex must address an existing line.
func LineAt(document string, lineIndex int) string {
	lineStart := 0
	for currentLine := 0; currentLine < lineIndex; currentLine++ {
		newlineOffset := strings.IndexByte(document[lineStart:], '\n')
		if newlineOffset < 0 {
			return ""
		}
		lineStart += newlineOffset + 1
	}
	newlineOffset := strings.IndexByte(document[lineStart:], '\n')
	if newlineOffset < 0 {
		return document[lineStart:]
	}
	return document[lineStart : lineStart+newlineOffset+1]
}

// UTF16Length counts the UTF-16 code units of text.
func UTF16Length(text string) int {
	length := 0
	for _, character := range text {
		length += utf16.RuneLen(character)
	}
	return length
}

// ByteColumnToUTF16 converts a byte column within line to a UTF-16 character offset.
// Columns beyond the line are extended by their byte overhang.
func ByteColumnToUTF16(line string, byteColumn int) int {
	if byteColumn <= len(line) {
		return UTF16Length(line[:byteColumn])
	}
	return UTF16Length(line) + byteColumn - len(line)
}

// UTF16ToByteColumn converts a UTF-16 character offset within line to a byte column.
// Offsets beyond the line are extended by their overhang.
func UTF16ToByteColumn(line string, character int) int {
	consumed := 0
	for byteIndex, value := range line {
		if consumed >= character {
			return byteIndex
		}
		consumed += utf16.RuneLen(value)
	}
	if consumed >= character {
		return len(line)
	}
	return len(line) + character - consumed
}

// LineIndex caches line start offsets of a document for offset conversions.
type LineIndex struct {
	text       string
	lineStarts []int
}

// NewLineIndex indexes text.
func NewLineIndex(text string) LineIndex {
	lineStarts := []int{0}
	for offset := 0; offset < len(text); offset++ {
		if text[offset] == '\n' {
			lineStarts = append(lineStarts, offset+1)
		}
	}
	return LineIndex{text: text, lineStarts: lineStarts}
}

// LineCount reports the number of lines, counting a trailing empty line.
func (index LineIndex) LineCount() int {
	return len(index.lineStarts)
}

// Line returns the text of line lineIndex without its newline.
func (index LineIndex) Line(lineIndex int) string {
	if lineIndex < 0 || lineIndex >= len(index.lineStarts) {
		return ""
	}
	start := index.lineStarts[lineIndex]
	end := len(index.text)
	if lineIndex+1 < len(index.lineStarts) {
		end = index.lineStarts[lineIndex+1] - 1
	}
	return strings.TrimSuffix(index.text[start:end], "\r")
}

// PositionFromByteColumn converts a line and byte column to a Position.
func (index LineIndex) PositionFromByteColumn(line int, byteColumn int) Position {
	return Position{Line: line, Character: ByteColumnToUTF16(index.Line(line), byteColumn)}
}

// OffsetAt converts position to a byte offset, clamped to the document bounds.
func (index LineIndex) OffsetAt(position Position) int {
	if position.Line < 0 {
		return 0
	}
	if position.Line >= len(index.lineStarts) {
		return len(index.text)
	}
	lineText := index.Line(position.Line)
	byteColumn := UTF16ToByteColumn(lineText, position.Character)
	if byteColumn > len(lineText) {
		byteColumn = len(lineText)
	}
	return index.lineStarts[position.Line] + byteColumn
}

// PositionAt converts a byte offset to a Position.
func (index LineIndex) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(index.text) {
		offset = len(index.text)
	}
	line := 0
	for line+1 < len(index.lineStarts) && index.lineStarts[line+1] <= offset {
		line++
	}
	lineStart := index.lineStarts[line]
	for offset > lineStart && offset < len(index.text) && !utf8.RuneStart(index.text[offset]) {
		offset--
	}
	return Position{Line: line, Character: UTF16Length(index.text[lineStart:offset])}
}

// ByteColumnAt returns the byte column of position within its line.
func (index LineIndex) ByteColumnAt(position Position) int {
	return index.OffsetAt(position) - index.lineStarts[clampLine(position.Line, len(index.lineStarts))]
}

func clampLine(line int, lineCount int) int {
	if line < 0 {
		return 0
	}
	if line >= lineCount {
		return lineCount - 1
	}
	return line
}
