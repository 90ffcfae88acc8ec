package syntax

import (
	"strings"

	"github.com/temirov/shellhint/internal/geometry"
)

// Point is a zero-based row and byte column.
type Point struct {
	Row    int
	Column int
}

// EditDelta describes one span replacement in byte and point coordinates.
type EditDelta struct {
	StartByte   int
	OldEndByte  int
	NewEndByte  int
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

// ApplyEdit replaces span of source with replacement and returns the new source
// with the delta describing the change. span uses UTF-16 character offsets.
func ApplyEdit(source string, span geometry.Range, replacement string) (string, EditDelta) {
	index := geometry.NewLineIndex(source)
	startByte := index.OffsetAt(span.Start)
	oldEndByte := index.OffsetAt(span.End)
	if oldEndByte < startByte {
		oldEndByte = startByte
	}
	updated := source[:startByte] + replacement + source[oldEndByte:]
	newEndByte := startByte + len(replacement)
	return updated, EditDelta{
		StartByte:   startByte,
		OldEndByte:  oldEndByte,
		NewEndByte:  newEndByte,
		StartPoint:  pointAt(source, startByte),
		OldEndPoint: pointAt(source, oldEndByte),
		NewEndPoint: pointAt(updated, newEndByte),
	}
}

func pointAt(source string, offset int) Point {
	prefix := source[:offset]
	row := strings.Count(prefix, "\n")
	column := offset
	if lastNewline := strings.LastIndexByte(prefix, '\n'); lastNewline >= 0 {
		column = offset - lastNewline - 1
	}
	return Point{Row: row, Column: column}
}
