//go:build !cgo

package syntax

// newTreeSitterParser returns nil when cgo is unavailable so NewParser falls
// back to the pure Go shell parser.
func newTreeSitterParser() Parser {
	return nil
}
