// Package utils contains helpers shared by the command line and the servers.
package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const homePrefix = "~"

// DeduplicateStrings removes duplicate and blank entries while preserving order.
// The first occurrence of each unique value is kept.
func DeduplicateStrings(values []string) []string {
	encounteredValues := make(map[string]struct{})
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmedValue := strings.TrimSpace(value)
		if trimmedValue == "" {
			continue
		}
		if _, exists := encounteredValues[trimmedValue]; !exists {
			encounteredValues[trimmedValue] = struct{}{}
			result = append(result, trimmedValue)
		}
	}
	return result
}

// ExpandHomePath replaces a leading "~" with the user's home directory.
func ExpandHomePath(path string) (string, error) {
	if path != homePrefix && !strings.HasPrefix(path, homePrefix+string(filepath.Separator)) && !strings.HasPrefix(path, homePrefix+"/") {
		return path, nil
	}
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return "", fmt.Errorf("resolve home directory for %s: %w", path, homeError)
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(path, homePrefix)), nil
}

// ReadDocument returns the content of path, or of standard input when path is
// StandardInputPath or empty.
//
// #nosec G304
func ReadDocument(path string, standardInput io.Reader) (string, error) {
	if path == "" || path == StandardInputPath {
		content, readError := io.ReadAll(standardInput)
		if readError != nil {
			return "", fmt.Errorf("read standard input: %w", readError)
		}
		return string(content), nil
	}
	content, readError := os.ReadFile(path)
	if readError != nil {
		return "", fmt.Errorf("read document %s: %w", path, readError)
	}
	return string(content), nil
}
