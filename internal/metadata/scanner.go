package metadata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/temirov/shellhint/internal/cmdspec"
)

// NamePlaceholder is replaced by the scanned command name in scanner arguments.
const NamePlaceholder = "{name}"

const (
	defaultScanTimeout = 10 * time.Second

	scannerNotConfiguredMessage = "scanner executable not configured"
	scannerMissingFormat        = "%w: %s: %v"
	scannerTimeoutFormat        = "scan %s: timeout after %s: %w"
	scannerFailedFormat         = "scan %s: %v, output: %s"
	scannerEmptyOutputFormat    = "scan %s: scanner returned empty output"
	scannerDecodeFormat         = "scan %s: %w"
)

// ErrScannerUnavailable indicates that the help scanner cannot be executed.
var ErrScannerUnavailable = errors.New("metadata: help scanner unavailable")

// Scanner produces a command specification by inspecting the command's help text.
type Scanner interface {
	Scan(ctx context.Context, name string) (cmdspec.Command, error)
}

// ScannerFunc adapts a function to Scanner.
type ScannerFunc func(ctx context.Context, name string) (cmdspec.Command, error)

// Scan calls scannerFunc.
func (scannerFunc ScannerFunc) Scan(ctx context.Context, name string) (cmdspec.Command, error) {
	return scannerFunc(ctx, name)
}

// ProcessScanner runs an external help scanner that prints a JSON command
// specification on stdout.
type ProcessScanner struct {
	Executable string
	Arguments  []string
	Timeout    time.Duration
}

// Scan runs the scanner for name and decodes its output.
func (scanner ProcessScanner) Scan(ctx context.Context, name string) (cmdspec.Command, error) {
	executable := strings.TrimSpace(scanner.Executable)
	if executable == "" {
		return cmdspec.Command{}, fmt.Errorf("%w: %s", ErrScannerUnavailable, scannerNotConfiguredMessage)
	}
	resolvedExecutable, lookupError := exec.LookPath(executable)
	if lookupError != nil {
		return cmdspec.Command{}, fmt.Errorf(scannerMissingFormat, ErrScannerUnavailable, executable, lookupError)
	}

	timeout := scanner.Timeout
	if timeout <= 0 {
		timeout = defaultScanTimeout
	}
	scanContext, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	command := exec.CommandContext(scanContext, resolvedExecutable, scanner.argumentsFor(name)...)
	var standardError bytes.Buffer
	command.Stderr = &standardError

	outputBytes, runError := command.Output()
	if errors.Is(scanContext.Err(), context.DeadlineExceeded) {
		return cmdspec.Command{}, fmt.Errorf(scannerTimeoutFormat, name, timeout, scanContext.Err())
	}
	if runError != nil {
		return cmdspec.Command{}, fmt.Errorf(scannerFailedFormat, name, runError, strings.TrimSpace(standardError.String()))
	}
	if len(bytes.TrimSpace(outputBytes)) == 0 {
		return cmdspec.Command{}, fmt.Errorf(scannerEmptyOutputFormat, name)
	}

	specification, decodeError := cmdspec.Decode(outputBytes)
	if decodeError != nil {
		return cmdspec.Command{}, fmt.Errorf(scannerDecodeFormat, name, decodeError)
	}
	return specification, nil
}

func (scanner ProcessScanner) argumentsFor(name string) []string {
	arguments := make([]string, 0, len(scanner.Arguments))
	for _, argument := range scanner.Arguments {
		arguments = append(arguments, strings.ReplaceAll(argument, NamePlaceholder, name))
	}
	return arguments
}
