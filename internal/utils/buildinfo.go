package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	develBuildVersion  = "(devel)"
	gitExecutable      = "git"
	gitNotFoundMessage = "%s directory not found in or above %s"
)

// applicationVersion is set at link time:
// -ldflags "-X github.com/temirov/shellhint/internal/utils.applicationVersion=v1.2.3".
var applicationVersion string

// gitDescribeArguments are tried in order; the first non-empty answer wins.
var gitDescribeArguments = [][]string{
	{"describe", "--tags", "--exact-match"},
	{"describe", "--tags", "--long", "--dirty"},
}

// GetApplicationVersion reports the link-time version, then the module version
// from build info, then git describe output for development checkouts.
func GetApplicationVersion() string {
	if applicationVersion != "" {
		return applicationVersion
	}
	if buildInfo, available := debug.ReadBuildInfo(); available {
		if moduleVersion := buildInfo.Main.Version; moduleVersion != "" && moduleVersion != develBuildVersion {
			return moduleVersion
		}
	}
	repositoryRoot, findError := findRepositoryRoot(".")
	if findError != nil {
		return unknownVersion
	}
	for _, arguments := range gitDescribeArguments {
		// #nosec G204
		describeCommand := exec.Command(gitExecutable, arguments...)
		describeCommand.Dir = repositoryRoot
		describeOutput, describeError := describeCommand.Output()
		if describeError != nil {
			continue
		}
		if described := strings.TrimSpace(string(describeOutput)); described != "" {
			return described
		}
	}
	return unknownVersion
}

// findRepositoryRoot walks up from startDirectory to the directory holding .git.
func findRepositoryRoot(startDirectory string) (string, error) {
	absoluteStart, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", fmt.Errorf("resolve %s: %w", startDirectory, absoluteError)
	}
	for currentDirectory := absoluteStart; ; {
		if information, statError := os.Stat(filepath.Join(currentDirectory, GitDirectoryName)); statError == nil && information.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", fmt.Errorf(gitNotFoundMessage, GitDirectoryName, absoluteStart)
		}
		currentDirectory = parentDirectory
	}
}
