package metadata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/temirov/shellhint/internal/cmdspec"
)

const (
	gzipExtension = ".gz"
	jsonExtension = ".json"
	yamlExtension = ".yaml"
	ymlExtension  = ".yml"

	readBundleErrorFormat   = "read bundle %s: %w"
	decodeBundleErrorFormat = "decode bundle %s: %w"
	unsupportedBundleFormat = "%w: %s"
)

// ErrUnsupportedBundle indicates a bundle file with an unknown extension.
var ErrUnsupportedBundle = errors.New("metadata: unsupported bundle format")

// ImportReport lists the names written and skipped by an import.
type ImportReport struct {
	Imported []string
	Skipped  []string
}

// LoadBundle decodes the command specifications in path. JSON and YAML files
// are accepted, optionally gzip compressed.
func LoadBundle(path string) ([]cmdspec.Command, error) {
	file, openError := os.Open(path)
	if openError != nil {
		return nil, fmt.Errorf(readBundleErrorFormat, path, openError)
	}
	defer file.Close()

	var reader io.Reader = file
	extension := strings.ToLower(filepath.Ext(path))
	if extension == gzipExtension {
		gzipReader, gzipError := gzip.NewReader(file)
		if gzipError != nil {
			return nil, fmt.Errorf(readBundleErrorFormat, path, gzipError)
		}
		defer gzipReader.Close()
		reader = gzipReader
		extension = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}

	data, readError := io.ReadAll(reader)
	if readError != nil {
		return nil, fmt.Errorf(readBundleErrorFormat, path, readError)
	}

	var (
		commands    []cmdspec.Command
		decodeError error
	)
	switch extension {
	case jsonExtension:
		commands, decodeError = cmdspec.DecodeMany(data)
	case yamlExtension, ymlExtension:
		commands, decodeError = cmdspec.DecodeYAML(data)
	default:
		return nil, fmt.Errorf(unsupportedBundleFormat, ErrUnsupportedBundle, path)
	}
	if decodeError != nil {
		return nil, fmt.Errorf(decodeBundleErrorFormat, path, decodeError)
	}
	return commands, nil
}

// Import stores commands. Names already present are skipped unless force is set.
func (store *Store) Import(commands []cmdspec.Command, force bool) (ImportReport, error) {
	var report ImportReport
	for _, command := range commands {
		if !force {
			exists, hasError := store.Has(command.Name)
			if hasError != nil {
				return report, hasError
			}
			if exists {
				report.Skipped = append(report.Skipped, command.Name)
				continue
			}
		}
		if putError := store.Put(command); putError != nil {
			return report, putError
		}
		report.Imported = append(report.Imported, command.Name)
	}
	return report, nil
}

// ImportBundle loads the bundle at path into store.
func ImportBundle(store *Store, path string, force bool) (ImportReport, error) {
	commands, loadError := LoadBundle(path)
	if loadError != nil {
		return ImportReport{}, loadError
	}
	return store.Import(commands, force)
}
