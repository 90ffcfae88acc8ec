// Package config loads the shellhint configuration files and resolves them
// into validated runtime settings.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/temirov/shellhint/internal/assist"
	"github.com/temirov/shellhint/internal/metadata"
	"github.com/temirov/shellhint/internal/syntax"
	"github.com/temirov/shellhint/internal/types"
	"github.com/temirov/shellhint/internal/utils"
)

const (
	defaultMinimumFallbackLength = 3
	defaultCacheEntries          = 4096
	defaultScannerExecutable     = "h2o"
	defaultScannerTimeout        = 10 * time.Second
	defaultRatePerSecond         = 2.0
	defaultBurst                 = 4
	defaultServerAddress         = "127.0.0.1:0"
	defaultLogLevel              = "info"

	invalidSettingFormat = "%w: %v"
)

// ErrInvalidConfiguration indicates a configuration value outside its allowed range.
var ErrInvalidConfiguration = errors.New("config: invalid configuration")

var settingsValidator = validator.New()

// DefaultScannerArguments are passed to the scanner when none are configured.
func DefaultScannerArguments() []string {
	return []string{"--command", metadata.NamePlaceholder, "--format", "json"}
}

// Settings are the resolved runtime values with every default applied.
type Settings struct {
	MinimumFallbackLength int              `validate:"gte=0"`
	FallbackMatch         assist.MatchMode `validate:"oneof=prefix subsequence"`
	SubsequenceFilter     bool
	StorePath             string `validate:"required"`
	CacheEntries          int64  `validate:"gt=0"`
	ScannerExecutable     string
	ScannerArguments      []string
	ScannerTimeout        time.Duration `validate:"gt=0"`
	RatePerSecond         float64       `validate:"gt=0"`
	Burst                 int           `validate:"gt=0"`
	ServerAddress         string        `validate:"required"`
	SyntaxBackend         string        `validate:"oneof=auto tree-sitter shell"`
	OutputFormat          string        `validate:"oneof=raw json xml"`
	Clipboard             bool
	LogLevel              string `validate:"oneof=debug info warn error"`
}

// Resolve applies defaults to the loaded configuration and validates the result.
func (config ApplicationConfiguration) Resolve() (Settings, error) {
	settings := Settings{
		MinimumFallbackLength: defaultMinimumFallbackLength,
		FallbackMatch:         assist.MatchPrefix,
		SubsequenceFilter:     true,
		CacheEntries:          defaultCacheEntries,
		ScannerExecutable:     defaultScannerExecutable,
		ScannerArguments:      DefaultScannerArguments(),
		ScannerTimeout:        defaultScannerTimeout,
		RatePerSecond:         defaultRatePerSecond,
		Burst:                 defaultBurst,
		ServerAddress:         defaultServerAddress,
		SyntaxBackend:         syntax.BackendAutomatic,
		OutputFormat:          types.FormatRaw,
		LogLevel:              defaultLogLevel,
	}

	if config.Completion.MinimumFallbackLength != nil {
		settings.MinimumFallbackLength = *config.Completion.MinimumFallbackLength
	}
	if config.Completion.FallbackMatch != "" {
		matchMode, parseError := assist.ParseMatchMode(config.Completion.FallbackMatch)
		if parseError != nil {
			return Settings{}, fmt.Errorf(invalidSettingFormat, ErrInvalidConfiguration, parseError)
		}
		settings.FallbackMatch = matchMode
	}
	if config.Completion.SubsequenceFilter != nil {
		settings.SubsequenceFilter = *config.Completion.SubsequenceFilter
	}

	storePath := config.Store.Path
	if storePath == "" {
		storePath = filepath.Join("~", utils.GlobalConfigDirectoryName, utils.DefaultStoreDirectoryName)
	}
	expandedStorePath, expandError := utils.ExpandHomePath(storePath)
	if expandError != nil {
		return Settings{}, expandError
	}
	settings.StorePath = expandedStorePath
	if config.Store.CacheEntries != nil {
		settings.CacheEntries = *config.Store.CacheEntries
	}

	if config.Scanner.Executable != "" {
		settings.ScannerExecutable = config.Scanner.Executable
	}
	if len(config.Scanner.Arguments) > 0 {
		settings.ScannerArguments = append([]string{}, config.Scanner.Arguments...)
	}
	if config.Scanner.Timeout != "" {
		timeout, parseError := time.ParseDuration(config.Scanner.Timeout)
		if parseError != nil {
			return Settings{}, fmt.Errorf(invalidSettingFormat, ErrInvalidConfiguration, parseError)
		}
		settings.ScannerTimeout = timeout
	}
	if config.Scanner.RatePerSecond != nil {
		settings.RatePerSecond = *config.Scanner.RatePerSecond
	}
	if config.Scanner.Burst != nil {
		settings.Burst = *config.Scanner.Burst
	}

	if config.Server.Address != "" {
		settings.ServerAddress = config.Server.Address
	}
	if config.Syntax.Backend != "" {
		settings.SyntaxBackend = config.Syntax.Backend
	}
	if config.Output.Format != "" {
		settings.OutputFormat = config.Output.Format
	}
	if config.Output.Clipboard != nil {
		settings.Clipboard = *config.Output.Clipboard
	}
	if config.Logging.Level != "" {
		settings.LogLevel = config.Logging.Level
	}

	if validationError := settingsValidator.Struct(settings); validationError != nil {
		return Settings{}, fmt.Errorf(invalidSettingFormat, ErrInvalidConfiguration, validationError)
	}
	return settings, nil
}

// FallbackPolicy returns the command-name fallback policy of settings.
func (settings Settings) FallbackPolicy() assist.FallbackPolicy {
	return assist.FallbackPolicy{MinimumLength: settings.MinimumFallbackLength, Match: settings.FallbackMatch}
}
