package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/shellhint/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration mirrors the configuration file. Unset fields keep
// the value from a lower-priority source and finally the defaults of Resolve.
type ApplicationConfiguration struct {
	Completion CompletionConfiguration `mapstructure:"completion"`
	Store      StoreConfiguration      `mapstructure:"store"`
	Scanner    ScannerConfiguration    `mapstructure:"scanner"`
	Server     ServerConfiguration     `mapstructure:"server"`
	Syntax     SyntaxConfiguration     `mapstructure:"syntax"`
	Output     OutputConfiguration     `mapstructure:"output"`
	Logging    LoggingConfiguration    `mapstructure:"logging"`
}

// CompletionConfiguration tunes completion candidates.
type CompletionConfiguration struct {
	MinimumFallbackLength *int   `mapstructure:"minimum_fallback_length"`
	FallbackMatch         string `mapstructure:"fallback_match"`
	SubsequenceFilter     *bool  `mapstructure:"subsequence_filter"`
}

// StoreConfiguration locates the command specification store.
type StoreConfiguration struct {
	Path         string `mapstructure:"path"`
	CacheEntries *int64 `mapstructure:"cache_entries"`
}

// ScannerConfiguration describes the external help scanner.
type ScannerConfiguration struct {
	Executable    string   `mapstructure:"executable"`
	Arguments     []string `mapstructure:"arguments"`
	Timeout       string   `mapstructure:"timeout"`
	RatePerSecond *float64 `mapstructure:"rate_per_second"`
	Burst         *int     `mapstructure:"burst"`
}

// ServerConfiguration configures the HTTP API.
type ServerConfiguration struct {
	Address string `mapstructure:"address"`
}

// SyntaxConfiguration selects the shell parser backend.
type SyntaxConfiguration struct {
	Backend string `mapstructure:"backend"`
}

// OutputConfiguration sets defaults for the complete and hover commands.
type OutputConfiguration struct {
	Format    string `mapstructure:"format"`
	Clipboard *bool  `mapstructure:"clipboard"`
}

// LoggingConfiguration sets the log level.
type LoggingConfiguration struct {
	Level string `mapstructure:"level"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Completion = result.Completion.merge(override.Completion)
	result.Store = result.Store.merge(override.Store)
	result.Scanner = result.Scanner.merge(override.Scanner)
	if override.Server.Address != "" {
		result.Server.Address = override.Server.Address
	}
	if override.Syntax.Backend != "" {
		result.Syntax.Backend = override.Syntax.Backend
	}
	result.Output = result.Output.merge(override.Output)
	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	return result
}

func (config CompletionConfiguration) merge(override CompletionConfiguration) CompletionConfiguration {
	result := config
	result.MinimumFallbackLength = clonePointer(config.MinimumFallbackLength)
	result.SubsequenceFilter = clonePointer(config.SubsequenceFilter)
	if override.MinimumFallbackLength != nil {
		result.MinimumFallbackLength = clonePointer(override.MinimumFallbackLength)
	}
	if override.FallbackMatch != "" {
		result.FallbackMatch = override.FallbackMatch
	}
	if override.SubsequenceFilter != nil {
		result.SubsequenceFilter = clonePointer(override.SubsequenceFilter)
	}
	return result
}

func (config StoreConfiguration) merge(override StoreConfiguration) StoreConfiguration {
	result := config
	result.CacheEntries = clonePointer(config.CacheEntries)
	if override.Path != "" {
		result.Path = override.Path
	}
	if override.CacheEntries != nil {
		result.CacheEntries = clonePointer(override.CacheEntries)
	}
	return result
}

func (config ScannerConfiguration) merge(override ScannerConfiguration) ScannerConfiguration {
	result := config
	result.Arguments = cloneStrings(config.Arguments)
	result.RatePerSecond = clonePointer(config.RatePerSecond)
	result.Burst = clonePointer(config.Burst)
	if override.Executable != "" {
		result.Executable = override.Executable
	}
	if len(override.Arguments) > 0 {
		result.Arguments = cloneStrings(override.Arguments)
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	if override.RatePerSecond != nil {
		result.RatePerSecond = clonePointer(override.RatePerSecond)
	}
	if override.Burst != nil {
		result.Burst = clonePointer(override.Burst)
	}
	return result
}

func (config OutputConfiguration) merge(override OutputConfiguration) OutputConfiguration {
	result := config
	result.Clipboard = clonePointer(config.Clipboard)
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Clipboard != nil {
		result.Clipboard = clonePointer(override.Clipboard)
	}
	return result
}

func clonePointer[T any](value *T) *T {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string{}, values...)
}
