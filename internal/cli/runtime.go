package cli

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/shellhint/internal/analyzer"
	"github.com/temirov/shellhint/internal/config"
	"github.com/temirov/shellhint/internal/metadata"
	"github.com/temirov/shellhint/internal/syntax"
	"github.com/temirov/shellhint/internal/utils"
)

const (
	loadConfigurationErrorFormat = "load configuration: %w"
	createLoggerErrorFormat      = "create logger: %w"
	openStoreErrorFormat         = "open store: %w"
	createParserErrorFormat      = "create parser: %w"

	logFieldStore   = "store"
	logFieldBackend = "backend"
	logFieldScanner = "scanner"

	logMessageServicesReady = "services ready"
)

// applicationFlags hold the persistent flag values of the root command.
type applicationFlags struct {
	configPath string
	storePath  string
	logLevel   string
}

// applicationState carries what PersistentPreRunE resolved to the subcommands.
type applicationState struct {
	deps     dependencies
	flags    applicationFlags
	settings config.Settings
	logger   *zap.Logger
}

// services are the long-lived components behind every query command.
type services struct {
	store    *metadata.Store
	fetcher  *metadata.Fetcher
	parser   syntax.Parser
	analyzer *analyzer.Analyzer
}

func (application *applicationState) load(command *cobra.Command) error {
	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: application.flags.configPath})
	if loadError != nil {
		return fmt.Errorf(loadConfigurationErrorFormat, loadError)
	}
	if application.flags.storePath != "" {
		loaded.Store.Path = application.flags.storePath
	}
	if application.flags.logLevel != "" {
		loaded.Logging.Level = application.flags.logLevel
	}
	settings, resolveError := loaded.Resolve()
	if resolveError != nil {
		return fmt.Errorf(loadConfigurationErrorFormat, resolveError)
	}
	logger, loggerError := utils.NewApplicationLogger(settings.LogLevel)
	if loggerError != nil {
		return fmt.Errorf(createLoggerErrorFormat, loggerError)
	}
	application.settings = settings
	application.logger = logger.Named(command.Name())
	return nil
}

func (application *applicationState) sync() {
	if application.logger != nil {
		_ = application.logger.Sync()
	}
}

// openServices opens the store and builds the analyzer. Lookup metrics go to
// registerer; nil leaves them unregistered.
func (application *applicationState) openServices(registerer prometheus.Registerer) (*services, error) {
	settings := application.settings
	store, storeError := metadata.OpenStore(metadata.StoreOptions{Path: settings.StorePath, CacheEntries: settings.CacheEntries})
	if storeError != nil {
		return nil, fmt.Errorf(openStoreErrorFormat, storeError)
	}
	parser, parserError := syntax.NewParser(settings.SyntaxBackend)
	if parserError != nil {
		return nil, errors.Join(fmt.Errorf(createParserErrorFormat, parserError), store.Close())
	}
	scanner := metadata.ProcessScanner{
		Executable: settings.ScannerExecutable,
		Arguments:  settings.ScannerArguments,
		Timeout:    settings.ScannerTimeout,
	}
	fetcher := metadata.NewFetcher(store, scanner, metadata.FetcherOptions{
		RatePerSecond: settings.RatePerSecond,
		Burst:         settings.Burst,
		Registerer:    registerer,
		Logger:        application.logger,
	})
	documentAnalyzer := analyzer.New(fetcher, parser, analyzer.Settings{
		Fallback:            settings.FallbackPolicy(),
		FilterBySubsequence: settings.SubsequenceFilter,
	}, application.logger)

	application.logger.Debug(logMessageServicesReady,
		zap.String(logFieldStore, settings.StorePath),
		zap.String(logFieldBackend, settings.SyntaxBackend),
		zap.String(logFieldScanner, settings.ScannerExecutable),
	)
	return &services{store: store, fetcher: fetcher, parser: parser, analyzer: documentAnalyzer}, nil
}

func (runtimeServices *services) Close() error {
	return runtimeServices.store.Close()
}
