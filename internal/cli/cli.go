// Package cli provides the command line interface.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/temirov/shellhint/internal/services/clipboard"
	"github.com/temirov/shellhint/internal/types"
	"github.com/temirov/shellhint/internal/utils"
)

const (
	configFlagName        = "config"
	configFlagDescription = "configuration file (default ./" + utils.LocalConfigFileName + ")"
	storeFlagName         = "store"
	storeFlagDescription  = "command specification store directory"
	logLevelFlagName      = "log-level"
	logLevelDescription   = "log level written to standard error"
	formatFlagName        = "format"
	formatFlagDescription = "output format"
	copyFlagName          = "copy"
	copyFlagDescription   = "copy the rendered output to the clipboard"
	lineFlagName          = "line"
	lineFlagDescription   = "zero-based line of the cursor"
	characterFlagName     = "character"
	characterDescription  = "zero-based UTF-16 column of the cursor"
	forceFlagName         = "force"
	globalFlagName        = "global"
	addressFlagName       = "address"
	addressDescription    = "listen address for the HTTP API"

	versionTemplate      = "shellhint version: {{.Version}}\n"
	rootUse              = "shellhint"
	rootShortDescription = "shellhint command line interface"
	rootLongDescription  = `shellhint completes and describes shell commands.
It serves editors over the language server protocol on stdio, answers the same
queries over HTTP, and runs one-shot completion and hover lookups on files.
Command specifications are kept in a local store fed by bundle imports and a
help scanner.`
)

var supportedFormats = []string{types.FormatRaw, types.FormatJSON, types.FormatXML}

// dependencies are the process resources commands read from and write to.
type dependencies struct {
	standardInput  io.Reader
	standardOutput io.Writer
	copier         clipboard.Copier
}

// Execute runs the shellhint application.
func Execute() error {
	rootCommand := createRootCommand(dependencies{
		standardInput:  os.Stdin,
		standardOutput: os.Stdout,
		copier:         clipboard.NewService(),
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(deps dependencies) *cobra.Command {
	application := &applicationState{deps: deps}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.load(command)
		},
		PersistentPostRun: func(command *cobra.Command, arguments []string) {
			application.sync()
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.SetIn(deps.standardInput)
	rootCommand.SetOut(deps.standardOutput)

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&application.flags.configPath, configFlagName, "", configFlagDescription)
	persistentFlags.StringVar(&application.flags.storePath, storeFlagName, "", storeFlagDescription)
	persistentFlags.StringVar(&application.flags.logLevel, logLevelFlagName, "", logLevelDescription)

	rootCommand.AddCommand(
		createServeCommand(application),
		createHTTPCommand(application),
		createCompleteCommand(application),
		createHoverCommand(application),
		createImportCommand(application),
		createRemoveCommand(application),
		createNamesCommand(application),
		createScanCommand(application),
		createInitCommand(application),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}
