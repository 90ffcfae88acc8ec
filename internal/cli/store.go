package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/shellhint/internal/metadata"
	"github.com/temirov/shellhint/internal/utils"
)

const (
	importUse              = "import <bundle> [bundle...]"
	importShortDescription = "import command specifications from bundle files"
	importLongDescription  = `Loads command specifications from JSON or YAML bundles, optionally gzip
compressed, into the store. Commands already stored are skipped unless --force
is given.`
	importForceDescription = "replace specifications that are already stored"

	removeUse              = "remove <name> [name...]"
	removeShortDescription = "delete stored command specifications"

	namesUse              = "names"
	namesShortDescription = "list stored command names"

	scanUse              = "scan <name>"
	scanShortDescription = "run the help scanner for a command and store the result"

	importedLineFormat = "imported %s\n"
	skippedLineFormat  = "skipped %s (already stored)\n"
	removedLineFormat  = "removed %s\n"
	scannedLineFormat  = "scanned %s: %d subcommands, %d options\n"

	logFieldBundle     = "bundle"
	logFieldImported   = "imported"
	logFieldSkipped    = "skipped"
	logMessageImported = "bundle imported"
)

func createImportCommand(application *applicationState) *cobra.Command {
	var force bool
	command := &cobra.Command{
		Use:   importUse,
		Short: importShortDescription,
		Long:  importLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			runtimeServices, openError := application.openServices(nil)
			if openError != nil {
				return openError
			}
			defer runtimeServices.Close()

			writer := command.OutOrStdout()
			for _, bundlePath := range utils.DeduplicateStrings(arguments) {
				expandedPath, expandError := utils.ExpandHomePath(bundlePath)
				if expandError != nil {
					return expandError
				}
				report, importError := metadata.ImportBundle(runtimeServices.store, expandedPath, force)
				for _, name := range report.Imported {
					fmt.Fprintf(writer, importedLineFormat, name)
				}
				for _, name := range report.Skipped {
					fmt.Fprintf(writer, skippedLineFormat, name)
				}
				if importError != nil {
					return importError
				}
				application.logger.Debug(logMessageImported,
					zap.String(logFieldBundle, expandedPath),
					zap.Int(logFieldImported, len(report.Imported)),
					zap.Int(logFieldSkipped, len(report.Skipped)),
				)
			}
			return nil
		},
	}
	registerBooleanFlag(command.Flags(), &force, forceFlagName, false, importForceDescription)
	return command
}

func createRemoveCommand(application *applicationState) *cobra.Command {
	return &cobra.Command{
		Use:   removeUse,
		Short: removeShortDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			runtimeServices, openError := application.openServices(nil)
			if openError != nil {
				return openError
			}
			defer runtimeServices.Close()

			for _, name := range utils.DeduplicateStrings(arguments) {
				if removeError := runtimeServices.fetcher.Remove(name); removeError != nil {
					return removeError
				}
				fmt.Fprintf(command.OutOrStdout(), removedLineFormat, name)
			}
			return nil
		},
	}
}

func createNamesCommand(application *applicationState) *cobra.Command {
	return &cobra.Command{
		Use:   namesUse,
		Short: namesShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			runtimeServices, openError := application.openServices(nil)
			if openError != nil {
				return openError
			}
			defer runtimeServices.Close()

			names, namesError := runtimeServices.fetcher.Names(command.Context())
			if namesError != nil {
				return namesError
			}
			for _, name := range names {
				fmt.Fprintln(command.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func createScanCommand(application *applicationState) *cobra.Command {
	return &cobra.Command{
		Use:   scanUse,
		Short: scanShortDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			runtimeServices, openError := application.openServices(nil)
			if openError != nil {
				return openError
			}
			defer runtimeServices.Close()

			scanned, scanError := runtimeServices.fetcher.Scan(command.Context(), arguments[0])
			if scanError != nil {
				return scanError
			}
			fmt.Fprintf(command.OutOrStdout(), scannedLineFormat, scanned.Name, len(scanned.Subcommands), len(scanned.Options))
			return nil
		},
	}
}
