package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/shellhint/internal/config"
)

const (
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Writes the default configuration to ./.shellhint.yaml, or to
~/.shellhint/config.yaml with --global. Existing files are kept unless --force
is given.`
	initGlobalDescription = "write the global configuration instead of the local one"
	initForceDescription  = "overwrite an existing configuration file"

	initWrittenFormat = "configuration written to %s\n"
)

func createInitCommand(application *applicationState) *cobra.Command {
	var global bool
	var force bool
	command := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destination, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			_, writeError := fmt.Fprintf(command.OutOrStdout(), initWrittenFormat, destination)
			return writeError
		},
	}
	registerBooleanFlag(command.Flags(), &global, globalFlagName, false, initGlobalDescription)
	registerBooleanFlag(command.Flags(), &force, forceFlagName, false, initForceDescription)
	return command
}
