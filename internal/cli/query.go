package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/shellhint/internal/geometry"
	"github.com/temirov/shellhint/internal/output"
	"github.com/temirov/shellhint/internal/services/clipboard"
	"github.com/temirov/shellhint/internal/types"
	"github.com/temirov/shellhint/internal/utils"
)

const (
	completeUse              = types.CommandComplete + " [file]"
	completeShortDescription = "list completion candidates at a cursor position"
	completeLongDescription  = `Parses the shell document in file (or standard input when file is omitted
or "-") and prints the completion candidates at --line and --character.`
	hoverUse              = types.CommandHover + " [file]"
	hoverShortDescription = "describe the token at a cursor position"
	hoverLongDescription  = `Parses the shell document in file (or standard input when file is omitted
or "-") and prints the hover message for the token at --line and --character.`

	negativePositionErrorFormat = "%w: line %d, character %d"
	copyFailedErrorFormat       = "copy output: %w"

	logMessageClipboardUnavailable = "clipboard unavailable, output not copied"
)

// errNegativePosition indicates a cursor flag below zero.
var errNegativePosition = errors.New("cursor position must not be negative")

// queryOptions are the flags shared by complete and hover.
type queryOptions struct {
	line      int
	character int
	format    string
	copy      bool
}

func registerQueryFlags(command *cobra.Command, options *queryOptions) {
	flagSet := command.Flags()
	flagSet.IntVar(&options.line, lineFlagName, 0, lineFlagDescription)
	flagSet.IntVar(&options.character, characterFlagName, 0, characterDescription)
	registerChoiceFlag(flagSet, &options.format, formatFlagName, types.FormatRaw, supportedFormats, formatFlagDescription)
	registerBooleanFlag(flagSet, &options.copy, copyFlagName, false, copyFlagDescription)
}

// applyDefaults replaces flags the user left unset with configured values.
func (options *queryOptions) applyDefaults(command *cobra.Command, application *applicationState) {
	if !command.Flags().Changed(formatFlagName) {
		options.format = application.settings.OutputFormat
	}
	if !command.Flags().Changed(copyFlagName) {
		options.copy = application.settings.Clipboard
	}
}

func (options queryOptions) position() (geometry.Position, error) {
	if options.line < 0 || options.character < 0 {
		return geometry.Position{}, fmt.Errorf(negativePositionErrorFormat, errNegativePosition, options.line, options.character)
	}
	return geometry.NewPosition(options.line, options.character), nil
}

func createCompleteCommand(application *applicationState) *cobra.Command {
	var options queryOptions
	command := &cobra.Command{
		Use:   completeUse,
		Short: completeShortDescription,
		Long:  completeLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			options.applyDefaults(command, application)
			position, positionError := options.position()
			if positionError != nil {
				return positionError
			}
			document, readError := utils.ReadDocument(documentPath(arguments), application.deps.standardInput)
			if readError != nil {
				return readError
			}
			runtimeServices, openError := application.openServices(nil)
			if openError != nil {
				return openError
			}
			defer runtimeServices.Close()

			candidates, completeError := runtimeServices.analyzer.Complete(command.Context(), document, position)
			if completeError != nil {
				return completeError
			}
			rendered, renderError := output.RenderCompletion(options.format, types.CompletionOutput{
				Line:       position.Line,
				Character:  position.Character,
				Candidates: candidates,
			})
			if renderError != nil {
				return renderError
			}
			return application.emit(command, rendered, options.copy)
		},
	}
	registerQueryFlags(command, &options)
	return command
}

func createHoverCommand(application *applicationState) *cobra.Command {
	var options queryOptions
	command := &cobra.Command{
		Use:   hoverUse,
		Short: hoverShortDescription,
		Long:  hoverLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			options.applyDefaults(command, application)
			position, positionError := options.position()
			if positionError != nil {
				return positionError
			}
			document, readError := utils.ReadDocument(documentPath(arguments), application.deps.standardInput)
			if readError != nil {
				return readError
			}
			runtimeServices, openError := application.openServices(nil)
			if openError != nil {
				return openError
			}
			defer runtimeServices.Close()

			hover, hoverError := runtimeServices.analyzer.Hover(command.Context(), document, position)
			if hoverError != nil {
				return hoverError
			}
			rendered, renderError := output.RenderHover(options.format, types.HoverOutput{
				Line:      position.Line,
				Character: position.Character,
				Found:     hover != nil,
				Hover:     hover,
			})
			if renderError != nil {
				return renderError
			}
			return application.emit(command, rendered, options.copy)
		},
	}
	registerQueryFlags(command, &options)
	return command
}

func documentPath(arguments []string) string {
	if len(arguments) == 0 {
		return utils.StandardInputPath
	}
	return arguments[0]
}

// emit prints rendered and optionally copies it. A missing clipboard utility
// is logged, any other copy failure is returned.
func (application *applicationState) emit(command *cobra.Command, rendered string, copyToClipboard bool) error {
	rendered = strings.TrimRight(rendered, "\n")
	if _, writeError := fmt.Fprintln(command.OutOrStdout(), rendered); writeError != nil {
		return writeError
	}
	if !copyToClipboard || application.deps.copier == nil {
		return nil
	}
	if copyError := application.deps.copier.Copy(rendered); copyError != nil {
		if errors.Is(copyError, clipboard.ErrUnsupported) {
			application.logger.Warn(logMessageClipboardUnavailable, zap.Error(copyError))
			return nil
		}
		return fmt.Errorf(copyFailedErrorFormat, copyError)
	}
	return nil
}
