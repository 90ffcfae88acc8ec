// Package cmdspec models the static specification of shell commands and the
// lookup rules applied to it: alias expansion, option inheritance and option
// spelling matching.
package cmdspec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	aliasDescriptionFormat = "(Alias of %s) %s"

	invalidCommandMessageFormat = "%w: %v"
	decodeCommandMessageFormat  = "decode command specification: %w"
)

// ErrInvalidCommand indicates a command specification that failed validation.
var ErrInvalidCommand = errors.New("invalid command specification")

var commandValidator = validator.New()

// Option describes one flag or switch.
type Option struct {
	Names       []string `json:"names" yaml:"names" validate:"min=1,dive,required"`
	Argument    string   `json:"argument,omitempty" yaml:"argument,omitempty"`
	Description string   `json:"description" yaml:"description"`
}

// TakesArgument reports whether the option expects a value.
func (option Option) TakesArgument() bool {
	return len(option.Argument) > 0
}

// HasName reports whether name is one of the option spellings.
func (option Option) HasName(name string) bool {
	for _, optionName := range option.Names {
		if optionName == name {
			return true
		}
	}
	return false
}

// Command describes a command or subcommand.
type Command struct {
	Name             string    `json:"name" yaml:"name" validate:"required"`
	Description      string    `json:"description" yaml:"description"`
	Usage            string    `json:"usage,omitempty" yaml:"usage,omitempty"`
	Tldr             string    `json:"tldr,omitempty" yaml:"tldr,omitempty"`
	Options          []Option  `json:"options" yaml:"options" validate:"dive"`
	InheritedOptions []Option  `json:"inheritedOptions,omitempty" yaml:"inheritedOptions,omitempty" validate:"dive"`
	Subcommands      []Command `json:"subcommands,omitempty" yaml:"subcommands,omitempty" validate:"dive"`
	Aliases          []string  `json:"aliases,omitempty" yaml:"aliases,omitempty" validate:"dive,required"`
}

// HasSubcommands reports whether the command declares children.
func (command Command) HasSubcommands() bool {
	return len(command.Subcommands) > 0
}

// Validate checks the structural requirements of a command tree.
func Validate(command Command) error {
	if validationError := commandValidator.Struct(command); validationError != nil {
		return fmt.Errorf(invalidCommandMessageFormat, ErrInvalidCommand, validationError)
	}
	return nil
}

// Decode parses and validates one JSON command specification.
func Decode(data []byte) (Command, error) {
	var command Command
	if decodeError := json.Unmarshal(data, &command); decodeError != nil {
		return Command{}, fmt.Errorf(decodeCommandMessageFormat, decodeError)
	}
	if validationError := Validate(command); validationError != nil {
		return Command{}, validationError
	}
	return command, nil
}

// DecodeMany parses a JSON array of command specifications or a single object.
func DecodeMany(data []byte) ([]Command, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '[' {
		command, decodeError := Decode(trimmed)
		if decodeError != nil {
			return nil, decodeError
		}
		return []Command{command}, nil
	}
	var commands []Command
	if decodeError := json.Unmarshal(trimmed, &commands); decodeError != nil {
		return nil, fmt.Errorf(decodeCommandMessageFormat, decodeError)
	}
	return validateAll(commands)
}

// DecodeYAML parses a YAML sequence of command specifications or a single mapping.
func DecodeYAML(data []byte) ([]Command, error) {
	var document yaml.Node
	if decodeError := yaml.Unmarshal(data, &document); decodeError != nil {
		return nil, fmt.Errorf(decodeCommandMessageFormat, decodeError)
	}
	if len(document.Content) == 0 {
		return nil, nil
	}
	root := document.Content[0]
	if root.Kind == yaml.MappingNode {
		var command Command
		if decodeError := root.Decode(&command); decodeError != nil {
			return nil, fmt.Errorf(decodeCommandMessageFormat, decodeError)
		}
		return validateAll([]Command{command})
	}
	var commands []Command
	if decodeError := root.Decode(&commands); decodeError != nil {
		return nil, fmt.Errorf(decodeCommandMessageFormat, decodeError)
	}
	return validateAll(commands)
}

func validateAll(commands []Command) ([]Command, error) {
	for _, command := range commands {
		if validationError := Validate(command); validationError != nil {
			return nil, fmt.Errorf("%s: %w", command.Name, validationError)
		}
	}
	return commands, nil
}

// ExpandAliases lists the subcommands of command, each followed by one synthetic
// entry per alias. Synthetic entries share options and children with their source.
func ExpandAliases(command Command) []Command {
	if !command.HasSubcommands() {
		return nil
	}
	expanded := make([]Command, 0, len(command.Subcommands))
	for _, subcommand := range command.Subcommands {
		expanded = append(expanded, subcommand)
		for _, alias := range subcommand.Aliases {
			aliasCommand := subcommand
			aliasCommand.Name = alias
			aliasCommand.Description = fmt.Sprintf(aliasDescriptionFormat, subcommand.Name, subcommand.Description)
			expanded = append(expanded, aliasCommand)
		}
	}
	return expanded
}
