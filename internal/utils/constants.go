package utils

const (
	// ApplicationName names the binary, the language server and the metrics namespace.
	ApplicationName = "shellhint"
	// GlobalConfigDirectoryName is created under the user's home directory.
	GlobalConfigDirectoryName = ".shellhint"
	// GlobalConfigFileName is the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// LocalConfigFileName is looked up in the working directory.
	LocalConfigFileName = ".shellhint.yaml"
	// DefaultStoreDirectoryName is the badger directory inside GlobalConfigDirectoryName.
	DefaultStoreDirectoryName = "commands.db"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// StandardInputPath selects standard input where a file path is expected.
	StandardInputPath = "-"
)

// ErrorLogFormat defines the formatting string for error log messages.
const ErrorLogFormat = "Error: %v"

// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
