package errors

import (
	"fmt"
)

// ConfigError is raised when a form model, field descriptor or workflow plan
// is used in a way its declaration does not allow.
type ConfigError struct {
	*FormCheckError
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{
		FormCheckError: &FormCheckError{
			Message:  message,
			ExitCode: ExitConfigError,
		},
	}
}

// NewDuplicateFieldError is raised when two descriptors share an id
func NewDuplicateFieldError(model, fieldID string) *ConfigError {
	return &ConfigError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("form %q declares field %q more than once", model, fieldID),
			Context: &ErrorContext{
				Operation: "Building form model",
				Component: model,
				Details: map[string]interface{}{
					"field_id": fieldID,
				},
				Suggestions: []string{
					"Give every field descriptor a unique id",
				},
			},
			ExitCode: ExitConfigError,
		},
	}
}

// NewMissingMaxLengthError is raised when an overflow scenario targets a field
// without a declared maximum length
func NewMissingMaxLengthError(fieldID string) *ConfigError {
	return &ConfigError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("field %q has no max length; overflow scenario cannot run", fieldID),
			Context: &ErrorContext{
				Operation: "Length overflow scenario",
				Component: "Validation Engine",
				Details: map[string]interface{}{
					"field_id": fieldID,
				},
				Suggestions: []string{
					"Declare MaxLength on the field descriptor",
					"Remove the overflow input from the plan",
				},
				Recoverable: true,
			},
			ExitCode: ExitConfigError,
		},
	}
}

// NewOverflowTooShortError is raised when the overflow input does not exceed
// the field's max length
func NewOverflowTooShortError(fieldID string, maxLength, inputLength int) *ConfigError {
	return &ConfigError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("overflow input for %q has %d characters, needs more than %d", fieldID, inputLength, maxLength),
			Context: &ErrorContext{
				Operation: "Length overflow scenario",
				Component: "Validation Engine",
				Details: map[string]interface{}{
					"field_id":     fieldID,
					"max_length":   maxLength,
					"input_length": inputLength,
				},
				Suggestions: []string{
					"Check the overflow values in the customer fixture",
				},
				Recoverable: true,
			},
			ExitCode: ExitConfigError,
		},
	}
}

// ConfigFileError is raised when a configuration file cannot be read or parsed
type ConfigFileError struct {
	*FormCheckError
}

// NewConfigFileError creates a new config file error
func NewConfigFileError(filePath string, cause error) *ConfigFileError {
	return &ConfigFileError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("Failed to load configuration file: %s", filePath),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Loading configuration",
				Component: "Config File",
				Details: map[string]interface{}{
					"file_path": filePath,
				},
				Suggestions: []string{
					"Check that the file exists and is readable",
					"Validate YAML syntax",
					"Run 'formcheck config init' to write a starter file",
				},
			},
			ExitCode: ExitConfigError,
		},
	}
}

// InvalidConfigValueError is raised when a configuration key has an invalid value
type InvalidConfigValueError struct {
	*FormCheckError
}

// NewInvalidConfigValueError creates a new invalid configuration value error
func NewInvalidConfigValueError(key string, value interface{}, reason string) *InvalidConfigValueError {
	return &InvalidConfigValueError{
		FormCheckError: &FormCheckError{
			Message: fmt.Sprintf("Configuration key '%s' has an invalid value", key),
			Context: &ErrorContext{
				Operation: "Validating configuration",
				Component: "Config",
				Details: map[string]interface{}{
					"key":    key,
					"value":  value,
					"reason": reason,
				},
				Suggestions: []string{
					fmt.Sprintf("Check %s in .formcheck/config.yaml or the matching FORMCHECK_ variable", key),
					"Run 'formcheck config show' to inspect the resolved configuration",
				},
			},
			ExitCode: ExitConfigError,
		},
	}
}
