package config

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError wraps a failure while reading or decoding configuration.
type ConfigError struct {
	Op  string // read, unmarshal
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s error: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError lists every invalid field.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration validation failed with %d errors:\n  - %s",
		len(e.Errors), strings.Join(e.Errors, "\n  - "))
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
