package grandtree

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned by ViewModel.Update for a field name that
	// does not name a ViewState field.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue is returned when a value has the wrong type or is out
	// of the field's domain.
	ErrInvalidValue = errors.New("invalid value")
	// ErrNoCameraDevice is returned by a MediaDevices with no usable camera.
	ErrNoCameraDevice = errors.New("no camera device")
	// ErrPermissionDenied is returned when the user declines camera access.
	ErrPermissionDenied = errors.New("camera permission denied")
)

// FieldError reports a rejected ViewModel update.
type FieldError struct {
	Field Field
	Value any
	Err   error
}

// Error returns a formatted message naming the field and value.
func (e *FieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("update %s=%v rejected", e.Field, e.Value)
	}
	return fmt.Sprintf("update %s=%v: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// ConfigError reports a configuration file that could not be loaded.
type ConfigError struct {
	// Path is the file the configuration was read from, if any.
	Path string
	// Line is the 1-based line of a YAML syntax error, or 0.
	Line int
	// Field is the offending dotted field path for validation failures.
	Field string
	Err   error
}

// Error returns a formatted message including the path and field.
func (e *ConfigError) Error() string {
	msg := "config"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d", e.Line)
	}
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying parse or validation error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is matches any *ConfigError.
func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok
}
