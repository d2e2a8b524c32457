package buildgen

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for builder finalization.
var (
	// ErrBuild is the sentinel all builder construction errors match.
	ErrBuild = errors.New("buildgen: build failed")

	// ErrMissingDependency is returned when a required field was never
	// set and has no usable default.
	ErrMissingDependency = errors.New("buildgen: missing dependency")
)

// MissingDependencyError reports a required field that was never set on
// the builder. It is the only error the generated finalizers raise on
// their own; Build and BuildValidated return it for the first unset
// required field in declaration order.
type MissingDependencyError struct {
	// Type is the name of the constructed type.
	Type string
	// Field is the name of the unset field, as declared.
	Field string
}

// Error returns the error string.
func (e *MissingDependencyError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("buildgen: missing dependency %q for %s", e.Field, e.Type)
	}
	return fmt.Sprintf("buildgen: missing dependency %q", e.Field)
}

// Is reports whether the target matches the missing-dependency or build sentinels.
func (e *MissingDependencyError) Is(err error) bool {
	return err == ErrMissingDependency || err == ErrBuild
}

// NewMissingDependencyError returns a new MissingDependencyError for the
// given constructed type and field.
func NewMissingDependencyError(typeName, field string) *MissingDependencyError {
	return &MissingDependencyError{Type: typeName, Field: field}
}

// IsMissingDependency returns true if the error is a MissingDependencyError.
func IsMissingDependency(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingDependencyError
	return errors.As(err, &e) || errors.Is(err, ErrMissingDependency)
}

// InitializationError represents a failure while initializing a
// constructed value. The generated code never raises it; it exists for
// hand-written setup logic composed around a generated builder.
type InitializationError struct {
	Message string
	Err     error
}

// Error returns the error string.
func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("buildgen: initialization failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("buildgen: initialization failed: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *InitializationError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the build sentinel.
func (e *InitializationError) Is(err error) bool {
	return err == ErrBuild
}

// NewInitializationError returns a new InitializationError.
func NewInitializationError(message string, err error) *InitializationError {
	return &InitializationError{Message: message, Err: err}
}

// IsInitialization returns true if the error is an InitializationError.
func IsInitialization(err error) bool {
	if err == nil {
		return false
	}
	var e *InitializationError
	return errors.As(err, &e)
}

// ConfigurationError represents an invalid combination of field values
// detected by caller-composed validation around a generated builder.
type ConfigurationError struct {
	Message string
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("buildgen: invalid configuration: %s", e.Message)
}

// Is reports whether the target matches the build sentinel.
func (e *ConfigurationError) Is(err error) bool {
	return err == ErrBuild
}

// NewConfigurationError returns a new ConfigurationError.
func NewConfigurationError(message string) *ConfigurationError {
	return &ConfigurationError{Message: message}
}

// IsConfiguration returns true if the error is a ConfigurationError.
func IsConfiguration(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigurationError
	return errors.As(err, &e)
}

// BuildFailedError wraps a failure reported by the constructed type
// itself. BuildValidated returns it when the target's Validate hook
// rejects the assembled value.
type BuildFailedError struct {
	Message string
	Err     error
}

// Error returns the error string.
func (e *BuildFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("buildgen: build failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("buildgen: build failed: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *BuildFailedError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the build sentinel.
func (e *BuildFailedError) Is(err error) bool {
	return err == ErrBuild
}

// NewBuildFailedError returns a new BuildFailedError.
func NewBuildFailedError(message string, err error) *BuildFailedError {
	return &BuildFailedError{Message: message, Err: err}
}

// IsBuildFailed returns true if the error is a BuildFailedError.
func IsBuildFailed(err error) bool {
	if err == nil {
		return false
	}
	var e *BuildFailedError
	return errors.As(err, &e)
}
