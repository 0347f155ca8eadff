package script

import (
	"fmt"
	"time"
)

// ErrorType categorizes script failures.
type ErrorType string

const (
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeCompilation   ErrorType = "compilation"
	ErrorTypeExecution     ErrorType = "execution"
	ErrorTypeTimeout       ErrorType = "timeout"
	ErrorTypeInvalidResult ErrorType = "invalid_result"
)

// Script is a loaded script file.
type Script struct {
	Name         string
	Content      string
	LastModified time.Time
}

// SecurityLimits defines resource constraints for script execution.
type SecurityLimits struct {
	MaxExecutionTime time.Duration
	// MaxAllocs caps the number of objects a run may allocate. Zero means no limit.
	MaxAllocs       int64
	AllowedPackages []string
}

// ScriptError represents script-related errors with context.
type ScriptError struct {
	Type       ErrorType
	ScriptName string
	Message    string
	Cause      error
}

func (e *ScriptError) Error() string {
	msg := fmt.Sprintf("script %s: %s", e.ScriptName, e.Message)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// NewScriptError creates a new ScriptError.
func NewScriptError(errorType ErrorType, scriptName, message string, cause error) *ScriptError {
	return &ScriptError{
		Type:       errorType,
		ScriptName: scriptName,
		Message:    message,
		Cause:      cause,
	}
}
