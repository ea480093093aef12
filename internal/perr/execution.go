package perr

import (
	"fmt"
	"net/http"
)

// Failure reasons for a step. The error type doubles as the reason recorded in
// the step result.
const (
	ErrorCodeUnknownMacro       = "UnknownMacro"
	ErrorCodeNonScalarMacro     = "NonScalarMacro"
	ErrorCodeMalformedTemplate  = "MalformedTemplate"
	ErrorCodeExecutableNotFound = "ExecutableNotFound"
	ErrorCodeTimeout            = "Timeout"
	ErrorCodeNonZeroExit        = "NonZeroExit"
	ErrorCodeAbortedByUser      = "AbortedByUser"
	ErrorCodeExecutionFailed    = "error_execution_failed"
)

func UnknownMacro(name string, column int) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeUnknownMacro,
		Title:    "Unknown macro",
		Status:   http.StatusBadRequest,
		Detail:   fmt.Sprintf("{%s} at column %d is not defined", name, column),
	}
}

func IsUnknownMacro(err error) bool {
	return isType(err, ErrorCodeUnknownMacro)
}

func NonScalarMacro(name string) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeNonScalarMacro,
		Title:    "Non-scalar macro",
		Status:   http.StatusBadRequest,
		Detail:   fmt.Sprintf("{%s} refers to a mapping and cannot be substituted", name),
	}
}

func MalformedTemplate(msg string) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeMalformedTemplate,
		Title:    "Malformed command template",
		Status:   http.StatusBadRequest,
		Detail:   msg,
	}
}

func ExecutableNotFound(name string) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeExecutableNotFound,
		Title:    "Executable not found",
		Status:   http.StatusNotFound,
		Detail:   name,
	}
}

func IsExecutableNotFound(err error) bool {
	return isType(err, ErrorCodeExecutableNotFound)
}

func Timeout(step string, limit fmt.Stringer) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeTimeout,
		Title:    "Timeout",
		Status:   http.StatusRequestTimeout,
		Detail:   fmt.Sprintf("step %s exceeded %s", step, limit),
	}
}

func IsTimeout(err error) bool {
	return isType(err, ErrorCodeTimeout)
}

func NonZeroExit(exitCode int) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeNonZeroExit,
		Title:    "Command failed",
		Status:   http.StatusInternalServerError,
		Detail:   fmt.Sprintf("exit code %d", exitCode),
	}
}

func AbortedByUser() ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeAbortedByUser,
		Title:    "Aborted by user",
		Status:   499,
	}
}

func IsAbortedByUser(err error) bool {
	return isType(err, ErrorCodeAbortedByUser)
}

// ExecutionFailed summarises a run that did not complete cleanly.
func ExecutionFailed(msg string) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeExecutionFailed,
		Title:    "Pipeline failed",
		Status:   http.StatusInternalServerError,
		Detail:   msg,
	}
}
