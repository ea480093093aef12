package perr

import "github.com/kashev/singularity-pipeline/internal/constants"

// GetExitCode maps an error returned by a command to the process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return constants.ExitCodeSuccess
	}
	e, ok := As(err)
	if !ok {
		return constants.ExitCodeUnknownError
	}
	switch e.Type {
	case ErrorCodeValidationFailed, ErrorCodeBadRequest:
		return constants.ExitCodeValidationFailed
	case ErrorCodeLoadFailed, ErrorCodeNotFound:
		return constants.ExitCodeLoadFailed
	case ErrorCodeAbortedByUser:
		return constants.ExitCodeExecutionCancelled
	case ErrorCodeToolMissing, ErrorCodeToolTooOld, ErrorCodeDockerFailure:
		return constants.ExitCodeToolMissing
	case ErrorCodeExecutionFailed, ErrorCodeNonZeroExit, ErrorCodeTimeout,
		ErrorCodeExecutableNotFound, ErrorCodeUnknownMacro, ErrorCodeNonScalarMacro,
		ErrorCodeMalformedTemplate:
		return constants.ExitCodeExecutionFailed
	}
	return constants.ExitCodeUnknownError
}
