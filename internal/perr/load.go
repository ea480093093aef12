package perr

import (
	"fmt"
	"net/http"
)

const (
	ErrorCodeBadRequest    = "error_bad_request"
	ErrorCodeLoadFailed    = "error_load_failed"
	ErrorCodeNotFound      = "error_not_found"
	ErrorCodeInternal      = "error_internal"
	ErrorCodeToolMissing   = "error_tool_missing"
	ErrorCodeToolTooOld    = "error_tool_too_old"
	ErrorCodeDockerFailure = "error_docker"
)

func BadRequestWithMessage(msg string) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeBadRequest,
		Title:    "Bad Request",
		Status:   http.StatusBadRequest,
		Detail:   msg,
	}
}

func IsBadRequest(err error) bool {
	return isType(err, ErrorCodeBadRequest)
}

// LoadFailed is returned when the pipeline description cannot be read or parsed.
func LoadFailed(path string, err error) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeLoadFailed,
		Title:    "Unable to load pipeline description",
		Status:   http.StatusBadRequest,
		Detail:   fmt.Sprintf("%s: %s", path, err.Error()),
	}
}

func IsLoadFailed(err error) bool {
	return isType(err, ErrorCodeLoadFailed)
}

func NotFound(itemType string, id string) ErrorModel {
	e := ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
	}
	if id != "" {
		e.Detail = fmt.Sprintf("%s %s does not exist", itemType, id)
	}
	return e
}

func IsNotFound(err error) bool {
	return isType(err, ErrorCodeNotFound)
}

func Internal(err error) ErrorModel {
	return InternalWithMessage(err.Error())
}

func InternalWithMessage(msg string) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeInternal,
		Title:    "Internal Error",
		Status:   http.StatusInternalServerError,
		Detail:   msg,
	}
}

// ToolMissing is returned when singularity or docker cannot be used.
func ToolMissing(tool string, err error) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeToolMissing,
		Title:    "Required tool unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   fmt.Sprintf("%s: %s", tool, err.Error()),
	}
}

func IsToolMissing(err error) bool {
	return isType(err, ErrorCodeToolMissing)
}

func ToolTooOld(tool, found, minimum string) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeToolTooOld,
		Title:    "Unsupported tool version",
		Status:   http.StatusServiceUnavailable,
		Detail:   fmt.Sprintf("%s %s found, %s or later required", tool, found, minimum),
	}
}

func DockerFailure(msg string) ErrorModel {
	return ErrorModel{
		Instance: reference(),
		Type:     ErrorCodeDockerFailure,
		Title:    "Docker error",
		Status:   http.StatusServiceUnavailable,
		Detail:   msg,
	}
}
