package perr

import (
	"fmt"
	"net/http"
)

const (
	ErrorCodeValidationFailed = "error_validation_failed"
)

// ValidationFailed carries every violation found in a pipeline description.
func ValidationFailed(details []*ErrorDetailModel) ErrorModel {
	return ErrorModel{
		Instance:         reference(),
		Type:             ErrorCodeValidationFailed,
		Title:            "Invalid pipeline description",
		Status:           http.StatusUnprocessableEntity,
		Detail:           fmt.Sprintf("%d violation(s) found", len(details)),
		ValidationErrors: details,
	}
}

func IsValidationFailed(err error) bool {
	return isType(err, ErrorCodeValidationFailed)
}
