package perr

import (
	"errors"
	"strings"

	"github.com/rs/xid"
)

// As per RFC7807 (https://tools.ietf.org/html/rfc7807) define a standard error
// model with a limited set of pipeline-specific extensions.
type ErrorDetailModel struct {
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

type ErrorModel struct {
	Instance         string              `json:"instance"`
	Type             string              `json:"type"`
	Title            string              `json:"title"`
	Status           int                 `json:"status"`
	Detail           string              `json:"detail,omitempty"`
	ValidationErrors []*ErrorDetailModel `json:"validation_errors,omitempty"`
}

func (e ErrorModel) Error() string {
	if e.Detail != "" {
		return e.Title + ": " + e.Detail
	}
	return e.Title
}

func (e ErrorModel) GetStatus() int {
	return e.Status
}

// Details renders the validation errors, one per line.
func (e ErrorModel) Details() string {
	lines := make([]string, 0, len(e.ValidationErrors))
	for _, v := range e.ValidationErrors {
		if v.Location != "" {
			lines = append(lines, v.Location+": "+v.Message)
		} else {
			lines = append(lines, v.Message)
		}
	}
	return strings.Join(lines, "\n")
}

func reference() string {
	return "sp_" + xid.New().String()
}

// As extracts an ErrorModel from anywhere in err's chain.
func As(err error) (ErrorModel, bool) {
	var e ErrorModel
	if errors.As(err, &e) {
		return e, true
	}
	return ErrorModel{}, false
}

func isType(err error, errorType string) bool {
	e, ok := As(err)
	return ok && e.Type == errorType
}
