package types

import "github.com/kashev/singularity-pipeline/internal/perr"

// Violation is one problem found in a pipeline description.
type Violation struct {
	Field  string `json:"field" yaml:"field"`
	Reason string `json:"reason" yaml:"reason"`
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Reason
	}
	return v.Field + ": " + v.Reason
}

// ViolationsError wraps violations into a validation error.
func ViolationsError(violations []Violation) error {
	details := make([]*perr.ErrorDetailModel, 0, len(violations))
	for _, v := range violations {
		details = append(details, &perr.ErrorDetailModel{Location: v.Field, Message: v.Reason})
	}
	return perr.ValidationFailed(details)
}
