package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/macro"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/singularity"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// Outcome is the result of validating one document. Description is set only
// when there are no violations.
type Outcome struct {
	Description *types.PipelineDescription
	Violations  []types.Violation
}

func (o Outcome) Valid() bool {
	return len(o.Violations) == 0
}

// Err returns nil for a valid document, otherwise a validation error
// carrying every violation.
func (o Outcome) Err() error {
	if o.Valid() {
		return nil
	}
	return types.ViolationsError(o.Violations)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		// report fields by their YAML names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("steptype", func(fl validator.FieldLevel) bool {
			return types.StepType(fl.Field().String()).Valid()
		}); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("phase", func(fl validator.FieldLevel) bool {
			return types.Phase(fl.Field().String()).Valid()
		}); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// Validate checks a decoded pipeline document and returns every violation
// found. It has no side effects.
func Validate(raw map[string]any) Outcome {
	c := &converter{}
	desc := c.description(raw)

	reported := map[string]bool{}
	for _, v := range c.violations {
		reported[v.Field] = true
	}

	violations := c.violations
	for _, v := range structViolations(desc) {
		if !reported[v.Field] {
			violations = append(violations, v)
			reported[v.Field] = true
		}
	}
	for _, v := range append(reservedViolations(desc), stepViolations(desc)...) {
		if !reported[v.Field] {
			violations = append(violations, v)
		}
	}

	if len(violations) > 0 {
		return Outcome{Violations: violations}
	}
	return Outcome{Description: desc}
}

func structViolations(desc *types.PipelineDescription) []types.Violation {
	err := validatorInstance().Struct(desc)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []types.Violation{{Reason: err.Error()}}
	}

	violations := make([]types.Violation, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		violations = append(violations, types.Violation{
			Field:  fieldPath(fe.Namespace()),
			Reason: reason(fe),
		})
	}
	return violations
}

// fieldPath drops the struct name validator puts in front of the namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must be non-empty"
		}
		return "must be at least " + fe.Param()
	case "steptype":
		return fmt.Sprintf("unsupported step type %q (supported: %s)", fe.Value(), joinStepTypes())
	case "phase":
		return fmt.Sprintf("unknown phase %q (supported: %s)", fe.Value(), joinPhases())
	case "eq":
		return fmt.Sprintf("unsupported version %q (supported: %s)", fe.Value(), constants.SupportedSchemaVersion)
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "required_with":
		return "is required when " + strings.ToLower(fe.Param()) + " is set"
	}
	return fmt.Sprintf("failed the %q check", fe.Tag())
}

// reservedViolations rejects user values that would be replaced by the
// built-in macros of the same name.
func reservedViolations(desc *types.PipelineDescription) []types.Violation {
	var violations []types.Violation
	for _, k := range sortedValueKeys(desc.Metadata) {
		if k != "image" && singularity.IsReserved(k) {
			violations = append(violations, types.Violation{
				Field:  "metadata." + k,
				Reason: fmt.Sprintf("%q is a built-in macro and cannot be redefined", k),
			})
		}
	}
	for _, s := range desc.Steps {
		for _, k := range sortedValueKeys(s.Options) {
			if singularity.IsReserved(k) {
				violations = append(violations, types.Violation{
					Field:  fmt.Sprintf("steps[%d].options.%s", s.Index, k),
					Reason: fmt.Sprintf("%q is a built-in macro and cannot be redefined", k),
				})
			}
		}
	}
	return violations
}

func sortedValueKeys(m map[string]types.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stepViolations covers the rules that span several fields or steps.
func stepViolations(desc *types.PipelineDescription) []types.Violation {
	var violations []types.Violation
	firstUse := map[string]int{}

	for _, s := range desc.Steps {
		prefix := fmt.Sprintf("steps[%d]", s.Index)

		if s.Name != "" {
			if j, dup := firstUse[s.Name]; dup {
				violations = append(violations, types.Violation{
					Field:  prefix + ".name",
					Reason: fmt.Sprintf("duplicate step name %q (first used by steps[%d])", s.Name, j),
				})
			} else {
				firstUse[s.Name] = s.Index
			}
		}

		if s.CommandTemplate == "" {
			if s.Type == types.StepTypeExec || s.Type == types.StepTypeShell {
				violations = append(violations, types.Violation{
					Field:  prefix + ".command_template",
					Reason: fmt.Sprintf("is required for %s steps", s.Type),
				})
			}
			continue
		}
		if _, err := macro.Parse(s.CommandTemplate); err != nil {
			detail := err.Error()
			if e, ok := perr.As(err); ok {
				detail = e.Detail
			}
			violations = append(violations, types.Violation{Field: prefix + ".command_template", Reason: detail})
		}
	}
	return violations
}

func joinStepTypes() string {
	names := make([]string, len(types.StepTypes))
	for i, t := range types.StepTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func joinPhases() string {
	names := make([]string, len(types.Phases))
	for i, p := range types.Phases {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
