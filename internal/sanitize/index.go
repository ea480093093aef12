package sanitize

import "github.com/kashev/singularity-pipeline/internal/constants"

// Instance is the sanitizer used for log entries and printed output.
var Instance = mustDefault()

// NullSanitizer leaves everything untouched.
var NullSanitizer = &Sanitizer{fields: map[string]struct{}{}}

func mustDefault() *Sanitizer {
	s, err := NewSanitizer(SanitizerOptions{
		ExcludeFields: []string{
			"password",
			"token",
			constants.EnvDockerPassword,
		},
	})
	if err != nil {
		panic(err)
	}
	return s
}

func SanitizeLogEntries(keysAndValues []interface{}) []interface{} {
	return Instance.SanitizeKeyValues(keysAndValues...)
}
