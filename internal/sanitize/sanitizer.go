package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

const redactedStr = "<redacted>"

type SanitizerOptions struct {
	// ExcludeFields is a list of fields to exclude from sanitization
	ExcludeFields []string
	// ExcludePatterns is a list of regexes - any capture groups are redacted
	ExcludePatterns []string
}

type Sanitizer struct {
	fields   map[string]struct{}
	patterns []*regexp.Regexp
}

func NewSanitizer(opts SanitizerOptions) (*Sanitizer, error) {
	// dedupe patterns using map
	var patterns = make(map[string]struct{}, 3*len(opts.ExcludeFields)+len(opts.ExcludePatterns))

	s := &Sanitizer{
		fields: make(map[string]struct{}, len(opts.ExcludeFields)),
	}

	// convert exclude fields to regex patterns to exclude the fields from JSON, YAML and env assignments
	for _, f := range opts.ExcludeFields {
		s.fields[strings.ToLower(f)] = struct{}{}
		patterns[getExcludeFromJsonRegex(f)] = struct{}{}
		patterns[getExcludeFromYamlRegex(f)] = struct{}{}
		patterns[getExcludeFromEnvRegex(f)] = struct{}{}
	}

	for _, p := range opts.ExcludePatterns {
		patterns[p] = struct{}{}
	}

	for p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid sanitizer pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, re)
	}
	return s, nil
}

func getExcludeFromYamlRegex(fieldName string) string {
	return fmt.Sprintf(`(?i)\b%s:[ \t]*([^\s"'\\]+)`, regexp.QuoteMeta(fieldName))
}

func getExcludeFromJsonRegex(fieldName string) string {
	return fmt.Sprintf(`(?i)"%s"\s*:\s*"([^"]+)"`, regexp.QuoteMeta(fieldName))
}

func getExcludeFromEnvRegex(fieldName string) string {
	return fmt.Sprintf(`(?i)\b%s=([^\s"'\\]+)`, regexp.QuoteMeta(fieldName))
}

// FieldExcluded reports whether values logged under this key are redacted.
func (s *Sanitizer) FieldExcluded(key string) bool {
	_, ok := s.fields[strings.ToLower(key)]
	return ok
}

// SanitizeString redacts every capture group matched by the patterns.
func (s *Sanitizer) SanitizeString(v string) string {
	for _, re := range s.patterns {
		v = re.ReplaceAllStringFunc(v, func(match string) string {
			groups := re.FindStringSubmatch(match)
			for _, g := range groups[1:] {
				if g != "" && g != redactedStr {
					match = strings.ReplaceAll(match, g, redactedStr)
				}
			}
			return match
		})
	}
	return v
}

// Sanitize redacts strings and string slices; other values pass through.
func (s *Sanitizer) Sanitize(v any) any {
	switch t := v.(type) {
	case string:
		return s.SanitizeString(t)
	case []string:
		out := make([]string, len(t))
		for i, e := range t {
			out[i] = s.SanitizeString(e)
		}
		return out
	case fmt.Stringer:
		return s.SanitizeString(t.String())
	}
	return v
}

// SanitizeKeyValues sanitizes alternating key/value log arguments.
func (s *Sanitizer) SanitizeKeyValues(keysAndValues ...any) []any {
	if len(keysAndValues)%2 != 0 {
		// empty the whole thing if the keys and values are not in pairs
		return nil
	}

	out := make([]any, len(keysAndValues))
	for i := 0; i < len(keysAndValues); i += 2 {
		out[i] = keysAndValues[i]
		if key, ok := keysAndValues[i].(string); ok && s.FieldExcluded(key) {
			out[i+1] = redactedStr
			continue
		}
		out[i+1] = s.Sanitize(keysAndValues[i+1])
	}
	return out
}
