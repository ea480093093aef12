package macro

import (
	"fmt"
	"strings"

	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// Template is a parsed command template. Literal text alternates with
// placeholders; `{{` and `}}` have already been reduced to single braces.
type Template struct {
	source   string
	segments []segment
}

type segment struct {
	literal string
	name    string // placeholder name; empty for literal segments
	column  int    // 1-based column of the opening brace
}

// Parse scans template once, left to right.
func Parse(template string) (*Template, error) {
	t := &Template{source: template}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(template[i+1:], "{}")
			if end < 0 || template[i+1+end] == '{' {
				return nil, perr.MalformedTemplate(fmt.Sprintf("unterminated placeholder at column %d", i+1))
			}
			name := template[i+1 : i+1+end]
			if strings.TrimSpace(name) == "" {
				return nil, perr.MalformedTemplate(fmt.Sprintf("empty placeholder at column %d", i+1))
			}
			flush()
			t.segments = append(t.segments, segment{name: name, column: i + 1})
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, perr.MalformedTemplate(fmt.Sprintf("unmatched '}' at column %d", i+1))
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return t, nil
}

func (t *Template) String() string {
	return t.source
}

// Placeholders returns the distinct placeholder names in order of first use.
func (t *Template) Placeholders() []string {
	var names []string
	seen := map[string]bool{}
	for _, s := range t.segments {
		if s.name != "" && !seen[s.name] {
			seen[s.name] = true
			names = append(names, s.name)
		}
	}
	return names
}

// Execute substitutes every placeholder from ctx. A dotted name such as
// {registry.host} looks up a key inside a mapping value.
func (t *Template) Execute(ctx types.ExecutionContext) (string, error) {
	var b strings.Builder
	for _, s := range t.segments {
		if s.name == "" {
			b.WriteString(s.literal)
			continue
		}
		v, err := lookup(ctx, s.name, s.column)
		if err != nil {
			return "", err
		}
		b.WriteString(v.String())
	}
	return b.String(), nil
}

func lookup(ctx types.ExecutionContext, name string, column int) (types.Value, error) {
	if v, ok := ctx[name]; ok {
		if !v.IsScalar() {
			return v, perr.NonScalarMacro(name)
		}
		return v, nil
	}

	parts := strings.Split(name, ".")
	v, ok := ctx[parts[0]]
	if !ok || len(parts) == 1 {
		return v, perr.UnknownMacro(name, column)
	}
	for _, p := range parts[1:] {
		m, isMap := v.Mapping()
		if !isMap {
			return v, perr.UnknownMacro(name, column)
		}
		if v, ok = m[p]; !ok {
			return v, perr.UnknownMacro(name, column)
		}
	}
	if !v.IsScalar() {
		return v, perr.NonScalarMacro(name)
	}
	return v, nil
}

// Resolve expands template against ctx. The result is deterministic for a
// given template and context.
func Resolve(template string, ctx types.ExecutionContext) (string, error) {
	t, err := Parse(template)
	if err != nil {
		return "", err
	}
	return t.Execute(ctx)
}

// Placeholders lists the placeholders template references.
func Placeholders(template string) ([]string, error) {
	t, err := Parse(template)
	if err != nil {
		return nil, err
	}
	return t.Placeholders(), nil
}
