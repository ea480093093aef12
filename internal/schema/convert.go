package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kashev/singularity-pipeline/internal/types"
)

var topLevelKeys = []string{"version", "name", "metadata", "binds", "credentials", "test_files", "steps"}

var stepKeys = []string{"name", "type", "command_template", "options", "phase"}

// converter turns the generic YAML tree into a typed description, recording a
// violation for every value of the wrong semantic type.
type converter struct {
	violations []types.Violation
}

func (c *converter) violate(field, format string, args ...any) {
	c.violations = append(c.violations, types.Violation{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func (c *converter) description(raw map[string]any) *types.PipelineDescription {
	c.unknownKeys("", raw, topLevelKeys)

	d := &types.PipelineDescription{}
	if v, ok := raw["version"]; ok {
		d.Version = c.version(v)
	}
	if v, ok := raw["name"]; ok {
		d.Name = c.str("name", v)
	}
	if v, ok := raw["metadata"]; ok {
		if m, ok := c.mapping("metadata", v); ok {
			d.Metadata = c.values("metadata", m, false)
		}
	}
	if v, ok := raw["binds"]; ok {
		if list, ok := c.sequence("binds", v); ok {
			d.Binds = make([]types.Bind, 0, len(list))
			for i, e := range list {
				field := fmt.Sprintf("binds[%d]", i)
				if s := c.str(field, e); s != "" {
					b, err := types.ParseBind(s)
					if err != nil {
						c.violate(field, "%s", err.Error())
						continue
					}
					d.Binds = append(d.Binds, b)
				}
			}
		}
	}
	if v, ok := raw["credentials"]; ok {
		if m, ok := c.mapping("credentials", v); ok {
			c.unknownKeys("credentials", m, []string{"username", "password"})
			d.Credentials = &types.Credentials{}
			if u, ok := m["username"]; ok {
				d.Credentials.Username = c.str("credentials.username", u)
			}
			if p, ok := m["password"]; ok {
				d.Credentials.Password = c.str("credentials.password", p)
			}
		}
	}
	if v, ok := raw["test_files"]; ok {
		if list, ok := c.sequence("test_files", v); ok {
			d.TestFiles = make([]string, 0, len(list))
			for i, e := range list {
				d.TestFiles = append(d.TestFiles, c.str(fmt.Sprintf("test_files[%d]", i), e))
			}
		}
	}
	if v, ok := raw["steps"]; ok && v != nil {
		if list, ok := c.sequence("steps", v); ok {
			d.Steps = make([]types.StepSpec, 0, len(list))
			for i, e := range list {
				d.Steps = append(d.Steps, c.step(i, e))
			}
		}
	}
	return d
}

func (c *converter) step(index int, raw any) types.StepSpec {
	prefix := fmt.Sprintf("steps[%d]", index)
	s := types.StepSpec{Index: index}

	m, ok := c.mapping(prefix, raw)
	if !ok {
		// keep the placeholder so later indices still line up
		s.Name = prefix
		s.Type = types.StepTypeShell
		s.CommandTemplate = "true"
		return s
	}
	c.unknownKeys(prefix, m, stepKeys)

	if v, ok := m["name"]; ok {
		s.Name = c.str(prefix+".name", v)
	}
	if v, ok := m["type"]; ok {
		s.Type = types.StepType(c.str(prefix+".type", v))
	}
	if v, ok := m["command_template"]; ok {
		s.CommandTemplate = c.str(prefix+".command_template", v)
	}
	if v, ok := m["phase"]; ok {
		s.Phase = types.Phase(c.str(prefix+".phase", v))
	}
	if v, ok := m["options"]; ok {
		if opts, ok := c.mapping(prefix+".options", v); ok {
			s.Options = c.values(prefix+".options", opts, true)
		}
	}
	return s
}

func (c *converter) version(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	}
	if n, ok := number(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	c.violate("version", "must be a string or a number")
	return ""
}

func (c *converter) str(field string, v any) string {
	s, ok := v.(string)
	if !ok {
		c.violate(field, "must be a string, got %s", kindOf(v))
	}
	return s
}

func (c *converter) mapping(field string, v any) (map[string]any, bool) {
	if v == nil {
		return map[string]any{}, true
	}
	m, ok := asMap(v)
	if !ok {
		c.violate(field, "must be a mapping, got %s", kindOf(v))
	}
	return m, ok
}

func (c *converter) sequence(field string, v any) ([]any, bool) {
	if v == nil {
		return []any{}, true
	}
	list, ok := v.([]any)
	if !ok {
		c.violate(field, "must be a sequence, got %s", kindOf(v))
	}
	return list, ok
}

func (c *converter) values(field string, m map[string]any, scalarOnly bool) map[string]types.Value {
	out := make(map[string]types.Value, len(m))
	for _, k := range sortedKeys(m) {
		v, ok := c.value(field+"."+k, m[k], scalarOnly)
		if ok {
			out[k] = v
		}
	}
	return out
}

func (c *converter) value(field string, v any, scalarOnly bool) (types.Value, bool) {
	switch t := v.(type) {
	case string:
		return types.StringValue(t), true
	case bool:
		return types.BoolValue(t), true
	case nil:
		return types.StringValue(""), true
	}
	if n, ok := number(v); ok {
		return types.NumberValue(n), true
	}
	if m, ok := asMap(v); ok {
		if scalarOnly {
			c.violate(field, "must be a string, number or boolean, got a mapping")
			return types.Value{}, false
		}
		return types.MappingValue(c.values(field, m, false)), true
	}
	c.violate(field, "must be a string, number, boolean or mapping, got %s", kindOf(v))
	return types.Value{}, false
}

func (c *converter) unknownKeys(prefix string, m map[string]any, allowed []string) {
	for _, k := range sortedKeys(m) {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			field := k
			if prefix != "" {
				field = prefix + "." + k
			}
			c.violate(field, "unknown field (allowed: %s)", strings.Join(allowed, ", "))
		}
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprintf("%v", k)] = e
		}
		return m, true
	}
	return nil, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case []any:
		return "a sequence"
	}
	if _, ok := number(v); ok {
		return "a number"
	}
	if _, ok := asMap(v); ok {
		return "a mapping"
	}
	return fmt.Sprintf("%T", v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
