package types

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindMapping
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindMapping:
		return "mapping"
	}
	return "unknown"
}

// Value is a metadata or option value: string, number, boolean or a mapping of
// further values. The zero Value is the empty string.
type Value struct {
	kind    ValueKind
	str     string
	num     float64
	boolean bool
	mapping map[string]Value
}

func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func BoolValue(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

func MappingValue(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMapping, mapping: m}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsScalar() bool {
	return v.kind != KindMapping
}

func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) Bool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

func (v Value) Mapping() (map[string]Value, bool) {
	return v.mapping, v.kind == KindMapping
}

// String renders the value the way it is substituted into a command.
// Numbers are written without trailing zeros.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindMapping:
		keys := make([]string, 0, len(v.mapping))
		for k := range v.mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+v.mapping[k].String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return v.str
}

// Interface returns the plain Go representation, for printing.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		return v.boolean
	case KindMapping:
		m := make(map[string]any, len(v.mapping))
		for k, mv := range v.mapping {
			m[k] = mv.Interface()
		}
		return m
	}
	return v.str
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// ExecutionContext supplies the values for macro expansion of one step.
type ExecutionContext map[string]Value

// Merge returns a new context with the entries of other layered over c.
func (c ExecutionContext) Merge(other map[string]Value) ExecutionContext {
	merged := make(ExecutionContext, len(c)+len(other))
	for k, v := range c {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}
