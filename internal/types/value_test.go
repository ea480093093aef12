package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("Moo", StringValue("Moo").String())
	assert.Equal("512", NumberValue(512).String())
	assert.Equal("1.5", NumberValue(1.5).String())
	assert.Equal("-3", NumberValue(-3).String())
	assert.Equal("true", BoolValue(true).String())
	assert.Equal("", Value{}.String())
	assert.Equal(KindString, Value{}.Kind())

	m := MappingValue(map[string]Value{"b": NumberValue(2), "a": StringValue("x")})
	assert.False(m.IsScalar())
	assert.Equal("{a: x, b: 2}", m.String())
}

func TestValueJSON(t *testing.T) {
	assert := assert.New(t)

	b, err := json.Marshal(map[string]Value{
		"size":  NumberValue(512),
		"quiet": BoolValue(false),
		"nested": MappingValue(map[string]Value{
			"user": StringValue("foo"),
		}),
	})
	assert.Nil(err)
	assert.JSONEq(`{"size":512,"quiet":false,"nested":{"user":"foo"}}`, string(b))
}

func TestExecutionContextMerge(t *testing.T) {
	assert := assert.New(t)

	base := ExecutionContext{"text": StringValue("Moo"), "size": NumberValue(1)}
	merged := base.Merge(map[string]Value{"size": NumberValue(512)})

	assert.Equal("512", merged["size"].String())
	assert.Equal("Moo", merged["text"].String())
	// the receiver is untouched
	assert.Equal("1", base["size"].String())
}
