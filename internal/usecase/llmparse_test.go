package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `{"role":"analyst"}`, stripCodeFence("```json\n{\"role\":\"analyst\"}\n```"))
	assert.Equal(t, `{"role":"analyst"}`, stripCodeFence("```\n{\"role\":\"analyst\"}\n```"))
	assert.Equal(t, `{"role":"analyst"}`, stripCodeFence(`{"role":"analyst"}`))
	assert.Equal(t, "", stripCodeFence("```json\n```"))
}

func TestExtractObject(t *testing.T) {
	t.Parallel()
	got, ok := extractObject(`Sure! Here you go: {"a": {"b": 1}} and some trailer`)
	assert.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	_, ok = extractObject("no braces here")
	assert.False(t, ok)

	_, ok = extractObject(`{"unterminated": {`)
	assert.False(t, ok)
}

func TestExtractArray(t *testing.T) {
	t.Parallel()
	got, ok := extractArray(`The ranking is [ {"rank": 1} ], enjoy!`)
	assert.True(t, ok)
	assert.Equal(t, `[ {"rank": 1} ]`, got)

	_, ok = extractArray("nothing structured")
	assert.False(t, ok)

	_, ok = extractArray("] inverted [")
	assert.False(t, ok)
}

func TestNormalizeJSONWhitespace(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `{"a": 1,  "b": 2}`, normalizeJSONWhitespace("{\"a\": 1,\n\t\"b\": 2}\r\n"))
}
