package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_TaggedFencePreferred(t *testing.T) {
	input := "Here is the dictionary:\n```json\n{\"users\": {\"columns\": {}}}\n```\nDone."
	result, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"users": {"columns": {}}}`, result)
}

func TestExtractJSON_BareFence(t *testing.T) {
	input := "```\n{\"a\": 1}\n```"
	result, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, result)
}

func TestExtractJSON_RawBraceSpan(t *testing.T) {
	input := `The answer is {"a": {"b": [1, 2]}} as requested.`
	result, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": [1, 2]}}`, result)
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	input := `prefix {"note": "unbalanced } inside", "x": 1} suffix`
	result, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"note": "unbalanced } inside", "x": 1}`, result)
}

func TestExtractJSON_FencedArray(t *testing.T) {
	input := "```json\n[{\"t1\": {}}, {\"t2\": {}}]\n```"
	result, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `[{"t1": {}}, {"t2": {}}]`, result)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON("there is nothing structured here")
	assert.Error(t, err)
}

func TestExtractJSON_InvalidFenceFallsThrough(t *testing.T) {
	// The fence holds no JSON; the raw span scan still finds the
	// valid object after it.
	input := "```json\nnot json at all\n```\nresult: {\"ok\": true} appears"
	result, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, result)
}

func TestParseJSONResponse(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	result, err := ParseJSONResponse[payload]("```json\n{\"name\": \"orders\", \"count\": 7}\n```")
	require.NoError(t, err)
	assert.Equal(t, "orders", result.Name)
	assert.Equal(t, 7, result.Count)
}

func TestParseJSONResponse_TypeMismatch(t *testing.T) {
	_, err := ParseJSONResponse[map[string]int](`{"a": "not-a-number"}`)
	assert.Error(t, err)
}
