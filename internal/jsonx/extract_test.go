package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainObject(t *testing.T) {
	t.Parallel()

	raw, err := Extract(`{"relevant": true, "confidence": 0.9}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"relevant": true, "confidence": 0.9}`, string(raw))
}

func TestExtractObjectWrappedInProse(t *testing.T) {
	t.Parallel()

	text := "Here is my assessment:\n```json\n{\"relevant\": false, \"confidence\": 0.2}\n```\nLet me know if you need more."
	raw, err := Extract(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"relevant": false, "confidence": 0.2}`, string(raw))
}

func TestExtractIgnoresBracesInsideStrings(t *testing.T) {
	t.Parallel()

	text := `{"T": "Order on {braces} and \"escapes\"", "n": "EO 14100"} trailing {junk}`
	raw, err := Extract(text)
	require.NoError(t, err)

	var entry map[string]string
	require.NoError(t, Decode(string(raw), &entry))
	assert.Equal(t, `Order on {braces} and "escapes"`, entry["T"])
}

func TestExtractNestedObject(t *testing.T) {
	t.Parallel()

	text := `prefix {"I": {"Tribal": {"people": "x"}}} suffix`
	raw, err := Extract(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"I": {"Tribal": {"people": "x"}}}`, string(raw))
}

func TestExtractNoObject(t *testing.T) {
	t.Parallel()

	_, err := Extract("the model refused to answer")
	assert.ErrorIs(t, err, ErrNoObject)

	_, err = Extract(`{"never": "closed"`)
	assert.ErrorIs(t, err, ErrNoObject)
}

func TestDecodeMalformedObject(t *testing.T) {
	t.Parallel()

	var v map[string]any
	err := Decode(`{"relevant": tru}`, &v)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoObject)
}
