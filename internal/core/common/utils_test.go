package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scores struct {
	Joy  float64 `json:"joy"`
	Fear float64 `json:"fear"`
}

func TestParseJSON(t *testing.T) {
	got, err := ParseJSON[scores]("Here you go:\n```json\n{\"joy\": 0.7, \"fear\": 0.1}\n```")
	require.NoError(t, err)
	assert.Equal(t, scores{Joy: 0.7, Fear: 0.1}, got)

	_, err = ParseJSON[scores]("no json here")
	assert.ErrorContains(t, err, "missing '{'")

	_, err = ParseJSON[scores]("{ broken")
	assert.Error(t, err)

	_, err = ParseJSON[scores](`{"joy": "lots"}`)
	assert.ErrorContains(t, err, "failed to unmarshal")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 10))
	assert.Equal(t, "", Truncate("hi", 0))
}

func TestFill(t *testing.T) {
	out := Fill("Q: {question}\nC: {context}\n{unknown}", map[string]string{
		"question": "why?",
		"context":  "because",
	})
	assert.Equal(t, "Q: why?\nC: because\n{unknown}", out)
}
