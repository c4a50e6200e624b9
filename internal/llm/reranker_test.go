package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedLLM struct {
	resp   string
	err    error
	prompt string
}

func (c *cannedLLM) Generate(ctx context.Context, prompt string) (string, error) {
	c.prompt = prompt
	return c.resp, c.err
}

func TestReranker_JSON(t *testing.T) {
	llm := &cannedLLM{resp: "Sure! ```json\n{\"indices\": [2, 0]}\n```"}
	r := NewSimpleLLMReranker(llm, "")

	order, err := r.Rank(context.Background(), "hobbies", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, order)
	assert.Contains(t, llm.prompt, `"hobbies"`)
	assert.Contains(t, llm.prompt, "[1] b")
}

func TestReranker_PlainIndices(t *testing.T) {
	llm := &cannedLLM{resp: "1, 1, 7, 0"}
	r := NewSimpleLLMReranker(llm, "Q={query}\n{passages}")

	order, err := r.Rank(context.Background(), "q", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, order)
	assert.Equal(t, "Q=q\n[0] a\n[1] b\n", llm.prompt)
}

func TestReranker_Errors(t *testing.T) {
	r := NewSimpleLLMReranker(&cannedLLM{err: errors.New("down")}, "")
	_, err := r.Rank(context.Background(), "q", []string{"a", "b"})
	assert.Error(t, err)

	order, err := r.Rank(context.Background(), "q", []string{"only"})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, order)
}
