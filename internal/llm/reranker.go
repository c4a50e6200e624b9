package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agenthands/persona/internal/core/common"
)

type SimpleLLMReranker struct {
	LLM    LLMClient
	Prompt string
}

func NewSimpleLLMReranker(client LLMClient, prompt string) *SimpleLLMReranker {
	return &SimpleLLMReranker{LLM: client, Prompt: prompt}
}

type rankResponse struct {
	Indices []int `json:"indices"`
}

// Rank returns a permutation of document indices, most relevant first. Any
// index the model omits keeps its original relative order at the tail.
func (r *SimpleLLMReranker) Rank(ctx context.Context, query string, docs []string) ([]int, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) == 1 {
		return []int{0}, nil
	}

	var docList strings.Builder
	for i, d := range docs {
		content := d
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		fmt.Fprintf(&docList, "[%d] %s\n", i, content)
	}

	prompt := r.Prompt
	if prompt == "" {
		prompt = defaultRerankPrompt
	}
	prompt = common.Fill(prompt, map[string]string{"query": query, "passages": docList.String()})

	resp, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var indices []int
	if parsed, err := common.ParseJSON[rankResponse](resp); err == nil {
		indices = parsed.Indices
	} else {
		indices = parseIndices(resp)
	}
	return completePermutation(indices, len(docs)), nil
}

const defaultRerankPrompt = `Given the query: "{query}"

Rank the following passages by relevance to the query. Return the indices of the passages in order of relevance (most relevant first) as a JSON object: {"indices": [...]}.

Passages:
{passages}`

var indexPattern = regexp.MustCompile(`\d+`)

func parseIndices(s string) []int {
	var indices []int
	for _, m := range indexPattern.FindAllString(s, -1) {
		if i, err := strconv.Atoi(m); err == nil {
			indices = append(indices, i)
		}
	}
	return indices
}

func completePermutation(indices []int, n int) []int {
	seen := make([]bool, n)
	out := make([]int, 0, n)
	for _, i := range indices {
		if i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			out = append(out, i)
		}
	}
	return out
}
