package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/persona/internal/core/model"
)

type MockLLMClient struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func persona(records int) model.PersonaRecord {
	p := model.PersonaRecord{UserID: "alice", MBTIType: "INTP"}
	p.Traits[model.Openness] = model.TraitScore{Value: 0.42, Evidence: 10, Determined: true}
	p.Communities = []model.CommunityEmotionSummary{{Community: "golang", InteractionCount: records, Dominant: model.Joy}}
	for i := 0; i < records; i++ {
		p.Records = append(p.Records, model.ActivityRecord{ID: fmt.Sprint(i), Body: fmt.Sprintf("post number %d", i), Community: "golang"})
	}
	return p
}

func TestNarrate_SmallPersona(t *testing.T) {
	mockLLM := &MockLLMClient{Response: `{"summary": "Alice is a curious Go programmer."}`}
	s := NewSummarizer(mockLLM, "{persona}", nil)

	text, err := s.Narrate(context.Background(), persona(3))
	require.NoError(t, err)
	assert.Equal(t, "Alice is a curious Go programmer.", text)

	require.Len(t, mockLLM.Prompts, 1)
	prompt := mockLLM.Prompts[0]
	assert.Contains(t, prompt, "MBTI type: INTP")
	assert.Contains(t, prompt, "- openness: +0.42")
	assert.Contains(t, prompt, "- neuroticism: undetermined")
	assert.Contains(t, prompt, "- r/golang: 3 interactions, mostly joy")
	assert.Contains(t, prompt, "- [r/golang] post number 2")
}

func TestNarrate_PlainTextResponse(t *testing.T) {
	s := NewSummarizer(&MockLLMClient{Response: "  A quiet reader.  "}, "", nil)
	text, err := s.Narrate(context.Background(), persona(0))
	require.NoError(t, err)
	assert.Equal(t, "A quiet reader.", text)
}

func TestSummarizeActivity_Recursive(t *testing.T) {
	mockLLM := &MockLLMClient{Response: `{"summary": "chunk summary"}`}
	s := NewSummarizer(mockLLM, "", nil)

	items := make([]string, 3*ChunkSize)
	for i := range items {
		items[i] = fmt.Sprintf("item %d", i)
	}
	out, err := s.SummarizeActivity(context.Background(), items)
	require.NoError(t, err)
	// three partial summaries fit in one chunk and are returned as a list
	assert.Equal(t, 3, len(mockLLM.Prompts))
	assert.Equal(t, 3, strings.Count(out, "chunk summary"))
	assert.Contains(t, out, "Part 3: chunk summary")
}

func TestSummarizeActivity_AllChunksFail(t *testing.T) {
	s := NewSummarizer(&MockLLMClient{Err: errors.New("rate limited")}, "", nil)
	_, err := s.SummarizeActivity(context.Background(), make([]string, ChunkSize+1))
	assert.Error(t, err)
}
