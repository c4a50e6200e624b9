package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/driver"
)

type executed struct {
	Query  string
	Params map[string]interface{}
}

type MockDriver struct {
	Executed   []executed
	MockResult neo4j.EagerResult
	FailOn     string
	Err        error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Executed = append(m.Executed, executed{Query: query, Params: params})
	if m.Err != nil && (m.FailOn == "" || m.FailOn == query) {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error        { return nil }

func persona() model.PersonaRecord {
	p := model.PersonaRecord{UserID: "alice", MBTIType: "INXP"}
	p.Traits[model.Openness] = model.TraitScore{Value: 0.5, Determined: true}
	p.Account.LinkKarma = 10
	p.Communities = []model.CommunityEmotionSummary{
		{Community: "golang", InteractionCount: 4, Average: model.EmotionDistribution{0, 1, 0, 0, 0, 0}, Dominant: model.Joy, MostCommonTop: model.Joy},
		{Community: "amioverreacting", InteractionCount: 1, Average: model.EmotionDistribution{0, 0, 0, 0, 1, 0}, Dominant: model.Fear, MostCommonTop: model.Fear},
	}
	p.CommunityInfo = map[string]model.CommunityInfo{"golang": {Key: "golang", Title: "Go"}}
	return p
}

func TestExport(t *testing.T) {
	mock := &MockDriver{}
	n, err := NewExporter(mock, nil).Export(context.Background(), persona())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, mock.Executed, 4)
	assert.Equal(t, driver.SaveUserQuery, mock.Executed[0].Query)
	assert.Equal(t, "INXP", mock.Executed[0].Params["mbti"])
	traits := mock.Executed[0].Params["traits"].(map[string]interface{})
	assert.Equal(t, 0.5, traits["openness"])
	_, ok := traits["neuroticism"]
	assert.False(t, ok, "undetermined axes are not exported")

	assert.Equal(t, driver.ClearUserActivityQuery, mock.Executed[1].Query)

	golang := mock.Executed[2].Params
	assert.Equal(t, "golang", golang["community"])
	assert.Equal(t, "Go", golang["title"])
	assert.Nil(t, golang["description"])
	assert.Equal(t, 1, golang["rank"])
	assert.Equal(t, 1.0, golang["joy"])

	fear := mock.Executed[3].Params
	assert.Equal(t, "fear", fear["dominant"])
	assert.Equal(t, 2, fear["rank"])
}

func TestExport_Failure(t *testing.T) {
	mock := &MockDriver{Err: errors.New("connection refused"), FailOn: driver.SaveActivityQuery}
	n, err := NewExporter(mock, nil).Export(context.Background(), persona())
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, err.Error(), "save community golang")
}

func TestCommunities(t *testing.T) {
	mock := &MockDriver{MockResult: neo4j.EagerResult{
		Keys: []string{"name", "interactions", "dominant"},
		Records: []*neo4j.Record{
			{Keys: []string{"name", "interactions", "dominant"}, Values: []any{"golang", int64(4), "joy"}},
		},
	}}
	edges, err := NewExporter(mock, nil).Communities(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, CommunityEdge{Community: "golang", Interactions: 4, Dominant: "joy"}, edges[0])
	assert.Equal(t, "alice", mock.Executed[0].Params["username"])
}

func TestCommunities_RecordWithoutName(t *testing.T) {
	mock := &MockDriver{MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
		{Keys: []string{"interactions"}, Values: []any{int64(1)}},
	}}}
	_, err := NewExporter(mock, nil).Communities(context.Background(), "alice")
	assert.Error(t, err)
}
