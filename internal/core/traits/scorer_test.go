package traits

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/persona/internal/core/model"
)

func record(id, body string, score int) model.ActivityRecord {
	return model.ActivityRecord{
		ID:        id,
		Kind:      model.KindComment,
		Body:      body,
		Community: "test",
		Timestamp: time.Unix(0, 0).UTC(),
		Score:     score,
	}
}

func TestScore_NoRecords(t *testing.T) {
	_, err := NewScorer(nil, nil).Score(nil)
	var insufficient *model.InsufficientDataError
	assert.True(t, errors.As(err, &insufficient))
}

func TestScore_BoundedAndDeterministic(t *testing.T) {
	bodies := []string{
		"I love hanging out with friends at a party, it's so much fun!",
		"Honestly I prefer being alone and quiet. I'm pretty reserved.",
		"Maybe the future holds new ideas, I like to imagine possibilities.",
		"Facts and logic matter. Evidence over feelings, always.",
		"I'm so worried and anxious about the exam, I can't stop overthinking.",
		"This is stupid and ridiculous, I'm furious.",
		"Organized planning and a neat schedule keep me on time.",
		"I just go with the flow and decide at the last minute.",
	}
	var records []model.ActivityRecord
	for i := 0; i < 40; i++ {
		records = append(records, record(fmt.Sprint(i), bodies[i%len(bodies)], i*37))
	}

	s := NewScorer(nil, nil)
	first, err := s.Score(records)
	require.NoError(t, err)
	second, err := s.Score(records)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, axis := range model.TraitAxes() {
		v := first.Get(axis).Value
		assert.GreaterOrEqual(t, v, -1.0, axis.String())
		assert.LessOrEqual(t, v, 1.0, axis.String())
		assert.True(t, first.Get(axis).Determined, axis.String())
	}
}

func TestScore_PoleDirection(t *testing.T) {
	s := NewScorer(nil, nil)

	social, err := s.Score([]model.ActivityRecord{record("1", "party with friends, so social and outgoing", 0)})
	require.NoError(t, err)
	assert.Greater(t, social[model.AxisEI].Value, 0.0)

	quiet, err := s.Score([]model.ActivityRecord{record("1", "quiet solo evenings, I am shy and reserved", 0)})
	require.NoError(t, err)
	assert.Less(t, quiet[model.AxisEI].Value, 0.0)
	assert.Equal(t, 'I', rune(quiet.MBTIType()[0]))
}

func TestScore_Undetermined(t *testing.T) {
	scores, err := NewScorer(nil, nil).Score([]model.ActivityRecord{record("1", "the cat sat on the mat", 0)})
	require.NoError(t, err)

	assert.Equal(t, "XXXX", scores.MBTIType())
	assert.False(t, scores[model.Neuroticism].Determined)
	assert.Equal(t, 0.0, scores[model.Neuroticism].Value)
}

func TestScore_ReachFavoursEN(t *testing.T) {
	scores, err := NewScorer(nil, nil).Score([]model.ActivityRecord{record("1", "the cat sat on the mat", 5000)})
	require.NoError(t, err)

	assert.True(t, scores[model.AxisEI].Determined)
	assert.Greater(t, scores[model.AxisEI].Value, 0.0)
	assert.Less(t, scores[model.AxisSN].Value, 0.0)
	assert.Equal(t, "ENXX", scores.MBTIType())
}

func TestScore_TokenWeighting(t *testing.T) {
	long := "friends party social outgoing fun " +
		"and then we went to the place where the people were and we talked for a while"
	scores, err := NewScorer(nil, nil).Score([]model.ActivityRecord{
		record("1", long, 0),
		record("2", "quiet", 0),
	})
	require.NoError(t, err)
	assert.Greater(t, scores[model.AxisEI].Value, 0.0, "longer record dominates")
}

type stubExtractor struct{ fv FeatureVector }

func (s stubExtractor) Extract(model.ActivityRecord) (FeatureVector, int) { return s.fv, 1 }

func TestScore_InjectedExtractor(t *testing.T) {
	var fv FeatureVector
	fv[PoleT] = 1
	fv[Anxiety] = 0.5

	scores, err := NewScorer(stubExtractor{fv}, nil).Score([]model.ActivityRecord{record("1", "x", 0)})
	require.NoError(t, err)
	assert.InDelta(t, 0.995, scores[model.AxisTF].Value, 0.001)
	assert.InDelta(t, 3.0, scores[model.AxisTF].Evidence, 1e-9)
	assert.Greater(t, scores[model.Neuroticism].Value, 0.0)
	assert.False(t, scores[model.Openness].Determined)
}

func TestRules_DisjointFeatureSets(t *testing.T) {
	mbtiFeatures := map[Feature]bool{PoleE: true, PoleI: true, PoleS: true, PoleN: true, PoleT: true, PoleF: true, PoleJ: true, PoleP: true, Reach: true}
	for _, axis := range model.TraitAxes() {
		require.NotEmpty(t, rules[axis], axis.String())
		for _, term := range rules[axis] {
			assert.Equal(t, axis.IsMBTI(), mbtiFeatures[term.feature], "%s uses %s", axis, term.feature)
		}
	}
}

func TestSentiment(t *testing.T) {
	pol, subj := sentiment(tokensOf("this is good"))
	assert.InDelta(t, 0.7, pol, 1e-9)
	assert.InDelta(t, 0.6, subj, 1e-9)

	pol, _ = sentiment(tokensOf("this is not good"))
	assert.InDelta(t, -0.35, pol, 1e-9)

	pol, _ = sentiment(tokensOf("very not good"))
	assert.InDelta(t, -0.35, pol, 1e-9)

	pol, _ = sentiment(tokensOf("not very good"))
	assert.InDelta(t, -0.455, pol, 1e-9)

	pol, _ = sentiment(tokensOf("really great"))
	assert.InDelta(t, 1.0, pol, 1e-9)

	pol, subj = sentiment(tokensOf("table chair"))
	assert.Zero(t, pol)
	assert.Zero(t, subj)
}
