package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraitScoreVector_MBTIType(t *testing.T) {
	var v TraitScoreVector
	v[AxisEI] = TraitScore{Value: 0, Determined: true}
	v[AxisSN] = TraitScore{Value: -0.3, Determined: true}
	v[AxisTF] = TraitScore{Value: 0.8, Determined: true}
	v[AxisJP] = TraitScore{}

	assert.Equal(t, "ENTX", v.MBTIType())
}

func TestTraitScoreVector_JSON(t *testing.T) {
	var v TraitScoreVector
	for i := range v {
		v[i] = TraitScore{Value: float64(i) / 10, Evidence: float64(i), Determined: i%2 == 0}
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"openness"`)
	assert.Contains(t, string(data), `"J_P"`)

	var back TraitScoreVector
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, v, back)

	t.Run("unknown axis", func(t *testing.T) {
		bad := `{"openness":{},"conscientiousness":{},"extroversion":{},"agreeableness":{},"neuroticism":{},"E_I":{},"S_N":{},"T_F":{},"J_P":{},"charisma":{}}`
		assert.ErrorContains(t, json.Unmarshal([]byte(bad), &back), "charisma")
	})
	t.Run("missing axis", func(t *testing.T) {
		bad := `{"openness":{}}`
		assert.ErrorContains(t, json.Unmarshal([]byte(bad), &back), "missing")
	})
}

func TestEmotionDistribution(t *testing.T) {
	d := EmotionDistribution{0.1, 0.2, 0.2, 0.1, 0.3, 0.1}
	require.NoError(t, d.Validate())
	assert.Equal(t, Fear, d.Dominant())

	tie := EmotionDistribution{0, 0.5, 0.5, 0, 0, 0}
	assert.Equal(t, Joy, tie.Dominant())

	assert.Error(t, EmotionDistribution{0.5, 0.6}.Validate())
	assert.Error(t, EmotionDistribution{-0.1, 1.1}.Validate())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	var back EmotionDistribution
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`{"joy":1}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"sadness":0,"joy":0,"love":0,"anger":0,"fear":0,"surprise":1,"disgust":0}`), &back))
}

func TestEmotionText(t *testing.T) {
	data, err := json.Marshal(map[string]Emotion{"top": Surprise})
	require.NoError(t, err)
	assert.JSONEq(t, `{"top":"surprise"}`, string(data))

	var e Emotion
	require.NoError(t, json.Unmarshal([]byte(`"love"`), &e))
	assert.Equal(t, Love, e)
	assert.Error(t, json.Unmarshal([]byte(`"boredom"`), &e))
}

func TestSortCommunities(t *testing.T) {
	s := []CommunityEmotionSummary{
		{Community: "b", InteractionCount: 2},
		{Community: "c", InteractionCount: 5},
		{Community: "a", InteractionCount: 2},
	}
	SortCommunities(s)
	assert.Equal(t, []string{"c", "a", "b"}, []string{s[0].Community, s[1].Community, s[2].Community})
}

func TestPersonaRecord_RoundTrip(t *testing.T) {
	created := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := PersonaRecord{
		UserID:      "spez",
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Account:     AccountProfile{Username: "spez", CreatedAt: &created, LinkKarma: 10, CommentKarma: 20},
		MBTIType:    "INTJ",
		Communities: []CommunityEmotionSummary{{
			Community:        "golang",
			InteractionCount: 3,
			Average:          EmotionDistribution{0, 1, 0, 0, 0, 0},
			Dominant:         Joy,
			MostCommonTop:    Joy,
		}},
		Records: []ActivityRecord{{
			ID: "c1", Kind: KindComment, Body: "hi", Community: "golang",
			Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Score: 4,
		}},
	}
	rec.Traits[Openness] = TraitScore{Value: 0.5, Evidence: 0.55, Determined: true}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var back PersonaRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rec, back)
}

func TestErrors(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("stage: %w", &ExternalCapabilityError{Capability: "embed", Attempts: 3, Err: cause})

	var ext *ExternalCapabilityError
	require.True(t, errors.As(err, &ext))
	assert.Equal(t, 3, ext.Attempts)
	assert.ErrorIs(t, err, cause)

	mal := &MalformedInputError{Field: "id", Position: 2, Source: "posts"}
	assert.Equal(t, `malformed input: posts[2]: missing or invalid "id"`, mal.Error())
	assert.True(t, IsUserError(fmt.Errorf("wrap: %w", mal)))
	assert.False(t, IsUserError(err))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("t3")
	assert.True(t, ok)
	assert.Equal(t, KindPost, k)
	_, ok = ParseKind("award")
	assert.False(t, ok)
}
