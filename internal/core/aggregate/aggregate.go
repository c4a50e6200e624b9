package aggregate

import (
	"time"

	"github.com/agenthands/persona/internal/core/model"
)

// Stages carries the outputs of the upstream pipeline stages. A nil field
// means the stage did not produce output.
type Stages struct {
	Traits        *model.TraitScoreVector
	Emotions      []model.CommunityEmotionSummary
	Account       *model.AccountProfile
	CommunityInfo map[string]model.CommunityInfo
}

// Clock is swapped in tests.
var Clock = func() time.Time { return time.Now().UTC() }

// Aggregate assembles the persona. It only orders and copies; no scoring happens here.
func Aggregate(userID string, stages Stages, records []model.ActivityRecord) (model.PersonaRecord, error) {
	if stages.Traits == nil {
		return model.PersonaRecord{}, &model.IncompletePipelineError{Stage: "trait scores"}
	}
	if stages.Emotions == nil {
		return model.PersonaRecord{}, &model.IncompletePipelineError{Stage: "emotion summaries"}
	}

	communities := make([]model.CommunityEmotionSummary, len(stages.Emotions))
	copy(communities, stages.Emotions)
	model.SortCommunities(communities)

	recs := make([]model.ActivityRecord, len(records))
	copy(recs, records)

	account := model.AccountProfile{Username: userID}
	if stages.Account != nil {
		account = *stages.Account
	}

	var info map[string]model.CommunityInfo
	if len(stages.CommunityInfo) > 0 {
		info = make(map[string]model.CommunityInfo, len(communities))
		for _, c := range communities {
			if ci, ok := stages.CommunityInfo[c.Community]; ok {
				info[c.Community] = ci
			}
		}
		if len(info) == 0 {
			info = nil
		}
	}

	return model.PersonaRecord{
		UserID:        userID,
		GeneratedAt:   Clock(),
		Account:       account,
		Traits:        *stages.Traits,
		MBTIType:      stages.Traits.MBTIType(),
		Communities:   communities,
		CommunityInfo: info,
		Records:       recs,
	}, nil
}
