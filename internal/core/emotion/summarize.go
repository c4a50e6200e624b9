package emotion

import (
	"fmt"

	"github.com/agenthands/persona/internal/core/model"
)

// Summarize groups per-record distributions by community. records and dists
// are parallel slices.
func Summarize(records []model.ActivityRecord, dists []model.EmotionDistribution) ([]model.CommunityEmotionSummary, error) {
	if len(records) != len(dists) {
		return nil, fmt.Errorf("summarize: %d records but %d distributions", len(records), len(dists))
	}

	type acc struct {
		count int
		sum   model.EmotionDistribution
		tops  [model.NumEmotions]int
	}
	groups := make(map[string]*acc)
	for i, rec := range records {
		a, ok := groups[rec.Community]
		if !ok {
			a = &acc{}
			groups[rec.Community] = a
		}
		a.count++
		for j, p := range dists[i] {
			a.sum[j] += p
		}
		a.tops[dists[i].Dominant()]++
	}

	out := make([]model.CommunityEmotionSummary, 0, len(groups))
	for community, a := range groups {
		var avg model.EmotionDistribution
		for j := range avg {
			avg[j] = a.sum[j] / float64(a.count)
		}
		out = append(out, model.CommunityEmotionSummary{
			Community:        community,
			InteractionCount: a.count,
			Average:          avg,
			Dominant:         avg.Dominant(),
			MostCommonTop:    mostCommon(a.tops),
		})
	}
	model.SortCommunities(out)
	return out, nil
}

// mostCommon returns the label counted most often; ties go to the lowest index.
func mostCommon(counts [model.NumEmotions]int) model.Emotion {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return model.Emotion(best)
}
