package traits

import (
	"math"

	"github.com/agenthands/persona/internal/core/model"
)

// hitRateSaturation maps a category hit rate to [0, 1]: one hit per ten tokens saturates.
const hitRateSaturation = 10.0

// reachSaturation is the record score at which the reach feature reaches 1.
const reachSaturation = 1000.0

// LexiconExtractor derives features from built-in word lists. It is deterministic.
type LexiconExtractor struct{}

func NewLexiconExtractor() *LexiconExtractor {
	return &LexiconExtractor{}
}

func (e *LexiconExtractor) Extract(rec model.ActivityRecord) (FeatureVector, int) {
	var fv FeatureVector
	tokens := tokensOf(rec.Body)
	if len(tokens) == 0 {
		return fv, 0
	}

	fv[Polarity], fv[Subjectivity] = sentiment(tokens)
	n := float64(len(tokens))
	for f, c := range featureLexicon.Count(tokens) {
		fv[f] = math.Min(1, hitRateSaturation*float64(c)/n)
	}
	fv[Reach] = reach(rec.Score)
	return fv, len(tokens)
}

// reach is a log-scaled engagement signal in [0, 1].
func reach(score int) float64 {
	if score <= 0 {
		return 0
	}
	return math.Min(1, math.Log1p(float64(score))/math.Log1p(reachSaturation))
}
