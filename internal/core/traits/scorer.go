package traits

import (
	"math"

	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/platform/logger"
)

type Scorer struct {
	extractor FeatureExtractor
	log       *logger.Logger
}

// NewScorer uses the LexiconExtractor when extractor is nil.
func NewScorer(extractor FeatureExtractor, log *logger.Logger) *Scorer {
	if extractor == nil {
		extractor = NewLexiconExtractor()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scorer{extractor: extractor, log: log}
}

// Score aggregates per-record features with a token-count weighted mean and
// evaluates the rule table. Output depends only on the records.
func (s *Scorer) Score(records []model.ActivityRecord) (model.TraitScoreVector, error) {
	if len(records) == 0 {
		return model.TraitScoreVector{}, &model.InsufficientDataError{Stage: "trait scoring"}
	}

	var sum FeatureVector
	var total float64
	for _, rec := range records {
		fv, weight := s.extractor.Extract(rec)
		if weight <= 0 {
			continue
		}
		w := float64(weight)
		for i, v := range fv {
			sum[i] += v * w
		}
		total += w
	}

	var mean FeatureVector
	if total > 0 {
		for i := range sum {
			mean[i] = sum[i] / total
		}
	}

	scores := Evaluate(mean)
	s.log.Debug("scored traits", "records", len(records), "tokens", total, "mbti", scores.MBTIType())
	return scores, nil
}

// Evaluate applies the rule table to an aggregated feature vector. An axis
// whose features are all zero is left undetermined.
func Evaluate(fv FeatureVector) model.TraitScoreVector {
	var out model.TraitScoreVector
	for axis, terms := range rules {
		var evidence float64
		determined := false
		for _, t := range terms {
			v := fv[t.feature]
			if v != 0 {
				determined = true
			}
			evidence += t.weight * v
		}
		if !determined {
			continue
		}
		out[axis] = model.TraitScore{
			Value:      math.Tanh(evidence),
			Evidence:   evidence,
			Determined: true,
		}
	}
	return out
}
