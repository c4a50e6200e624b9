package traits

import "github.com/agenthands/persona/internal/core/model"

// Feature is one dimension of the per-record feature vector.
type Feature int

const (
	Polarity Feature = iota
	Subjectivity

	// psycholinguistic categories
	Insight
	Tentative
	Achievement
	Affiliation
	PositiveEmotion
	NegativeEmotion
	Anxiety
	Anger

	// MBTI poles
	PoleE
	PoleI
	PoleS
	PoleN
	PoleT
	PoleF
	PoleJ
	PoleP

	Reach

	NumFeatures = int(Reach) + 1
)

var featureNames = [NumFeatures]string{
	"polarity", "subjectivity",
	"insight", "tentative", "achievement", "affiliation",
	"positive_emotion", "negative_emotion", "anxiety", "anger",
	"pole_e", "pole_i", "pole_s", "pole_n", "pole_t", "pole_f", "pole_j", "pole_p",
	"reach",
}

func (f Feature) String() string { return featureNames[f] }

// FeatureVector holds bounded features: polarity in [-1, 1], everything else in [0, 1].
type FeatureVector [NumFeatures]float64

// FeatureExtractor turns one record into features plus the weight (token
// count) the record carries in aggregation.
type FeatureExtractor interface {
	Extract(rec model.ActivityRecord) (FeatureVector, int)
}
