package traits

import "github.com/agenthands/persona/internal/core/model"

type term struct {
	feature Feature
	weight  float64
}

// rules maps each axis to a weighted feature sum; the score is tanh of that sum.
// Big-Five axes read sentiment and psycholinguistic categories only. MBTI axes
// read pole hit rates and reach only.
var rules = [model.NumTraitAxes][]term{
	model.Openness: {
		{Insight, 2.0},
		{Tentative, 0.8},
		{Subjectivity, 0.6},
	},
	model.Conscientiousness: {
		{Achievement, 2.0},
		{Tentative, -0.8},
		{NegativeEmotion, -0.5},
		{Anger, -0.6},
	},
	model.Extroversion: {
		{Affiliation, 1.8},
		{PositiveEmotion, 1.2},
		{Polarity, 0.5},
	},
	model.Agreeableness: {
		{PositiveEmotion, 1.0},
		{Affiliation, 0.8},
		{Polarity, 0.8},
		{Anger, -2.0},
	},
	model.Neuroticism: {
		{Anxiety, 2.0},
		{NegativeEmotion, 1.5},
		{Anger, 0.8},
		{Polarity, -0.8},
	},
	model.AxisEI: {
		{PoleE, 3.0},
		{PoleI, -3.0},
		{Reach, 1.0},
	},
	model.AxisSN: {
		{PoleS, 3.0},
		{PoleN, -3.0},
		{Reach, -0.5},
	},
	model.AxisTF: {
		{PoleT, 3.0},
		{PoleF, -3.0},
	},
	model.AxisJP: {
		{PoleJ, 3.0},
		{PoleP, -3.0},
	},
}
