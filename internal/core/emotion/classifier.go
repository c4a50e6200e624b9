package emotion

import (
	"context"
	"fmt"
	"math"

	"github.com/agenthands/persona/internal/core/common"
	"github.com/agenthands/persona/internal/core/model"
)

// DefaultMaxInputRunes bounds the text handed to a classifier; longer text is head-truncated.
const DefaultMaxInputRunes = 2000

// Classifier maps one text to a distribution over the fixed label set.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.EmotionDistribution, error)
}

type options struct {
	maxInputRunes int
}

type Option func(*options)

// WithMaxInputRunes overrides the head-truncation limit.
func WithMaxInputRunes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxInputRunes = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{maxInputRunes: DefaultMaxInputRunes}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) truncate(text string) string {
	return common.Truncate(text, o.maxInputRunes)
}

// Normalize turns raw label scores into a distribution. Any negative score
// marks the vector as logits and applies softmax; otherwise scores are
// divided by their sum. An all-zero vector becomes uniform.
func Normalize(raw [model.NumEmotions]float64) (model.EmotionDistribution, error) {
	var out model.EmotionDistribution
	hasNegative := false
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return out, fmt.Errorf("score for %s is not finite", model.Emotion(i))
		}
		if v < 0 {
			hasNegative = true
		}
	}

	if hasNegative {
		peak := raw[0]
		for _, v := range raw[1:] {
			peak = math.Max(peak, v)
		}
		var sum float64
		for i, v := range raw {
			out[i] = math.Exp(v - peak)
			sum += out[i]
		}
		for i := range out {
			out[i] /= sum
		}
		return out, nil
	}

	var sum float64
	for _, v := range raw {
		sum += v
	}
	if sum == 0 {
		for i := range out {
			out[i] = 1 / float64(model.NumEmotions)
		}
		return out, nil
	}
	for i, v := range raw {
		out[i] = v / sum
	}
	return out, nil
}
