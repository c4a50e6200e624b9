package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Emotion is a label from the fixed six-way emotion taxonomy.
type Emotion int

const (
	Sadness Emotion = iota
	Joy
	Love
	Anger
	Fear
	Surprise

	NumEmotions = int(Surprise) + 1
)

// DistributionTolerance bounds how far a distribution's sum may drift from 1.
const DistributionTolerance = 1e-9

var emotionNames = [NumEmotions]string{"sadness", "joy", "love", "anger", "fear", "surprise"}

func (e Emotion) String() string {
	if e < 0 || int(e) >= NumEmotions {
		return fmt.Sprintf("Emotion(%d)", int(e))
	}
	return emotionNames[e]
}

func (e Emotion) MarshalText() ([]byte, error) {
	if e < 0 || int(e) >= NumEmotions {
		return nil, fmt.Errorf("invalid emotion %d", int(e))
	}
	return []byte(emotionNames[e]), nil
}

func (e *Emotion) UnmarshalText(b []byte) error {
	got, ok := ParseEmotion(string(b))
	if !ok {
		return fmt.Errorf("unknown emotion label %q", string(b))
	}
	*e = got
	return nil
}

// Emotions returns every label in canonical order.
func Emotions() []Emotion {
	out := make([]Emotion, NumEmotions)
	for i := range out {
		out[i] = Emotion(i)
	}
	return out
}

func ParseEmotion(name string) (Emotion, bool) {
	for i, n := range emotionNames {
		if n == name {
			return Emotion(i), true
		}
	}
	return 0, false
}

// EmotionDistribution is a probability over the fixed label set.
type EmotionDistribution [NumEmotions]float64

func (d EmotionDistribution) Sum() float64 {
	var s float64
	for _, p := range d {
		s += p
	}
	return s
}

// Dominant returns the argmax label. Ties go to the lowest label index.
func (d EmotionDistribution) Dominant() Emotion {
	best := 0
	for i := 1; i < NumEmotions; i++ {
		if d[i] > d[best] {
			best = i
		}
	}
	return Emotion(best)
}

// Validate checks non-negativity and the sum-to-one tolerance.
func (d EmotionDistribution) Validate() error {
	for i, p := range d {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("emotion %s has invalid probability %v", emotionNames[i], p)
		}
	}
	if s := d.Sum(); math.Abs(s-1) > DistributionTolerance {
		return fmt.Errorf("emotion distribution sums to %v", s)
	}
	return nil
}

func (d EmotionDistribution) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumEmotions)
	for i, p := range d {
		m[emotionNames[i]] = p
	}
	return json.Marshal(m)
}

func (d *EmotionDistribution) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out EmotionDistribution
	for name, p := range m {
		e, ok := ParseEmotion(name)
		if !ok {
			return fmt.Errorf("unknown emotion label %q", name)
		}
		out[e] = p
	}
	for _, name := range emotionNames {
		if _, ok := m[name]; !ok {
			return fmt.Errorf("missing emotion label %q", name)
		}
	}
	*d = out
	return nil
}
