package model

import (
	"encoding/json"
	"fmt"
)

// TraitAxis is one of the nine scored personality axes.
type TraitAxis int

const (
	Openness TraitAxis = iota
	Conscientiousness
	Extroversion
	Agreeableness
	Neuroticism
	AxisEI
	AxisSN
	AxisTF
	AxisJP

	NumTraitAxes = int(AxisJP) + 1
)

var traitAxisNames = [NumTraitAxes]string{
	"openness",
	"conscientiousness",
	"extroversion",
	"agreeableness",
	"neuroticism",
	"E_I",
	"S_N",
	"T_F",
	"J_P",
}

// mbtiLetters holds the (non-negative, negative) letters for each MBTI axis.
var mbtiLetters = map[TraitAxis][2]byte{
	AxisEI: {'E', 'I'},
	AxisSN: {'S', 'N'},
	AxisTF: {'T', 'F'},
	AxisJP: {'J', 'P'},
}

func (a TraitAxis) String() string {
	if a < 0 || int(a) >= NumTraitAxes {
		return fmt.Sprintf("TraitAxis(%d)", int(a))
	}
	return traitAxisNames[a]
}

// IsMBTI reports whether the axis is one of the four MBTI dichotomies.
func (a TraitAxis) IsMBTI() bool {
	_, ok := mbtiLetters[a]
	return ok
}

// TraitAxes returns all axes in declaration order.
func TraitAxes() []TraitAxis {
	out := make([]TraitAxis, NumTraitAxes)
	for i := range out {
		out[i] = TraitAxis(i)
	}
	return out
}

// ParseTraitAxis resolves an axis by its JSON name.
func ParseTraitAxis(name string) (TraitAxis, bool) {
	for i, n := range traitAxisNames {
		if n == name {
			return TraitAxis(i), true
		}
	}
	return 0, false
}

// TraitScore is a bounded score in [-1, 1]. Evidence is the raw pre-squash sum of
// feature contributions; Determined is false when no feature contributed at all.
type TraitScore struct {
	Value      float64 `json:"value"`
	Evidence   float64 `json:"evidence"`
	Determined bool    `json:"determined"`
}

// TraitScoreVector carries exactly one score per axis.
type TraitScoreVector [NumTraitAxes]TraitScore

func (v TraitScoreVector) Get(a TraitAxis) TraitScore {
	return v[a]
}

// MBTIType derives the four-letter type. Undetermined axes yield 'X'.
func (v TraitScoreVector) MBTIType() string {
	out := make([]byte, 0, 4)
	for _, a := range []TraitAxis{AxisEI, AxisSN, AxisTF, AxisJP} {
		s := v[a]
		letters := mbtiLetters[a]
		switch {
		case !s.Determined:
			out = append(out, 'X')
		case s.Value >= 0:
			out = append(out, letters[0])
		default:
			out = append(out, letters[1])
		}
	}
	return string(out)
}

func (v TraitScoreVector) MarshalJSON() ([]byte, error) {
	m := make(map[string]TraitScore, NumTraitAxes)
	for i, s := range v {
		m[traitAxisNames[i]] = s
	}
	return json.Marshal(m)
}

func (v *TraitScoreVector) UnmarshalJSON(data []byte) error {
	var m map[string]TraitScore
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out TraitScoreVector
	for name, s := range m {
		a, ok := ParseTraitAxis(name)
		if !ok {
			return fmt.Errorf("unknown trait axis %q", name)
		}
		out[a] = s
	}
	for i, name := range traitAxisNames {
		if _, ok := m[name]; !ok {
			return fmt.Errorf("missing trait axis %q", traitAxisNames[i])
		}
	}
	*v = out
	return nil
}
