package traits

import (
	"strings"

	"github.com/agenthands/persona/internal/core/lexicon"
)

type sentimentEntry struct {
	polarity     float64
	subjectivity float64
}

// sentimentWords is a pattern-style adjective lexicon: polarity in [-1, 1],
// subjectivity in [0, 1].
var sentimentWords = map[string]sentimentEntry{
	"good": {0.7, 0.6}, "great": {0.8, 0.75}, "excellent": {1, 1}, "amazing": {0.6, 0.9},
	"awesome": {1, 1}, "nice": {0.6, 1}, "love": {0.5, 0.6}, "loved": {0.7, 0.8},
	"happy": {0.8, 1}, "glad": {0.5, 1}, "best": {1, 0.3}, "better": {0.5, 0.5},
	"beautiful": {0.85, 1}, "wonderful": {1, 1}, "fantastic": {0.4, 0.9}, "perfect": {1, 1},
	"fun": {0.3, 0.2}, "cool": {0.35, 0.65}, "interesting": {0.5, 0.5}, "helpful": {0.5, 0.6},
	"funny": {0.25, 1}, "right": {0.29, 0.54}, "fair": {0.7, 0.9}, "proud": {0.8, 1},
	"kind": {0.6, 0.9}, "smart": {0.21, 0.64}, "easy": {0.43, 0.83}, "thanks": {0.2, 0.2},
	"bad": {-0.7, 0.67}, "terrible": {-1, 1}, "awful": {-1, 1}, "horrible": {-1, 1},
	"worst": {-1, 1}, "worse": {-0.4, 0.6}, "hate": {-0.8, 0.9}, "stupid": {-0.8, 1},
	"sad": {-0.5, 1}, "angry": {-0.5, 1}, "annoying": {-0.8, 0.9}, "boring": {-1, 1},
	"wrong": {-0.5, 0.9}, "ugly": {-0.7, 1}, "disappointing": {-0.6, 0.7}, "sucks": {-0.3, 0.6},
	"ridiculous": {-0.33, 1}, "scary": {-0.5, 1}, "lonely": {-0.4, 0.7}, "difficult": {-0.5, 1},
	"hard": {-0.29, 0.54}, "weird": {-0.5, 1}, "crazy": {-0.6, 0.9}, "toxic": {-0.6, 0.8},
	"pathetic": {-1, 1}, "useless": {-0.5, 0.2}, "poor": {-0.4, 0.6}, "unfair": {-0.5, 0.9},
	"real": {0.2, 0.3}, "honest": {0.6, 0.9}, "important": {0.4, 1}, "serious": {-0.33, 0.67},
	"obvious": {0, 0.5}, "personal": {0, 0.3}, "probably": {0, 0.5},
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true, "neither": true, "nor": true,
	"hardly": true, "without": true,
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "so": 1.2, "extremely": 1.5, "super": 1.3, "incredibly": 1.5,
	"totally": 1.3, "absolutely": 1.4, "quite": 1.1, "pretty": 1.1, "somewhat": 0.7, "slightly": 0.6,
}

// negationWindow is how many tokens after a negator are flipped.
const negationWindow = 3

// sentiment returns the mean polarity and subjectivity of the sentiment-bearing
// tokens. Text with no sentiment words yields zeros.
func sentiment(tokens []string) (polarity, subjectivity float64) {
	var polSum, subjSum float64
	matched := 0
	negateUntil := -1
	boost := 1.0

	for i, tok := range tokens {
		if negators[tok] || strings.HasSuffix(tok, "n't") {
			// an intensifier does not reach across a negator
			negateUntil = i + negationWindow
			boost = 1.0
			continue
		}
		if m, ok := intensifiers[tok]; ok {
			boost *= m
			continue
		}
		entry, ok := sentimentWords[tok]
		if !ok {
			boost = 1.0
			continue
		}
		pol := entry.polarity * boost
		subj := entry.subjectivity * boost
		if i <= negateUntil {
			pol *= -0.5
		}
		polSum += clamp(pol, -1, 1)
		subjSum += clamp(subj, 0, 1)
		matched++
		boost = 1.0
	}

	if matched == 0 {
		return 0, 0
	}
	return clamp(polSum/float64(matched), -1, 1), clamp(subjSum/float64(matched), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// tokensOf is split out so the extractor and tests share tokenization.
func tokensOf(text string) []string {
	return lexicon.Tokenize(text)
}
