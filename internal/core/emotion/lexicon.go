package emotion

import (
	"context"

	"github.com/agenthands/persona/internal/core/lexicon"
	"github.com/agenthands/persona/internal/core/model"
)

var emotionWords = map[model.Emotion][]string{
	model.Sadness: {
		"sad", "cry", "cried", "crying", "tears", "lonely", "alone", "miss", "missed", "missing",
		"grief", "grieving", "depressed", "depression", "hurt", "hurts", "lost", "sorry", "unhappy",
		"heartbroken", "regret", "loss", "died", "death", "funeral", "empty", "miserable", "hopeless",
		"disappointed", "sadly", "worthless",
	},
	model.Joy: {
		"happy", "glad", "excited", "exciting", "fun", "great", "awesome", "lol", "haha", "enjoy",
		"enjoyed", "yay", "amazing", "laugh", "laughing", "celebrate", "wonderful", "cheerful",
		"delighted", "proud", "best", "win", "won", "finally", "thrilled", "fantastic", "blessed",
		"grateful", "thanks",
	},
	model.Love: {
		"love", "loved", "loving", "lovely", "adore", "sweet", "caring", "darling", "heart",
		"affection", "cute", "kiss", "hug", "hugs", "romantic", "partner", "beautiful", "tender",
		"cherish", "wife", "husband", "girlfriend", "boyfriend", "crush", "soulmate", "compassion",
	},
	model.Anger: {
		"angry", "mad", "furious", "hate", "hated", "pissed", "annoyed", "annoying", "rage",
		"stupid", "idiot", "ridiculous", "outraged", "unfair", "disgusting", "wtf", "livid",
		"irritated", "screw", "fed up", "disrespectful", "rude", "yelled", "yelling", "betrayed",
	},
	model.Fear: {
		"afraid", "scared", "fear", "worried", "worry", "worrying", "anxious", "anxiety", "nervous",
		"panic", "terrified", "overreacting", "unsafe", "threat", "threatened", "dread", "frightened",
		"creepy", "paranoid", "stalking", "danger", "dangerous", "freaking out", "uneasy", "nightmare",
	},
	model.Surprise: {
		"surprised", "surprise", "surprising", "wow", "shocked", "shocking", "unexpected", "suddenly",
		"omg", "whoa", "amazed", "astonished", "unbelievable", "strange", "weird", "wtf", "plot twist",
		"out of nowhere", "can't believe",
	},
}

var emotionLexicon = lexicon.New(emotionWords)

// DefaultSmoothing is the pseudo-count added to every label.
const DefaultSmoothing = 0.1

// LexiconClassifier scores text by counting label words with additive
// smoothing. Text with no label words is uniform.
type LexiconClassifier struct {
	opts      options
	smoothing float64
}

func NewLexiconClassifier(opts ...Option) *LexiconClassifier {
	return &LexiconClassifier{opts: buildOptions(opts), smoothing: DefaultSmoothing}
}

func (c *LexiconClassifier) Classify(ctx context.Context, text string) (model.EmotionDistribution, error) {
	if err := ctx.Err(); err != nil {
		return model.EmotionDistribution{}, err
	}
	tokens := lexicon.Tokenize(c.opts.truncate(text))

	var raw [model.NumEmotions]float64
	for i := range raw {
		raw[i] = c.smoothing
	}
	emotionLexicon.Match(tokens, func(e model.Emotion, _ int) {
		raw[e]++
	})
	return Normalize(raw)
}
