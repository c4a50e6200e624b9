package traits

import "github.com/agenthands/persona/internal/core/lexicon"

// poleWords are the MBTI keyword lists.
var poleWords = map[Feature][]string{
	PoleE: {"social", "outgoing", "talkative", "lively", "active", "party", "friends", "chatty", "extrovert", "hangout", "crowd", "fun", "vibe", "bubbly"},
	PoleI: {"quiet", "alone", "introverted", "reserved", "solitary", "reflective", "introspective", "shy", "lowkey", "chill", "private", "solo", "withdrawn", "thoughtful"},
	PoleS: {"facts", "details", "practical", "realistic", "hands-on", "experience", "real", "concrete", "grounded", "traditional", "literal", "specific", "common sense"},
	PoleN: {"ideas", "concepts", "future", "abstract", "intuitive", "theoretical", "big-picture", "vision", "imagine", "possibilities", "dream", "creative", "innovative", "open-minded"},
	PoleT: {"logic", "reasoning", "objective", "analytical", "rational", "decisions", "facts", "debate", "critical", "truth", "evidence", "skeptic", "cold", "direct", "fair"},
	PoleF: {"feelings", "compassion", "emotions", "subjective", "personal", "harmony", "values", "caring", "empathy", "warm", "support", "understand", "sensitive", "kind"},
	PoleJ: {"organized", "structured", "planning", "decisive", "predictable", "control", "scheduled", "rule", "neat", "on time", "planner", "prepared", "early", "responsible"},
	PoleP: {"flexible", "adaptable", "spontaneous", "open", "improvised", "curious", "chill", "go with the flow", "last minute", "laid back", "unplanned", "easygoing", "open-ended"},
}

var categoryWords = map[Feature][]string{
	Insight: {
		"think", "thinking", "thought", "know", "knew", "consider", "realize", "realized", "understand",
		"understood", "believe", "idea", "wonder", "wondering", "learn", "learned", "learning", "explore",
		"exploring", "curious", "interesting", "fascinating", "reason", "because", "insight", "meaning",
		"philosophy", "theory", "science", "art", "read", "reading", "book", "books", "question",
	},
	Tentative: {
		"maybe", "perhaps", "guess", "might", "probably", "possibly", "unsure", "unclear", "seems",
		"somewhat", "kinda", "sorta", "dunno", "depends", "whatever", "sometimes", "hopefully", "idk",
	},
	Achievement: {
		"goal", "goals", "win", "won", "success", "successful", "finish", "finished", "complete",
		"completed", "achieve", "achieved", "deadline", "schedule", "plan", "plans", "work", "working",
		"career", "promotion", "progress", "improve", "improved", "practice", "discipline", "effort",
		"productive", "routine", "budget", "job", "task", "tasks",
	},
	Affiliation: {
		"friend", "friends", "we", "us", "our", "together", "family", "team", "community", "party",
		"share", "sharing", "help", "helping", "meet", "met", "hang", "group", "everyone", "partner",
		"wife", "husband", "girlfriend", "boyfriend", "mom", "dad", "brother", "sister", "kids",
	},
	PositiveEmotion: {
		"love", "loved", "happy", "great", "good", "nice", "glad", "thanks", "thank", "awesome",
		"amazing", "excited", "enjoy", "enjoyed", "fun", "beautiful", "wonderful", "cool", "lol",
		"best", "haha", "proud", "grateful", "fantastic", "lovely",
	},
	NegativeEmotion: {
		"sad", "hate", "bad", "awful", "terrible", "worst", "hurt", "cry", "crying", "lonely",
		"miserable", "depressed", "sucks", "ugh", "disappointed", "upset", "regret", "pain", "tired",
		"horrible", "broken", "lost",
	},
	Anxiety: {
		"worried", "worry", "worrying", "anxious", "anxiety", "nervous", "afraid", "scared", "panic",
		"stress", "stressed", "stressful", "fear", "overthinking", "uneasy", "insecure", "overwhelmed",
		"tense", "dread", "freaking", "paranoid",
	},
	Anger: {
		"angry", "mad", "furious", "annoyed", "annoying", "pissed", "rage", "hate", "idiot", "stupid",
		"ridiculous", "outraged", "livid", "irritated", "disgusting", "wtf", "screw", "fed up",
	},
}

var featureLexicon = buildFeatureLexicon()

func buildFeatureLexicon() *lexicon.Lexicon[Feature] {
	all := make(map[Feature][]string, len(poleWords)+len(categoryWords))
	for f, w := range poleWords {
		all[f] = w
	}
	for f, w := range categoryWords {
		all[f] = w
	}
	return lexicon.New(all)
}
