package model

// FragmentKind names the persona section a fragment was derived from.
type FragmentKind string

const (
	FragmentTrait     FragmentKind = "trait"
	FragmentMBTI      FragmentKind = "mbti"
	FragmentCommunity FragmentKind = "community"
	FragmentRecord    FragmentKind = "record"
	FragmentNarrative FragmentKind = "narrative"
)

type FragmentMetadata struct {
	SourceID  string       `json:"source_id"`
	Community string       `json:"community,omitempty"`
	Kind      FragmentKind `json:"kind"`
}

// IndexedFragment is one embedded piece of a persona.
type IndexedFragment struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Text      string           `json:"text"`
	Embedding []float32        `json:"embedding,omitempty"`
	Metadata  FragmentMetadata `json:"metadata"`
	Embedder  string           `json:"embedder"`
}

// ScoredFragment is a search hit.
type ScoredFragment struct {
	IndexedFragment
	Score float64 `json:"score"`
}

// FragmentFilter narrows a user-scoped search. Empty fields match everything.
type FragmentFilter struct {
	Community string       `json:"community,omitempty"`
	Kind      FragmentKind `json:"kind,omitempty"`
}
