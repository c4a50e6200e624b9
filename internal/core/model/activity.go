package model

import "time"

// Kind is the source shape of an activity record.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// ParseKind maps loosely spelled kinds ("submission", "t1", ...) onto Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "post", "posts", "submission", "link", "t3":
		return KindPost, true
	case "comment", "comments", "reply", "t1":
		return KindComment, true
	default:
		return "", false
	}
}

// ActivityRecord is one normalized post or comment. Values are never mutated after normalization.
type ActivityRecord struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Body      string    `json:"body"`
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url,omitempty"`
	Community string    `json:"community"`
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
}

// AccountProfile carries account-level metadata from the export.
type AccountProfile struct {
	Username     string     `json:"username"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	LinkKarma    int        `json:"link_karma"`
	CommentKarma int        `json:"comment_karma"`
	Trophies     []string   `json:"trophies,omitempty"`
}

// CommunityInfo is descriptive metadata about a community, when the export carries it.
type CommunityInfo struct {
	Key         string `json:"key"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}
