package model

// RawPayload is a platform payload exactly as decoded from JSON.
type RawPayload = map[string]any

// RawExport is the persisted collector output. Only the normalizer reads it.
type RawExport struct {
	UserID           string                `json:"user_id,omitempty"`
	UserInfo         RawPayload            `json:"user_info,omitempty"`
	Account          RawPayload            `json:"account,omitempty"`
	Posts            []RawPayload          `json:"posts"`
	Comments         []RawPayload          `json:"comments"`
	Activity         []RawPayload          `json:"activity,omitempty"`
	SubredditsMaster map[string]RawPayload `json:"subreddits_master,omitempty"`
}
