package model

import (
	"sort"
	"time"
)

// CommunityEmotionSummary aggregates one community's per-record distributions.
type CommunityEmotionSummary struct {
	Community        string              `json:"community"`
	InteractionCount int                 `json:"interaction_count"`
	Average          EmotionDistribution `json:"average"`
	Dominant         Emotion             `json:"dominant"`
	MostCommonTop    Emotion             `json:"most_common_top"`
}

// SortCommunities orders summaries by InteractionCount descending, then Community ascending.
func SortCommunities(s []CommunityEmotionSummary) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].InteractionCount != s[j].InteractionCount {
			return s[i].InteractionCount > s[j].InteractionCount
		}
		return s[i].Community < s[j].Community
	})
}

// PersonaRecord is the aggregate root written at the end of analysis.
type PersonaRecord struct {
	UserID        string                    `json:"user_id"`
	GeneratedAt   time.Time                 `json:"generated_at"`
	Account       AccountProfile            `json:"account"`
	Traits        TraitScoreVector          `json:"traits"`
	MBTIType      string                    `json:"mbti_type"`
	Communities   []CommunityEmotionSummary `json:"communities"`
	CommunityInfo map[string]CommunityInfo  `json:"community_info,omitempty"`
	Records       []ActivityRecord          `json:"records"`
}
