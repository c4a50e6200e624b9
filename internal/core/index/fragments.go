package index

import (
	"fmt"
	"strings"

	"github.com/agenthands/persona/internal/core/common"
	"github.com/agenthands/persona/internal/core/model"
)

// DefaultTopCommunities caps how many community summaries are indexed.
const DefaultTopCommunities = 10

// recordExcerptRunes bounds the body text carried into a record fragment before chunking.
const recordExcerptRunes = 4000

// source is one piece of persona text before chunking and embedding.
type source struct {
	kind      model.FragmentKind
	id        string
	community string
	text      string
}

func traitSources(p model.PersonaRecord) []source {
	var out []source
	for _, a := range model.TraitAxes() {
		if a.IsMBTI() {
			continue
		}
		out = append(out, source{
			kind: model.FragmentTrait,
			id:   "trait:" + a.String(),
			text: traitSentence(p.UserID, a.String(), p.Traits[a]),
		})
	}
	return out
}

func traitSentence(user, axis string, s model.TraitScore) string {
	if !s.Determined {
		return fmt.Sprintf("u/%s's %s could not be determined from their activity.", user, axis)
	}
	return fmt.Sprintf("u/%s scores %s on %s (%+.3f on a scale from -1 to 1).",
		user, level(s.Value), axis, s.Value)
}

func level(v float64) string {
	switch {
	case v >= 0.5:
		return "very high"
	case v >= 0.15:
		return "high"
	case v > -0.15:
		return "moderate"
	case v > -0.5:
		return "low"
	default:
		return "very low"
	}
}

var mbtiPoles = map[model.TraitAxis][2]string{
	model.AxisEI: {"extraversion", "introversion"},
	model.AxisSN: {"sensing", "intuition"},
	model.AxisTF: {"thinking", "feeling"},
	model.AxisJP: {"judging", "perceiving"},
}

func mbtiSource(p model.PersonaRecord) source {
	var b strings.Builder
	fmt.Fprintf(&b, "u/%s's predicted MBTI type is %s.", p.UserID, p.MBTIType)
	for _, a := range []model.TraitAxis{model.AxisEI, model.AxisSN, model.AxisTF, model.AxisJP} {
		s := p.Traits[a]
		poles := mbtiPoles[a]
		if !s.Determined {
			fmt.Fprintf(&b, " The %s versus %s preference is undetermined.", poles[0], poles[1])
			continue
		}
		lean := poles[0]
		if s.Value < 0 {
			lean = poles[1]
		}
		fmt.Fprintf(&b, " They lean toward %s over %s (%+.3f).", lean, otherPole(poles, lean), s.Value)
	}
	return source{kind: model.FragmentMBTI, id: "mbti", text: b.String()}
}

func otherPole(poles [2]string, lean string) string {
	if poles[0] == lean {
		return poles[1]
	}
	return poles[0]
}

func communitySources(p model.PersonaRecord, top int) []source {
	if top <= 0 {
		top = DefaultTopCommunities
	}
	var out []source
	for i, c := range p.Communities {
		if i == top {
			break
		}
		var b strings.Builder
		fmt.Fprintf(&b, "u/%s is active in r/%s with %d interactions.", p.UserID, c.Community, c.InteractionCount)
		fmt.Fprintf(&b, " The dominant emotion there is %s (%.2f on average), and the most common top emotion of their posts and comments is %s.",
			c.Dominant, c.Average[c.Dominant], c.MostCommonTop)
		parts := make([]string, 0, model.NumEmotions)
		for _, e := range model.Emotions() {
			parts = append(parts, fmt.Sprintf("%s %.2f", e, c.Average[e]))
		}
		fmt.Fprintf(&b, " Average emotions: %s.", strings.Join(parts, ", "))
		out = append(out, source{
			kind:      model.FragmentCommunity,
			id:        "community:" + c.Community,
			community: c.Community,
			text:      b.String(),
		})

		info, ok := p.CommunityInfo[c.Community]
		if !ok || (info.Title == "" && info.Description == "") {
			continue
		}
		text := fmt.Sprintf("r/%s", c.Community)
		if info.Title != "" {
			text += " (" + info.Title + ")"
		}
		if info.Description != "" {
			text += ": " + info.Description
		}
		out = append(out, source{
			kind:      model.FragmentCommunity,
			id:        "community-info:" + c.Community,
			community: c.Community,
			text:      text,
		})
	}
	return out
}

func recordSources(p model.PersonaRecord) []source {
	out := make([]source, 0, len(p.Records))
	for _, r := range p.Records {
		var b strings.Builder
		fmt.Fprintf(&b, "%s by u/%s in r/%s on %s", capitalizeKind(r.Kind), p.UserID, r.Community, r.Timestamp.Format("2006-01-02"))
		if r.Title != "" && r.Title != r.Body {
			fmt.Fprintf(&b, ", titled %q", r.Title)
		}
		b.WriteString(": ")
		b.WriteString(common.Truncate(r.Body, recordExcerptRunes))
		out = append(out, source{
			kind:      model.FragmentRecord,
			id:        string(r.Kind) + ":" + r.ID,
			community: r.Community,
			text:      b.String(),
		})
	}
	return out
}

func capitalizeKind(k model.Kind) string {
	if k == model.KindPost {
		return "Post"
	}
	return "Comment"
}
