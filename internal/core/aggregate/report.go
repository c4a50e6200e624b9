package aggregate

import (
	"fmt"
	"io"
	"strings"

	"github.com/agenthands/persona/internal/core/model"
)

// ReportCommunities caps how many communities the report lists.
const ReportCommunities = 10

// RenderReport writes a plain-text summary of rec.
func RenderReport(w io.Writer, rec model.PersonaRecord) error {
	rw := &reportWriter{w: w}

	rw.printf("Persona report for u/%s\n", rec.UserID)
	rw.printf("Generated: %s\n", rec.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if rec.Account.CreatedAt != nil {
		rw.printf("Account created: %s\n", rec.Account.CreatedAt.Format("2006-01-02"))
	}
	rw.printf("Karma: %d link / %d comment\n", rec.Account.LinkKarma, rec.Account.CommentKarma)
	rw.printf("Activity: %d records across %d communities\n", len(rec.Records), len(rec.Communities))

	rw.section("MBTI Personality Analysis")
	rw.printf("Predicted Type: %s\n", rec.MBTIType)
	rw.printf("Dimension Scores:\n")
	for _, a := range []model.TraitAxis{model.AxisEI, model.AxisSN, model.AxisTF, model.AxisJP} {
		rw.printf(" - %-28s %s\n", mbtiTitles[a]+":", formatScore(rec.Traits[a]))
	}

	rw.section("Big Five Personality Analysis")
	for _, a := range []model.TraitAxis{model.Extroversion, model.Neuroticism, model.Agreeableness, model.Conscientiousness, model.Openness} {
		rw.printf(" - %-18s %s\n", capitalize(a.String())+":", formatScore(rec.Traits[a]))
	}

	rw.section("Community Emotion Summary")
	if len(rec.Communities) == 0 {
		rw.printf("No community activity.\n")
	}
	for i, c := range rec.Communities {
		if i == ReportCommunities {
			rw.printf("... %d more\n", len(rec.Communities)-ReportCommunities)
			break
		}
		rw.printf("%d. r/%s\n", i+1, c.Community)
		rw.printf("   Interactions: %d\n", c.InteractionCount)
		rw.printf("   Dominant Emotion: %s\n", c.Dominant)
		rw.printf("   Most Common Top Emotion: %s\n", c.MostCommonTop)
		rw.printf("   Average Emotions:\n")
		for _, e := range model.Emotions() {
			rw.printf("     %-9s %.4f\n", e.String()+":", c.Average[e])
		}
	}
	return rw.err
}

var mbtiTitles = map[model.TraitAxis]string{
	model.AxisEI: "Extraversion (E) vs Introversion (I)",
	model.AxisSN: "Sensing (S) vs Intuition (N)",
	model.AxisTF: "Thinking (T) vs Feeling (F)",
	model.AxisJP: "Judging (J) vs Perceiving (P)",
}

func formatScore(s model.TraitScore) string {
	if !s.Determined {
		return "undetermined"
	}
	return fmt.Sprintf("%+.3f", s.Value)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type reportWriter struct {
	w   io.Writer
	err error
}

func (r *reportWriter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *reportWriter) section(title string) {
	r.printf("\n%s\n%s\n", title, strings.Repeat("=", len(title)))
}
