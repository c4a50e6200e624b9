package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/driver"
	"github.com/agenthands/persona/internal/platform/logger"
)

// Exporter mirrors a persona into the graph as User-[:ACTIVE_IN]->Community.
type Exporter struct {
	Driver driver.GraphDriver
	log    *logger.Logger
}

func NewExporter(d driver.GraphDriver, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Exporter{Driver: d, log: log}
}

// CommunityEdge is one ACTIVE_IN relationship read back from the graph.
type CommunityEdge struct {
	Community    string `json:"community"`
	Interactions int64  `json:"interactions"`
	Dominant     string `json:"dominant"`
}

func (e *Exporter) BuildIndices(ctx context.Context) error {
	return e.Driver.BuildIndices(ctx)
}

// Export writes the user node and replaces its community edges. It returns the number of edges written.
func (e *Exporter) Export(ctx context.Context, p model.PersonaRecord) (int, error) {
	traits := make(map[string]interface{}, model.NumTraitAxes)
	for _, a := range model.TraitAxes() {
		if p.Traits[a].Determined {
			traits[a.String()] = p.Traits[a].Value
		}
	}

	params := map[string]interface{}{
		"username":      p.UserID,
		"mbti":          p.MBTIType,
		"link_karma":    p.Account.LinkKarma,
		"comment_karma": p.Account.CommentKarma,
		"records":       len(p.Records),
		"generated_at":  p.GeneratedAt.UTC().Format(time.RFC3339),
		"traits":        traits,
	}
	if _, err := e.Driver.ExecuteQuery(ctx, driver.SaveUserQuery, params); err != nil {
		return 0, fmt.Errorf("save user %s: %w", p.UserID, err)
	}
	if _, err := e.Driver.ExecuteQuery(ctx, driver.ClearUserActivityQuery, map[string]interface{}{"username": p.UserID}); err != nil {
		return 0, fmt.Errorf("clear activity of %s: %w", p.UserID, err)
	}

	for i, c := range p.Communities {
		params := map[string]interface{}{
			"username":        p.UserID,
			"community":       c.Community,
			"title":           nil,
			"description":     nil,
			"rank":            i + 1,
			"interactions":    c.InteractionCount,
			"dominant":        c.Dominant.String(),
			"most_common_top": c.MostCommonTop.String(),
		}
		for _, em := range model.Emotions() {
			params[em.String()] = c.Average[em]
		}
		if info, ok := p.CommunityInfo[c.Community]; ok {
			if info.Title != "" {
				params["title"] = info.Title
			}
			if info.Description != "" {
				params["description"] = info.Description
			}
		}
		if _, err := e.Driver.ExecuteQuery(ctx, driver.SaveActivityQuery, params); err != nil {
			return i, fmt.Errorf("save community %s for %s: %w", c.Community, p.UserID, err)
		}
	}

	e.log.Info("exported persona graph", "user_id", p.UserID, "communities", len(p.Communities))
	return len(p.Communities), nil
}

// Communities reads the user's edges back in rank order.
func (e *Exporter) Communities(ctx context.Context, userID string) ([]CommunityEdge, error) {
	res, err := e.Driver.ExecuteQuery(ctx, driver.GetUserCommunitiesQuery, map[string]interface{}{"username": userID})
	if err != nil {
		return nil, fmt.Errorf("read communities of %s: %w", userID, err)
	}
	out := make([]CommunityEdge, 0, len(res.Records))
	for _, rec := range res.Records {
		name, _ := rec.Get("name")
		interactions, _ := rec.Get("interactions")
		dominant, _ := rec.Get("dominant")
		edge := CommunityEdge{}
		edge.Community, _ = name.(string)
		edge.Interactions, _ = interactions.(int64)
		edge.Dominant, _ = dominant.(string)
		if edge.Community == "" {
			return nil, fmt.Errorf("read communities of %s: record without name", userID)
		}
		out = append(out, edge)
	}
	return out, nil
}
