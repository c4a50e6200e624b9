package normalize

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/platform/logger"
)

// UnknownCommunity is assigned to records whose payload names no community.
const UnknownCommunity = "unknown"

type Result struct {
	UserID      string
	Account     model.AccountProfile
	Records     []model.ActivityRecord
	Communities map[string]model.CommunityInfo
	Dropped     int
	Duplicates  int
}

type Normalizer struct {
	log *logger.Logger
}

func NewNormalizer(log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{log: log}
}

// LoadExport decodes a persisted collector export.
func LoadExport(path string) (model.RawExport, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.RawExport{}, fmt.Errorf("failed to open export '%s': %w", path, err)
	}
	defer f.Close()
	return DecodeExport(f)
}

func DecodeExport(r io.Reader) (model.RawExport, error) {
	var export model.RawExport
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&export); err != nil {
		return model.RawExport{}, &model.MalformedInputError{Field: "export", Source: "json", Err: err}
	}
	return export, nil
}

type rawItem struct {
	payload     model.RawPayload
	defaultKind model.Kind
	source      string
	position    int
}

// Normalize converts a raw export into chronologically ordered records.
// It has no side effects.
func (n *Normalizer) Normalize(export model.RawExport) (Result, error) {
	res := Result{
		Account:     accountProfile(export),
		Communities: communityInfo(export.SubredditsMaster),
	}
	res.UserID = strings.TrimSpace(export.UserID)
	if res.UserID == "" {
		res.UserID = res.Account.Username
	}
	if res.UserID == "" {
		return Result{}, &model.MalformedInputError{Field: "user_id", Source: "export"}
	}
	if res.Account.Username == "" {
		res.Account.Username = res.UserID
	}

	items := flatten(export)
	seen := make(map[string]bool, len(items))
	records := make([]model.ActivityRecord, 0, len(items))

	for _, it := range items {
		rec, err := toRecord(it)
		if err != nil {
			return Result{}, err
		}
		if rec == nil {
			res.Dropped++
			continue
		}
		key := string(rec.Kind) + "\x00" + rec.ID
		if seen[key] {
			res.Duplicates++
			continue
		}
		seen[key] = true
		records = append(records, *rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.Before(records[j].Timestamp)
		}
		return records[i].ID < records[j].ID
	})
	res.Records = records

	n.log.Debug("normalized export",
		"user", res.UserID,
		"records", len(records),
		"dropped", res.Dropped,
		"duplicates", res.Duplicates,
	)
	return res, nil
}

// flatten unwraps post_info envelopes and comment groups into one item list.
func flatten(export model.RawExport) []rawItem {
	var items []rawItem
	for i, p := range export.Posts {
		if inner, ok := p["post_info"].(map[string]any); ok {
			p = merge(inner, p, "post_info")
		}
		items = append(items, rawItem{payload: p, defaultKind: model.KindPost, source: "posts", position: i})
	}
	for i, c := range export.Comments {
		group, ok := c["comments"].([]any)
		if !ok {
			items = append(items, rawItem{payload: c, defaultKind: model.KindComment, source: "comments", position: i})
			continue
		}
		parent := model.RawPayload{}
		for _, k := range communityKeys {
			if v, ok := c[k]; ok {
				parent[k] = v
			}
		}
		if info, ok := c["post_info"].(map[string]any); ok {
			if _, has := lookup(parent, communityKeys); !has {
				if v, ok := lookup(info, communityKeys); ok {
					parent["subreddit"] = v
				}
			}
		}
		for j, raw := range group {
			source := fmt.Sprintf("comments[%d].comments", i)
			m, ok := raw.(map[string]any)
			if !ok {
				m = model.RawPayload{}
			}
			items = append(items, rawItem{payload: merge(m, parent, ""), defaultKind: model.KindComment, source: source, position: j})
		}
	}
	for i, a := range export.Activity {
		items = append(items, rawItem{payload: a, source: "activity", position: i})
	}
	return items
}

// toRecord returns nil for items with an empty body.
func toRecord(it rawItem) (*model.ActivityRecord, error) {
	p := it.payload
	malformed := func(field string, err error) error {
		return &model.MalformedInputError{Field: field, Position: it.position, Source: it.source, Err: err}
	}

	kind := it.defaultKind
	if raw := lookupString(p, []string{kindKey}); raw != "" {
		k, ok := model.ParseKind(strings.ToLower(raw))
		if !ok {
			return nil, malformed("kind", fmt.Errorf("unknown kind %q", raw))
		}
		kind = k
	} else if raw := lookupString(p, []string{typeKey}); raw != "" {
		if k, ok := model.ParseKind(strings.ToLower(raw)); ok {
			kind = k
		}
	}
	if kind == "" {
		return nil, malformed("kind", nil)
	}

	id := lookupString(p, idKeys)
	if id == "" {
		return nil, malformed("id", nil)
	}

	rawTS, ok := lookup(p, timestampKeys)
	if !ok {
		return nil, malformed("timestamp", nil)
	}
	ts, err := parseTimestamp(rawTS)
	if err != nil {
		return nil, malformed("timestamp", err)
	}

	title := lookupString(p, []string{"title"})
	body := lookupString(p, bodyKeys)
	if body == "" && kind == model.KindPost {
		body = title
	}
	if body == "" {
		return nil, nil
	}

	community := normalizeCommunity(lookupString(p, communityKeys))
	if community == "" {
		community = UnknownCommunity
	}

	score := 0
	if v, ok := lookup(p, scoreKeys); ok {
		if s, ok := parseInt(v); ok {
			score = s
		}
	}

	url := lookupString(p, []string{"url", "reddit_url", "permalink"})

	return &model.ActivityRecord{
		ID:        id,
		Kind:      kind,
		Body:      body,
		Title:     title,
		URL:       url,
		Community: community,
		Timestamp: ts,
		Score:     score,
	}, nil
}

func accountProfile(export model.RawExport) model.AccountProfile {
	info := export.UserInfo
	if info == nil {
		info = export.Account
	}
	var acc model.AccountProfile
	if info == nil {
		return acc
	}
	acc.Username = lookupString(info, []string{"username", "name"})
	if v, ok := lookup(info, timestampKeys); ok {
		if ts, err := parseTimestamp(v); err == nil {
			acc.CreatedAt = &ts
		}
	}
	if v, ok := info["link_karma"]; ok {
		acc.LinkKarma, _ = parseInt(v)
	}
	if v, ok := info["comment_karma"]; ok {
		acc.CommentKarma, _ = parseInt(v)
	}
	if list, ok := info["trophies"].([]any); ok {
		for _, t := range list {
			if s := strings.TrimSpace(asString(t)); s != "" {
				acc.Trophies = append(acc.Trophies, s)
			}
		}
	}
	return acc
}

func communityInfo(master map[string]model.RawPayload) map[string]model.CommunityInfo {
	if len(master) == 0 {
		return nil
	}
	out := make(map[string]model.CommunityInfo, len(master))
	for name, info := range master {
		key := normalizeCommunity(name)
		if key == "" {
			continue
		}
		out[key] = model.CommunityInfo{
			Key:         key,
			Title:       lookupString(info, []string{"title"}),
			Description: lookupString(info, []string{"public_description", "description"}),
		}
	}
	return out
}
