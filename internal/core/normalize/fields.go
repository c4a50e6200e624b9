package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/agenthands/persona/internal/core/model"
)

var (
	idKeys        = []string{"id", "name", "permalink", "url", "reddit_url"}
	timestampKeys = []string{"created_at", "created_utc", "timestamp"}
	bodyKeys      = []string{"body", "selftext", "text"}
	communityKeys = []string{"subreddit", "community", "subreddit_name"}
	scoreKeys     = []string{"score", "ups", "engagement"}
)

// kindKey is authoritative. typeKey only counts when it names a known kind,
// since Reddit payloads also use "type" for media and link types.
const (
	kindKey = "kind"
	typeKey = "type"
)

// lookup returns the first present, non-null alias.
func lookup(p model.RawPayload, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := p[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupString(p model.RawPayload, keys []string) string {
	v, ok := lookup(p, keys)
	if !ok {
		return ""
	}
	return strings.TrimSpace(asString(v))
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(v)
	}
}

// parseTimestamp accepts epoch seconds (numeric or numeric string) and any
// date layout dateparse understands. Zone-less values are read as UTC.
func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case float64:
		return epoch(t)
	case int:
		return epoch(float64(t))
	case int64:
		return epoch(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, err
		}
		return epoch(f)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty timestamp")
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return epoch(f)
		}
		ts, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return time.Time{}, err
		}
		return ts.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func epoch(sec float64) (time.Time, error) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		return time.Time{}, fmt.Errorf("invalid epoch %v", sec)
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
}

func parseInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// normalizeCommunity lower-cases and strips an "r/" prefix.
func normalizeCommunity(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimPrefix(s, "r/")
	return s
}

// merge overlays outer onto a copy of inner without replacing keys inner already has.
func merge(inner, outer model.RawPayload, skip string) model.RawPayload {
	out := make(model.RawPayload, len(inner)+len(outer))
	for k, v := range inner {
		out[k] = v
	}
	for k, v := range outer {
		if k == skip {
			continue
		}
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}
