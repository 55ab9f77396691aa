package match

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Liancohen0104/Rentmate/internal/model"
)

// jsonChunk greedily grabs the first balanced-looking JSON object or
// array substring. A bounded pattern match, not a real parser — the
// strict json.Unmarshal afterwards decides whether the chunk is usable.
var jsonChunk = regexp.MustCompile(`(?s)\{.*\}|\[.*\]`)

// parseScores extracts a per-identifier score map from raw model output.
// The text is semi-trusted: it may be fenced, wrapped in prose, or
// contain junk items. Returns ok=false when no usable item list can be
// recovered; individual bad items are dropped, never fatal.
func parseScores(text string) (map[string]model.ScoreInfo, bool) {
	parsed, ok := tryParseJSON(text)
	if !ok {
		return nil, false
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, false
	}
	items, ok := obj["items"].([]any)
	if !ok {
		return nil, false
	}

	scores := make(map[string]model.ScoreInfo, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, ok := coerceID(item["id"])
		if !ok {
			continue
		}
		score, ok := coerceFloat(item["score"])
		if !ok {
			continue
		}
		reason, _ := item["reason"].(string)
		// Last write wins on duplicate ids.
		scores[id] = model.ScoreInfo{Score: score, Reason: reason}
	}
	return scores, true
}

// tryParseJSON attempts a strict parse of the whole text, then of the
// first JSON-looking substring.
func tryParseJSON(text string) (any, bool) {
	text = stripFences(text)

	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v, true
	}

	chunk := jsonChunk.FindString(text)
	if chunk == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(chunk), &v); err != nil {
		return nil, false
	}
	return v, true
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}

// coerceID normalizes a loosely-typed identifier to canonical text.
// JSON numbers arrive as float64; integral values keep their integer
// rendering so they match Listing.Key.
func coerceID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case float64:
		if id == math.Trunc(id) {
			return strconv.FormatInt(int64(id), 10), true
		}
		return strconv.FormatFloat(id, 'f', -1, 64), true
	default:
		return "", false
	}
}

// coerceFloat converts a score value to float64, rejecting anything
// that is not cleanly numeric.
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f)
	default:
		return 0, false
	}
}
