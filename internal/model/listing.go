package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Listing is a single rental apartment record as produced by the scraper.
// The ID is the upstream listing identifier and must survive every
// transformation unchanged — ranking results are joined back on it.
type Listing struct {
	ID           int64    `json:"id"`
	Token        string   `json:"token,omitempty"`
	OriginalURL  string   `json:"originalUrl,omitempty"`
	City         string   `json:"city,omitempty"`
	Area         string   `json:"area,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	Street       string   `json:"street,omitempty"`
	HouseNumber  *int     `json:"houseNumber,omitempty"`
	Floor        *int     `json:"floor,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	Price        *int     `json:"price,omitempty"`
	PriceBefore  *int     `json:"priceBefore,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
	Rooms        *float64 `json:"rooms,omitempty"`
	Size         *int     `json:"size,omitempty"`
	ConditionID  *int     `json:"conditionId,omitempty"`
	Condition    string   `json:"conditionText,omitempty"`
	CoverImage   string   `json:"coverImage,omitempty"`
	Images       []string `json:"images,omitempty"`
	Tags         TagList  `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Key returns the canonical text form of the listing identifier. All
// identifier comparisons go through this so numeric and string ids from
// different sources compare equal.
func (l Listing) Key() string {
	return strconv.FormatInt(l.ID, 10)
}

// TagList is a set of free-text listing tags. Upstream sources disagree on
// the wire shape — some emit a JSON array, some a single comma-delimited
// string — so unmarshalling accepts both and normalizes to a clean slice.
type TagList []string

// UnmarshalJSON accepts either ["a","b"] or "a, b" and drops empty entries.
// Any other shape yields an empty list rather than an error.
func (t *TagList) UnmarshalJSON(data []byte) error {
	var arr []any
	if err := json.Unmarshal(data, &arr); err == nil {
		*t = normalizeTagSlice(arr)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = SplitTags(s)
		return nil
	}
	*t = TagList{}
	return nil
}

// SplitTags splits a comma-delimited tag string, trimming whitespace and
// dropping empties.
func SplitTags(s string) TagList {
	parts := strings.Split(s, ",")
	out := make(TagList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeTagSlice(arr []any) TagList {
	out := make(TagList, 0, len(arr))
	for _, v := range arr {
		switch tv := v.(type) {
		case string:
			if s := strings.TrimSpace(tv); s != "" {
				out = append(out, s)
			}
		case float64:
			if tv != 0 {
				out = append(out, strconv.FormatFloat(tv, 'f', -1, 64))
			}
		case bool:
			if tv {
				out = append(out, "true")
			}
		}
	}
	return out
}

// NormalizeTags coerces an arbitrary decoded JSON value into a TagList.
// Lists keep their truthy entries stringified, delimited strings are
// split, anything else is empty. The operation is idempotent.
func NormalizeTags(raw any) TagList {
	switch v := raw.(type) {
	case nil:
		return TagList{}
	case TagList:
		return SplitRejoin(v)
	case []string:
		out := make(TagList, 0, len(v))
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		return normalizeTagSlice(v)
	case string:
		return SplitTags(v)
	default:
		return TagList{}
	}
}

// SplitRejoin re-normalizes an already-typed TagList (trim + drop empty).
func SplitRejoin(t TagList) TagList {
	out := make(TagList, 0, len(t))
	for _, s := range t {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MinimalListing is the allow-listed projection of a Listing exposed to
// the ranking model. Optional fields are pointers so missing values
// serialize as explicit nulls and repeated serializations of the same
// listing are byte-identical.
type MinimalListing struct {
	ID           int64    `json:"id"`
	City         *string  `json:"city"`
	Area         *string  `json:"area"`
	Neighborhood *string  `json:"neighborhood"`
	Street       *string  `json:"street"`
	HouseNumber  *int     `json:"houseNumber"`
	Price        *int     `json:"price"`
	PriceBefore  *int     `json:"priceBefore"`
	PropertyType *string  `json:"propertyType"`
	Rooms        *float64 `json:"rooms"`
	SquareMeter  *int     `json:"squareMeter"`
	Floor        *int     `json:"floor"`
	Condition    *string  `json:"condition"`
	Tags         TagList  `json:"tags"`
}
