package model

// Priority is the single preference dimension that dominates scoring
// when set. Empty means the default weight split applies.
type Priority string

const (
	PriorityPrice    Priority = "price"
	PriorityRooms    Priority = "rooms"
	PriorityLocation Priority = "location"
	PrioritySize     Priority = "size"
)

// ValidPriority reports whether p is one of the recognized dimensions
// (or unset).
func ValidPriority(p Priority) bool {
	switch p {
	case "", PriorityPrice, PriorityRooms, PriorityLocation, PrioritySize:
		return true
	}
	return false
}

// PreferenceProfile is a user's stated apartment search criteria. All
// bounds are half-optional: a nil pointer means "no bound on this side".
// The profile is read once per ranking request and never mutated.
type PreferenceProfile struct {
	City           string   `json:"city,omitempty"`
	Neighborhood   string   `json:"neighborhood,omitempty"`
	MinRooms       *float64 `json:"minRooms,omitempty"`
	MaxRooms       *float64 `json:"maxRooms,omitempty"`
	MinPrice       *int     `json:"minPrice,omitempty"`
	MaxPrice       *int     `json:"maxPrice,omitempty"`
	MinSquareMeter *int     `json:"minSquareMeter,omitempty"`
	MaxSquareMeter *int     `json:"maxSquareMeter,omitempty"`
	PropertyType   string   `json:"propertyType,omitempty"`
	MinFloor       *int     `json:"minFloor,omitempty"`
	MaxFloor       *int     `json:"maxFloor,omitempty"`
	TagsWanted     TagList  `json:"tagsWanted,omitempty"`
	TagsExcluded   TagList  `json:"tagsExcluded,omitempty"`
	Priority       Priority `json:"priority,omitempty"`

	// Reference coordinate for distance filtering. Both must be set for
	// the filter to activate.
	Lat *float64 `json:"preferredLat,omitempty"`
	Lng *float64 `json:"preferredLng,omitempty"`
}

// HasCoordinate reports whether the profile carries a usable reference
// point for distance filtering.
func (p PreferenceProfile) HasCoordinate() bool {
	return p.Lat != nil && p.Lng != nil
}
