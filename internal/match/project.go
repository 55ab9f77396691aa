package match

import "github.com/Liancohen0104/Rentmate/internal/model"

// toMinimal projects a full listing onto the field allow-list the
// ranking model is permitted to see. No images, no internal flags.
// Missing optional values stay nil so they serialize as explicit nulls
// and the resulting prompt is stable across calls.
func toMinimal(l model.Listing) model.MinimalListing {
	return model.MinimalListing{
		ID:           l.ID,
		City:         optString(l.City),
		Area:         optString(l.Area),
		Neighborhood: optString(l.Neighborhood),
		Street:       optString(l.Street),
		HouseNumber:  l.HouseNumber,
		Price:        l.Price,
		PriceBefore:  l.PriceBefore,
		PropertyType: optString(l.PropertyType),
		Rooms:        l.Rooms,
		SquareMeter:  l.Size,
		Floor:        l.Floor,
		Condition:    optString(l.Condition),
		Tags:         model.NormalizeTags(l.Tags),
	}
}

// projectAll maps every candidate, preserving order.
func projectAll(listings []model.Listing) []model.MinimalListing {
	out := make([]model.MinimalListing, len(listings))
	for i, l := range listings {
		out[i] = toMinimal(l)
	}
	return out
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
