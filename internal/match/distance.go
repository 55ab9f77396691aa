package match

import (
	"math"

	"github.com/Liancohen0104/Rentmate/internal/model"
)

const earthRadiusKM = 6371

// haversineKM returns the great-circle distance between two points in km.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// WithinRadius retains the listings within radiusKM (inclusive) of the
// profile's reference coordinate, preserving order. Filtering is opt-in:
// without a reference coordinate the input is returned unchanged. Once
// active, listings lacking coordinates are dropped — distance to them is
// unknowable.
func WithinRadius(profile model.PreferenceProfile, listings []model.Listing, radiusKM float64) []model.Listing {
	if !profile.HasCoordinate() {
		return listings
	}

	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Lat == nil || l.Lon == nil {
			continue
		}
		if haversineKM(*profile.Lat, *profile.Lng, *l.Lat, *l.Lon) <= radiusKM {
			out = append(out, l)
		}
	}
	return out
}
