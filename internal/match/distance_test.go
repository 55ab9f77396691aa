package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Liancohen0104/Rentmate/internal/model"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// Tel Aviv and nearby reference points.
var (
	telAvivLat = 32.0853
	telAvivLon = 34.7818
	haifaLat   = 32.7940
	haifaLon   = 34.9896
)

func coordListing(id int64, lat, lon float64) model.Listing {
	return model.Listing{ID: id, Lat: ptrFloat64(lat), Lon: ptrFloat64(lon)}
}

func TestHaversineKM(t *testing.T) {
	// Same point
	assert.InDelta(t, 0, haversineKM(telAvivLat, telAvivLon, telAvivLat, telAvivLon), 0.001)

	// Tel Aviv to Haifa is roughly 80km
	d := haversineKM(telAvivLat, telAvivLon, haifaLat, haifaLon)
	assert.InDelta(t, 80, d, 5)
}

func TestWithinRadiusNoReference(t *testing.T) {
	listings := []model.Listing{
		{ID: 1},
		coordListing(2, haifaLat, haifaLon),
	}

	// Without a reference coordinate the filter is a no-op, even for
	// listings missing coordinates.
	got := WithinRadius(model.PreferenceProfile{}, listings, 10)
	assert.Equal(t, listings, got)

	half := model.PreferenceProfile{Lat: ptrFloat64(telAvivLat)}
	assert.Equal(t, listings, WithinRadius(half, listings, 10))
}

func TestWithinRadiusFilters(t *testing.T) {
	profile := model.PreferenceProfile{Lat: ptrFloat64(telAvivLat), Lng: ptrFloat64(telAvivLon)}

	listings := []model.Listing{
		coordListing(1, telAvivLat, telAvivLon),       // distance 0, kept
		coordListing(2, telAvivLat+0.01, telAvivLon),  // ~1km, kept
		coordListing(3, haifaLat, haifaLon),           // ~80km, dropped
		{ID: 4},                                       // no coords, dropped
		coordListing(5, telAvivLat, telAvivLon+0.005), // ~0.5km, kept
	}

	got := WithinRadius(profile, listings, 10)

	ids := make([]int64, 0, len(got))
	for _, l := range got {
		ids = append(ids, l.ID)
	}
	// Order preserved among survivors.
	assert.Equal(t, []int64{1, 2, 5}, ids)
}

func TestWithinRadiusEmptyInput(t *testing.T) {
	profile := model.PreferenceProfile{Lat: ptrFloat64(telAvivLat), Lng: ptrFloat64(telAvivLon)}
	got := WithinRadius(profile, nil, 10)
	assert.Empty(t, got)
}
