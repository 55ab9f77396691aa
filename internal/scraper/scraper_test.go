package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liancohen0104/Rentmate/internal/config"
	"github.com/Liancohen0104/Rentmate/internal/model"
	"github.com/Liancohen0104/Rentmate/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// feedPage renders a fake feed page embedding the given listings.
func feedPage(t *testing.T, listings []map[string]any) string {
	t.Helper()
	blob, err := json.Marshal(map[string]any{
		"props": map[string]any{
			"pageProps": map[string]any{
				"enums": map[string]any{
					"propertyCondition": map[string]string{"1": "new", "2": "renovated"},
				},
				"dehydratedState": map[string]any{
					"queries": []any{
						map[string]any{
							"state": map[string]any{
								"data": map[string]any{"private": listings},
							},
						},
					},
				},
			},
		},
	})
	require.NoError(t, err)
	return fmt.Sprintf(`<html><body><script id="__NEXT_DATA__" type="application/json">%s</script></body></html>`, blob)
}

func feedListing(id int64, city string) map[string]any {
	return map[string]any{
		"orderId": id,
		"token":   fmt.Sprintf("tok-%d", id),
		"address": map[string]any{
			"city":   map[string]any{"text": city},
			"street": map[string]any{"text": " Herzl "},
			"house":  map[string]any{"number": 12, "floor": 3},
			"coords": map[string]any{"lat": 32.05, "lon": 34.77},
		},
		"price": 5500,
		"additionalDetails": map[string]any{
			"property":          map[string]any{"text": "apartment"},
			"roomsCount":        3.5,
			"squareMeter":       80,
			"propertyCondition": map[string]any{"id": 2},
		},
		"metaData": map[string]any{
			"coverImage": "cover.jpg",
			"images":     []string{"a.jpg"},
		},
		"tags": []any{
			map[string]any{"name": " balcony "},
			map[string]any{"name": ""},
		},
	}
}

func TestExtractNextData(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    string
		wantErr bool
	}{
		{
			"well formed",
			`<script id="__NEXT_DATA__" type="application/json">{"a":1}</script>`,
			`{"a":1}`,
			false,
		},
		{
			"surrounded by markup",
			`<html><head></head><body><div>x</div><script id="__NEXT_DATA__">{"b":2}</script><footer/></body></html>`,
			`{"b":2}`,
			false,
		},
		{"missing", `<html><body>nothing here</body></html>`, "", true},
		{"unterminated", `<script id="__NEXT_DATA__">{"c":3}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractNextData(tt.html)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	var raw rawListing
	data, err := json.Marshal(feedListing(7, "Tel Aviv"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))

	enums := feedEnums{PropertyCondition: map[string]string{"2": "renovated"}}
	got := normalize(raw, enums, "https://feed.example.com/rent")

	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "tok-7", got.Token)
	assert.Equal(t, "https://feed.example.com/rent", got.OriginalURL)
	assert.Equal(t, "Tel Aviv", got.City)
	assert.Equal(t, "Herzl", got.Street)
	require.NotNil(t, got.HouseNumber)
	assert.Equal(t, 12, *got.HouseNumber)
	require.NotNil(t, got.Rooms)
	assert.Equal(t, 3.5, *got.Rooms)
	assert.Equal(t, "renovated", got.Condition)
	assert.Equal(t, model.TagList{"balcony"}, got.Tags)
}

func TestNormalizeUnknownCondition(t *testing.T) {
	var raw rawListing
	data, err := json.Marshal(feedListing(1, "Haifa"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))

	got := normalize(raw, feedEnums{}, "https://x")
	assert.Empty(t, got.Condition)
	require.NotNil(t, got.ConditionID)
	assert.Equal(t, 2, *got.ConditionID)
}

func TestScraperRun(t *testing.T) {
	pages := map[string]string{
		"1": feedPage(t, []map[string]any{
			feedListing(1, "Tel Aviv"),
			feedListing(2, "Tel Aviv"),
			{"orderId": 0}, // promo row without an id, skipped
		}),
		"2": feedPage(t, []map[string]any{feedListing(3, "Haifa")}),
		"3": feedPage(t, nil),
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("Page")
		assert.Equal(t, "rent", r.URL.Query().Get("category"))
		fmt.Fprint(w, pages[page])
	}))
	defer ts.Close()

	st := newTestStore(t)
	sc := New(st, []Source{{
		Name:    "test-feed",
		BaseURL: ts.URL,
		Params:  map[string]string{"category": "rent"},
	}}, config.ScrapeConfig{RatePerSec: 100, MaxPages: 10})

	stored, err := sc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stored)

	listings, err := st.ListListings(context.Background())
	require.NoError(t, err)
	assert.Len(t, listings, 3)
}

func TestScraperRunRespectsPageCap(t *testing.T) {
	var requested int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested++
		// Never-empty feed: the cap has to stop pagination.
		fmt.Fprint(w, feedPage(t, []map[string]any{feedListing(int64(requested), "Tel Aviv")}))
	}))
	defer ts.Close()

	st := newTestStore(t)
	sc := New(st, []Source{{Name: "endless", BaseURL: ts.URL, MaxPages: 2}}, config.ScrapeConfig{RatePerSec: 100})

	stored, err := sc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Equal(t, 2, requested)
}

func TestScraperRunBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer ts.Close()

	st := newTestStore(t)
	sc := New(st, []Source{{Name: "blocked", BaseURL: ts.URL}}, config.ScrapeConfig{RatePerSec: 100})

	_, err := sc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - name: main-feed
    base_url: https://feed.example.com/rent
    params:
      category: rent
    max_pages: 3
`), 0o644))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "main-feed", sources[0].Name)
	assert.Equal(t, "https://feed.example.com/rent", sources[0].BaseURL)
	assert.Equal(t, map[string]string{"category": "rent"}, sources[0].Params)
	assert.Equal(t, 3, sources[0].MaxPages)
}

func TestLoadSourcesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSources(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("sources: []\n"), 0o644))
	_, err = LoadSources(empty)
	assert.Error(t, err)

	noURL := filepath.Join(dir, "nourl.yaml")
	require.NoError(t, os.WriteFile(noURL, []byte("sources:\n  - name: broken\n"), 0o644))
	_, err = LoadSources(noURL)
	assert.Error(t, err)
}
