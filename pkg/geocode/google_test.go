package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Tel Aviv", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":32.0853,"lng":34.7818}}}]}`)
	}))
	defer ts.Close()

	g := New("test-key", WithBaseURL(ts.URL))

	got, err := g.Lookup(context.Background(), "Tel Aviv")
	require.NoError(t, err)
	assert.True(t, got.Matched)
	assert.InDelta(t, 32.0853, got.Latitude, 0.0001)
	assert.InDelta(t, 34.7818, got.Longitude, 0.0001)
}

func TestLookupNoResults(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero results", `{"status":"ZERO_RESULTS","results":[]}`},
		{"ok but empty", `{"status":"OK","results":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			g := New("test-key", WithBaseURL(ts.URL))
			got, err := g.Lookup(context.Background(), "Nowhereville")
			require.NoError(t, err)
			assert.False(t, got.Matched)
		})
	}
}

func TestLookupErrors(t *testing.T) {
	t.Run("no key", func(t *testing.T) {
		g := New("")
		_, err := g.Lookup(context.Background(), "Tel Aviv")
		assert.Error(t, err)
	})

	t.Run("server error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer ts.Close()

		g := New("test-key", WithBaseURL(ts.URL))
		_, err := g.Lookup(context.Background(), "Tel Aviv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("garbage body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>not json</html>")
		}))
		defer ts.Close()

		g := New("test-key", WithBaseURL(ts.URL))
		_, err := g.Lookup(context.Background(), "Tel Aviv")
		assert.Error(t, err)
	})
}
