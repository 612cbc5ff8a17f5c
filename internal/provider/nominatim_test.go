package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNominatimServer(t *testing.T, handler http.HandlerFunc) *NominatimClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewNominatimClient()
	c.BaseURL = srv.URL
	return c
}

func jsonResponse(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(body))
}

func TestNominatimSearch(t *testing.T) {
	c := newNominatimServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "fr", r.URL.Query().Get("countrycodes"))
		assert.Equal(t, "lyon", r.URL.Query().Get("q"))
		jsonResponse(w, `[
			{"name": "Lyon", "lat": "45.7578", "lon": "4.8320"},
			{"name": "Lyon 3e", "lat": "45.7599", "lon": "4.8490"},
			{"name": "broken", "lat": "abc", "lon": "4.0"}
		]`)
	})

	cities, err := c.Search(context.Background(), "lyon")
	require.NoError(t, err)
	require.Len(t, cities, 2, "unparseable coordinates are dropped")
	assert.Equal(t, "Lyon", cities[0].Name)
	assert.InDelta(t, 45.7578, cities[0].Lat, 0.0001)
	assert.InDelta(t, 4.8320, cities[0].Lon, 0.0001)
}

func TestNominatimSearchRejectsNonJSON(t *testing.T) {
	c := newNominatimServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>Access blocked</html>"))
	})

	_, err := c.Search(context.Background(), "paris")
	assert.ErrorIs(t, err, ErrGeocodeUnavailable)
}

func TestNominatimSearchHTTPError(t *testing.T) {
	c := newNominatimServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Search(context.Background(), "paris")
	assert.ErrorIs(t, err, ErrGeocodeUnavailable)
}

func TestNominatimReverse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"city", `{"address": {"city": "Marseille"}}`, "Marseille"},
		{"town when no city", `{"address": {"town": "Annonay"}}`, "Annonay"},
		{"village when no town", `{"address": {"village": "Chamonix"}}`, "Chamonix"},
		{"nothing usable", `{"address": {}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newNominatimServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/reverse", r.URL.Path)
				jsonResponse(w, tt.body)
			})

			name, err := c.Reverse(context.Background(), 43.29, 5.37)
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}
}
