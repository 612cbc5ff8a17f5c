package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-salat/internal/config"
)

const aladhanOKBody = `{
	"code": 200,
	"status": "OK",
	"data": {
		"timings": {
			"Fajr": "05:31",
			"Sunrise": "07:02",
			"Dhuhr": "12:30",
			"Asr": "15:45",
			"Sunset": "18:10",
			"Maghrib": "18:10",
			"Isha": "20:00"
		}
	}
}`

func newAladhanServer(t *testing.T, handler http.HandlerFunc) *AladhanClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewAladhanClient()
	c.BaseURL = srv.URL
	return c
}

func TestAladhanTimings(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	c := newAladhanServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(aladhanOKBody))
	})

	day := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	timings, err := c.Timings(context.Background(), day, 48.8566, 2.3522, 12, 1)
	require.NoError(t, err)

	assert.Equal(t, "/timings/14-03-2025", gotPath)
	assert.Equal(t, []string{"48.8566"}, gotQuery["latitude"])
	assert.Equal(t, []string{"2.3522"}, gotQuery["longitude"])
	assert.Equal(t, []string{"12"}, gotQuery["method"])
	assert.Equal(t, []string{"1"}, gotQuery["school"])
	assert.Equal(t, "05:31", timings.Fajr)
	assert.Equal(t, "20:00", timings.Isha)
}

func TestAladhanTimingsOmitsUnsetSchool(t *testing.T) {
	c := newAladhanServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("school"))
		w.Write([]byte(aladhanOKBody))
	})

	_, err := c.Timings(context.Background(), time.Now(), 48.8566, 2.3522, 12, config.SchoolUnset)
	require.NoError(t, err)
}

func TestAladhanTimingsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"body code not 200", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code": 400, "status": "Bad Request", "data": "invalid"}`))
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code": 200`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newAladhanServer(t, tt.handler)
			_, err := c.Timings(context.Background(), time.Now(), 48.8566, 2.3522, 12, config.SchoolUnset)
			assert.ErrorIs(t, err, ErrScheduleUnavailable)
		})
	}
}

func TestAladhanTimingsContextCancellation(t *testing.T) {
	c := newAladhanServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Timings(ctx, time.Now(), 48.8566, 2.3522, 12, config.SchoolUnset)
	assert.ErrorIs(t, err, ErrScheduleUnavailable)
}
