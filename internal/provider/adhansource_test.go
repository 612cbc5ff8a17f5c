package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/engine"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func testSource(t *testing.T) (*AdhanSource, *fixedClock) {
	t.Helper()
	clock := &fixedClock{current: time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)}
	return NewAdhanSource(clock, discardLogger()), clock
}

func TestResolveCDNFallback(t *testing.T) {
	s, _ := testSource(t)

	assert.Equal(t, config.AdhanURLFajr, s.Resolve(context.Background(), engine.PrayerFajr))
	assert.Equal(t, config.AdhanURLDefault, s.Resolve(context.Background(), engine.PrayerDhuhr))
	assert.Equal(t, config.AdhanURLDefault, s.Resolve(context.Background(), engine.PrayerIsha))
}

func TestResolveCustomFileWins(t *testing.T) {
	s, _ := testSource(t)

	file := filepath.Join(t.TempDir(), "adhan.mp3")
	require.NoError(t, os.WriteFile(file, []byte("audio"), 0600))
	s.CustomFile = file

	assert.Equal(t, file, s.Resolve(context.Background(), engine.PrayerFajr))
}

func TestResolveMissingCustomFileFallsThrough(t *testing.T) {
	s, _ := testSource(t)
	s.CustomFile = filepath.Join(t.TempDir(), "gone.mp3")

	assert.Equal(t, config.AdhanURLDefault, s.Resolve(context.Background(), engine.PrayerAsr))
}

func TestResolvePremiumWithBasicAuth(t *testing.T) {
	tokenCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		assert.Equal(t, config.OAuthGrantClientCredentials, r.FormValue("grant_type"))
		w.Write([]byte(`{"access_token": "tok-1", "expires_in": 3600}`))
	}))
	t.Cleanup(srv.Close)

	s, _ := testSource(t)
	s.TokenURL = srv.URL
	s.MediaURL = "https://media.example.com/adhan"
	s.ClientID = "client-id"
	s.ClientSecret = "client-secret"

	got := s.Resolve(context.Background(), engine.PrayerDhuhr)
	assert.Equal(t, "https://media.example.com/adhan?access_token=tok-1", got)

	// A second resolve within the token lifetime reuses the cached token.
	s.Resolve(context.Background(), engine.PrayerAsr)
	assert.Equal(t, 1, tokenCalls)
}

func TestResolvePremiumBodyCredentialsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "client-id", r.FormValue("client_id"))
		assert.Equal(t, "client-secret", r.FormValue("client_secret"))
		w.Write([]byte(`{"access_token": "tok-2", "expires_in": 60}`))
	}))
	t.Cleanup(srv.Close)

	s, _ := testSource(t)
	s.TokenURL = srv.URL
	s.MediaURL = "https://media.example.com/adhan?quality=high"
	s.ClientID = "client-id"
	s.ClientSecret = "client-secret"

	got := s.Resolve(context.Background(), engine.PrayerMaghrib)
	assert.Equal(t, "https://media.example.com/adhan?quality=high&access_token=tok-2", got)
}

func TestResolveTokenExpiryRefresh(t *testing.T) {
	tokenCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		w.Write([]byte(`{"access_token": "tok", "expires_in": 60}`))
	}))
	t.Cleanup(srv.Close)

	s, clock := testSource(t)
	s.TokenURL = srv.URL
	s.MediaURL = "https://media.example.com/adhan"
	s.ClientID = "client-id"
	s.ClientSecret = "client-secret"

	s.Resolve(context.Background(), engine.PrayerDhuhr)
	// 60s lifetime minus the 30s buffer: expired after 45s.
	clock.current = clock.current.Add(45 * time.Second)
	s.Resolve(context.Background(), engine.PrayerAsr)

	assert.Equal(t, 2, tokenCalls)
}

func TestResolvePremiumFailureFallsBackToCDN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	s, _ := testSource(t)
	s.TokenURL = srv.URL
	s.MediaURL = "https://media.example.com/adhan"
	s.ClientID = "client-id"
	s.ClientSecret = "client-secret"

	assert.Equal(t, config.AdhanURLDefault, s.Resolve(context.Background(), engine.PrayerDhuhr))
}
