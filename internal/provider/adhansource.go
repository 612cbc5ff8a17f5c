package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/engine"
)

// AdhanSource resolves the audio to play for a given prayer. Candidates are
// tried in order: the user's local file, the authenticated premium recording,
// then the public CDN fallback. It never fails: the CDN URL is the floor.
type AdhanSource struct {
	// CustomFile is the user-configured local recording, empty when unset.
	CustomFile string

	// TokenURL and MediaURL enable the optional premium source; both must be
	// set together with the credentials for it to participate.
	TokenURL     string
	MediaURL     string
	ClientID     string
	ClientSecret string

	Client *http.Client
	Clock  engine.Clock

	logger *slog.Logger

	token       string
	tokenExpiry time.Time
}

func NewAdhanSource(clock engine.Clock, logger *slog.Logger) *AdhanSource {
	return &AdhanSource{
		Client: &http.Client{Timeout: config.HTTPTimeout},
		Clock:  clock,
		logger: logger.With(config.LogKeyComponent, config.CompProvider),
	}
}

// Resolve returns the source to load into the player. Fajr gets the dedicated
// fallback recording; every other prayer falls back to the default one.
func (s *AdhanSource) Resolve(ctx context.Context, prayer string) string {
	if s.CustomFile != "" {
		if _, err := os.Stat(s.CustomFile); err == nil {
			return s.CustomFile
		}
		s.logger.Warn(config.MsgPlaybackFailed,
			config.LogKeyFile, s.CustomFile,
			config.LogKeyError, "custom adhan file not accessible")
	}

	if s.TokenURL != "" && s.MediaURL != "" && s.ClientID != "" {
		if media, err := s.premiumURL(ctx); err == nil {
			return media
		} else {
			s.logger.Warn(config.MsgPlaybackFailed,
				config.LogKeyURL, s.MediaURL,
				config.LogKeyError, err.Error())
		}
	}

	if prayer == engine.PrayerFajr {
		return config.AdhanURLFajr
	}
	return config.AdhanURLDefault
}

// premiumURL appends a fresh bearer token to the configured media URL.
func (s *AdhanSource) premiumURL(ctx context.Context) (string, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return "", err
	}
	sep := "?"
	if strings.Contains(s.MediaURL, "?") {
		sep = "&"
	}
	return s.MediaURL + sep + "access_token=" + url.QueryEscape(token), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached client-credentials token, refreshing it when
// less than the expiry buffer remains. Basic auth is attempted first; some
// deployments only accept credentials in the form body, so that is retried.
func (s *AdhanSource) accessToken(ctx context.Context) (string, error) {
	now := s.Clock.Now()
	if s.token != "" && now.Before(s.tokenExpiry) {
		return s.token, nil
	}

	tok, err := s.requestToken(ctx, true)
	if err != nil {
		tok, err = s.requestToken(ctx, false)
	}
	if err != nil {
		return "", err
	}

	s.token = tok.AccessToken
	s.tokenExpiry = now.Add(time.Duration(tok.ExpiresIn)*time.Second - config.TokenExpiryBuffer)
	return s.token, nil
}

func (s *AdhanSource) requestToken(ctx context.Context, basicAuth bool) (tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", config.OAuthGrantClientCredentials)
	if !basicAuth {
		form.Set("client_id", s.ClientID)
		form.Set("client_secret", s.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, err
	}
	req.Header.Set(config.HeaderContentType, config.MimeForm)
	if basicAuth {
		req.SetBasicAuth(s.ClientID, s.ClientSecret)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return tokenResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tokenResponse{}, fmt.Errorf("token endpoint status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return tokenResponse{}, err
	}
	if tok.AccessToken == "" {
		return tokenResponse{}, fmt.Errorf("token endpoint returned empty token")
	}
	return tok, nil
}
