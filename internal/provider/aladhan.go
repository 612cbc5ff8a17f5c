package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/engine"
)

// ErrScheduleUnavailable wraps every failure to obtain a day's timings, so
// callers can keep a stale schedule on screen instead of blanking the UI.
var ErrScheduleUnavailable = errors.New("prayer schedule unavailable")

// TimingsProvider fetches the raw prayer timings for one day and position.
type TimingsProvider interface {
	Timings(ctx context.Context, day time.Time, lat, lon float64, method, school int) (engine.Timings, error)
}

// aladhanEnvelope mirrors the documented response shape. The API reports its
// own status in the body; the HTTP status alone is not trustworthy.
type aladhanEnvelope struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type aladhanData struct {
	Timings engine.Timings `json:"timings"`
}

// AladhanClient implements TimingsProvider against the aladhan.com API.
// BaseURL is exported so tests can point it at an httptest server.
type AladhanClient struct {
	Client  *http.Client
	BaseURL string
}

func NewAladhanClient() *AladhanClient {
	return &AladhanClient{
		Client:  &http.Client{Timeout: config.HTTPTimeout},
		BaseURL: config.AladhanBaseURL,
	}
}

// Timings fetches one day's timings. A non-200 body code counts as failure
// even under HTTP 200. Pass school config.SchoolUnset to omit the parameter.
func (c *AladhanClient) Timings(ctx context.Context, day time.Time, lat, lon float64, method, school int) (engine.Timings, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("method", strconv.Itoa(method))
	if school != config.SchoolUnset {
		q.Set("school", strconv.Itoa(school))
	}

	endpoint := fmt.Sprintf("%s/timings/%s?%s", c.BaseURL, day.Format(config.ProviderDateLayout), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return engine.Timings{}, fmt.Errorf("%w: %w", ErrScheduleUnavailable, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return engine.Timings{}, fmt.Errorf("%w: %w", ErrScheduleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return engine.Timings{}, fmt.Errorf("%w: unexpected status %d", ErrScheduleUnavailable, resp.StatusCode)
	}

	var envelope aladhanEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return engine.Timings{}, fmt.Errorf("%w: decoding response: %w", ErrScheduleUnavailable, err)
	}
	if envelope.Code != http.StatusOK {
		return engine.Timings{}, fmt.Errorf("%w: api code %d (%s)", ErrScheduleUnavailable, envelope.Code, envelope.Status)
	}

	var data aladhanData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return engine.Timings{}, fmt.Errorf("%w: decoding timings: %w", ErrScheduleUnavailable, err)
	}
	return data.Timings, nil
}
