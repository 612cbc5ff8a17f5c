package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/provider"
)

// IPPositioner approximates the device position from its public IP address.
// Coarse, but needs no permission prompt and works on every desktop.
type IPPositioner struct {
	Client *http.Client
	URL    string
}

func NewIPPositioner() *IPPositioner {
	return &IPPositioner{
		Client: &http.Client{Timeout: config.GeoIPTimeout},
		URL:    config.GeoIPURL,
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

func (p *IPPositioner) Position(ctx context.Context) (float64, float64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %w", provider.ErrGeocodeUnavailable, err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %w", provider.ErrGeocodeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, "", fmt.Errorf("%w: unexpected status %d", provider.ErrGeocodeUnavailable, resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, "", fmt.Errorf("%w: decoding response: %w", provider.ErrGeocodeUnavailable, err)
	}
	if body.Status != "success" {
		return 0, 0, "", fmt.Errorf("%w: %s", provider.ErrGeocodeUnavailable, body.Message)
	}
	return body.Lat, body.Lon, body.City, nil
}
