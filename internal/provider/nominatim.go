package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tartampluch/go-salat/internal/config"
)

// ErrGeocodeUnavailable wraps every geocoding failure; callers fall back to
// the default location or keep the current one.
var ErrGeocodeUnavailable = errors.New("geocoding unavailable")

// City is one geocoding result.
type City struct {
	Name string
	Lat  float64
	Lon  float64
}

// Geocoder resolves free-text city queries and reverse-geocodes coordinates.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]City, error)
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// Nominatim returns coordinates as JSON strings, not numbers.
type nominatimPlace struct {
	Name string `json:"name"`
	Lat  string `json:"lat"`
	Lon  string `json:"lon"`
}

type nominatimAddress struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
}

// NominatimClient implements Geocoder against the OpenStreetMap Nominatim
// API, restricted to French results. BaseURL is exported for tests.
type NominatimClient struct {
	Client  *http.Client
	BaseURL string
}

func NewNominatimClient() *NominatimClient {
	return &NominatimClient{
		Client:  &http.Client{Timeout: config.HTTPTimeout},
		BaseURL: config.NominatimBaseURL,
	}
}

func (c *NominatimClient) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGeocodeUnavailable, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeJSON)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGeocodeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrGeocodeUnavailable, resp.StatusCode)
	}
	// Nominatim answers rate-limit rejections with an HTML page under 200.
	if ct := resp.Header.Get(config.HeaderContentType); !strings.Contains(ct, "json") {
		return fmt.Errorf("%w: unexpected content type %q", ErrGeocodeUnavailable, ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrGeocodeUnavailable, err)
	}
	return nil
}

// Search returns French city candidates for the query, most relevant first.
func (c *NominatimClient) Search(ctx context.Context, query string) ([]City, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("countrycodes", config.NominatimCountryCode)
	q.Set("limit", strconv.Itoa(config.NominatimRawLimit))
	q.Set("featuretype", "city")

	var places []nominatimPlace
	if err := c.get(ctx, c.BaseURL+"/search?"+q.Encode(), &places); err != nil {
		return nil, err
	}

	cities := make([]City, 0, len(places))
	for _, p := range places {
		lat, err := strconv.ParseFloat(p.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(p.Lon, 64)
		if err != nil {
			continue
		}
		cities = append(cities, City{Name: p.Name, Lat: lat, Lon: lon})
	}
	return cities, nil
}

// Reverse resolves coordinates to the nearest locality name. An empty string
// with nil error means the position is known but unnamed.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")

	var place nominatimAddress
	if err := c.get(ctx, c.BaseURL+"/reverse?"+q.Encode(), &place); err != nil {
		return "", err
	}

	switch {
	case place.Address.City != "":
		return place.Address.City, nil
	case place.Address.Town != "":
		return place.Address.Town, nil
	case place.Address.Village != "":
		return place.Address.Village, nil
	}
	return "", nil
}
