package location

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/provider"
)

// Location is a resolved position with a display name.
type Location struct {
	Latitude  float64
	Longitude float64
	Name      string
}

// Positioner obtains the device's approximate position.
type Positioner interface {
	Position(ctx context.Context) (lat, lon float64, city string, err error)
}

// Resolver combines device positioning with geocoding. Every lookup failure
// degrades to the fixed fallback location; the resolver itself never errors.
type Resolver struct {
	Geocoder   provider.Geocoder
	Positioner Positioner

	logger *slog.Logger
}

func NewResolver(g provider.Geocoder, p Positioner, logger *slog.Logger) *Resolver {
	return &Resolver{
		Geocoder:   g,
		Positioner: p,
		logger:     logger.With(config.LogKeyComponent, config.CompResolver),
	}
}

// Fallback is the location used when everything else fails.
func Fallback() Location {
	return Location{
		Latitude:  config.FallbackLatitude,
		Longitude: config.FallbackLongitude,
		Name:      config.FallbackCityName,
	}
}

// Current resolves the device position, reverse-geocoding a display name for
// it. Positioning failure returns the fallback location.
func (r *Resolver) Current(ctx context.Context) Location {
	lat, lon, city, err := r.Positioner.Position(ctx)
	if err != nil {
		r.logger.Warn(config.MsgGeoFallback, config.LogKeyError, err.Error())
		return Fallback()
	}

	if city == "" {
		name, err := r.Geocoder.Reverse(ctx, lat, lon)
		if err != nil {
			r.logger.Warn(config.MsgGeoFallback, config.LogKeyError, err.Error())
		}
		city = name
	}
	if city == "" {
		city = config.DetectedCityName
	}
	return Location{Latitude: lat, Longitude: lon, Name: city}
}

// Search geocodes the query into at most MaxCitySuggestions distinct cities.
// Queries shorter than the minimum return nothing without a network call.
// Duplicate names (case-insensitive) keep their first, most relevant result.
func (r *Resolver) Search(ctx context.Context, query string) ([]provider.City, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < config.MinQueryLength {
		return nil, nil
	}

	cities, err := r.Geocoder.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(cities))
	out := make([]provider.City, 0, config.MaxCitySuggestions)
	for _, c := range cities {
		key := strings.ToLower(c.Name)
		if c.Name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == config.MaxCitySuggestions {
			break
		}
	}

	r.logger.Debug(config.MsgCitySearch,
		config.LogKeyQuery, query,
		config.LogKeyCount, len(out))
	return out, nil
}

// Nearby suggests cities around the device position by searching for the
// reverse-geocoded locality name. When no name resolves, the raw position is
// returned as the single suggestion.
func (r *Resolver) Nearby(ctx context.Context) []provider.City {
	loc := r.Current(ctx)
	if loc.Name != config.DetectedCityName && loc.Name != config.FallbackCityName {
		if cities, err := r.Search(ctx, loc.Name); err == nil && len(cities) > 0 {
			return cities
		}
	}
	return []provider.City{{Name: loc.Name, Lat: loc.Latitude, Lon: loc.Longitude}}
}
