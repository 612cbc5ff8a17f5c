package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateLayoutsParse(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		value  string
	}{
		{"cache key", DateKeyLayout, "2025-03-14"},
		{"provider path", ProviderDateLayout, "14-03-2025"},
		{"clock", ClockLayout, "05:31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := time.Parse(tt.layout, tt.value)
			require.NoError(t, err)
			assert.False(t, parsed.IsZero())
		})
	}
}

func TestProviderDateLayoutIsDayFirst(t *testing.T) {
	// aladhan expects DD-MM-YYYY in the request path.
	d := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "14-03-2025", d.Format(ProviderDateLayout))
}

func TestExternalURLsAreValid(t *testing.T) {
	for _, raw := range []string{AladhanBaseURL, NominatimBaseURL, GeoIPURL, AdhanURLDefault, AdhanURLFajr} {
		u, err := url.Parse(raw)
		require.NoError(t, err, raw)
		assert.NotEmpty(t, u.Host, raw)
	}
}

func TestFallbackLocationIsParis(t *testing.T) {
	assert.InDelta(t, 48.86, FallbackLatitude, 0.01)
	assert.InDelta(t, 2.35, FallbackLongitude, 0.01)
	assert.NotEmpty(t, FallbackCityName)
}

func TestDefaultMethodIsListed(t *testing.T) {
	found := false
	for _, m := range CalculationMethods {
		if m.ID == DefaultMethod {
			found = true
		}
	}
	assert.True(t, found, "default method must appear in the selectable list")
}

func TestFilePermissionsAreOwnerOnly(t *testing.T) {
	assert.EqualValues(t, 0600, FilePermUserRW)
	assert.EqualValues(t, 0700, DirPermUserRWX)
}

func TestBusinessWindowsArePositive(t *testing.T) {
	assert.Positive(t, ActiveWindowMinutes)
	assert.Positive(t, DefaultReminderMinutes)
	assert.Less(t, DefaultReminderMinutes, ActiveWindowMinutes)
	assert.Positive(t, int(DuaWindow))
	assert.Equal(t, time.Second, TickInterval)
}
