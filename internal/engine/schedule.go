package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-salat/internal/config"
)

// Canonical prayer and marker names as returned by the timings provider.
const (
	PrayerFajr    = "Fajr"
	PrayerSunrise = "Sunrise"
	PrayerDhuhr   = "Dhuhr"
	PrayerAsr     = "Asr"
	PrayerSunset  = "Sunset"
	PrayerMaghrib = "Maghrib"
	PrayerIsha    = "Isha"

	MarkerImsak      = "Imsak"
	MarkerMidnight   = "Midnight"
	MarkerFirstthird = "Firstthird"
	MarkerLastthird  = "Lastthird"
)

// MainPrayers lists the five obligatory prayers in chronological order. The
// countdown, reminders and the adhan only ever consider these; Sunrise and the
// other markers are display-only.
var MainPrayers = []string{PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha}

// Timings mirrors the provider's per-day timings object. Values are wall-clock
// strings, possibly with a trailing timezone annotation ("05:31 (CET)").
type Timings struct {
	Fajr       string `json:"Fajr"`
	Sunrise    string `json:"Sunrise"`
	Dhuhr      string `json:"Dhuhr"`
	Asr        string `json:"Asr"`
	Sunset     string `json:"Sunset"`
	Maghrib    string `json:"Maghrib"`
	Isha       string `json:"Isha"`
	Imsak      string `json:"Imsak"`
	Midnight   string `json:"Midnight"`
	Firstthird string `json:"Firstthird"`
	Lastthird  string `json:"Lastthird"`
}

// Schedule holds one day's prayer times in engine-ready form: minutes since
// local midnight for arithmetic, plus the cleaned display strings.
type Schedule struct {
	// Date is the local calendar day this schedule is valid for, formatted
	// with config.DateKeyLayout.
	Date string `json:"date"`

	// Times maps prayer name to minutes since midnight.
	Times map[string]int `json:"times"`

	// Display maps prayer name to its "HH:MM" wall-clock string.
	Display map[string]string `json:"display"`
}

// ParseClock converts a provider time string to minutes since midnight. A
// trailing annotation after the first space (timezone suffix) is ignored.
func ParseClock(raw string) (int, error) {
	value := raw
	if i := strings.IndexByte(value, ' '); i >= 0 {
		value = value[:i]
	}
	t, err := time.Parse(config.ClockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q: %w", config.ErrTimeFormat, raw, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NewSchedule builds a Schedule for the given day from raw provider timings.
// All five main prayers must parse; auxiliary markers are carried for display
// when they do and silently dropped when they don't.
func NewSchedule(day time.Time, raw Timings) (*Schedule, error) {
	entries := map[string]string{
		PrayerFajr:       raw.Fajr,
		PrayerSunrise:    raw.Sunrise,
		PrayerDhuhr:      raw.Dhuhr,
		PrayerAsr:        raw.Asr,
		PrayerSunset:     raw.Sunset,
		PrayerMaghrib:    raw.Maghrib,
		PrayerIsha:       raw.Isha,
		MarkerImsak:      raw.Imsak,
		MarkerMidnight:   raw.Midnight,
		MarkerFirstthird: raw.Firstthird,
		MarkerLastthird:  raw.Lastthird,
	}

	s := &Schedule{
		Date:    day.Format(config.DateKeyLayout),
		Times:   make(map[string]int, len(entries)),
		Display: make(map[string]string, len(entries)),
	}

	for name, value := range entries {
		if value == "" {
			continue
		}
		minutes, err := ParseClock(value)
		if err != nil {
			if isMainPrayer(name) {
				return nil, err
			}
			continue
		}
		s.Times[name] = minutes
		s.Display[name] = fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
	}

	for _, name := range MainPrayers {
		if _, ok := s.Times[name]; !ok {
			return nil, fmt.Errorf("%s: missing %s", config.ErrTimeFormat, name)
		}
	}
	return s, nil
}

func isMainPrayer(name string) bool {
	for _, main := range MainPrayers {
		if name == main {
			return true
		}
	}
	return false
}

// IsFor reports whether the schedule covers the given instant's calendar day.
func (s *Schedule) IsFor(now time.Time) bool {
	return s.Date == now.Format(config.DateKeyLayout)
}

// At returns the minutes-since-midnight of a prayer and whether it is known.
func (s *Schedule) At(name string) (int, bool) {
	m, ok := s.Times[name]
	return m, ok
}

// DisplayTime returns the "HH:MM" string of a prayer, or empty when unknown.
func (s *Schedule) DisplayTime(name string) string {
	return s.Display[name]
}
