package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCountdown(t *testing.T, now time.Time) (*Countdown, *MockClock) {
	t.Helper()
	clock := &MockClock{CurrentTime: now}
	c := NewCountdown(clock, discardLogger())

	s, err := NewSchedule(now, testTimings())
	require.NoError(t, err)
	c.SetSchedule(s)
	return c, clock
}

func at(h, m, s int) time.Time {
	return time.Date(2025, time.March, 14, h, m, s, 0, time.UTC)
}

func TestTickIdleWithoutSchedule(t *testing.T) {
	c := NewCountdown(&MockClock{CurrentTime: at(9, 0, 0)}, discardLogger())
	assert.Equal(t, PhaseIdle, c.Tick().Phase)
}

func TestTickStaleAfterRollover(t *testing.T) {
	c, clock := newTestCountdown(t, at(23, 0, 0))
	clock.CurrentTime = at(23, 0, 0).Add(2 * time.Hour)
	assert.Equal(t, PhaseStale, c.Tick().Phase)
}

func TestTickUpcoming(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		prayer  string
		text    string
		minutes int
	}{
		{"morning before fajr", at(4, 0, 0), PrayerFajr, "Prochain: Fajr dans 1h 31m", 91},
		{"five minutes before dhuhr", at(12, 25, 0), PrayerDhuhr, "Prochain: Dhuhr dans 0h 5m", 5},
		{"between dhuhr window and asr", at(13, 0, 0), PrayerAsr, "Prochain: Asr dans 2h 45m", 165},
		{"evening to fajr tomorrow", at(21, 0, 0), PrayerFajr, "Prochain: Fajr dans 8h 31m", 511},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCountdown(t, tt.now)
			snap := c.Tick()
			assert.Equal(t, PhaseUpcoming, snap.Phase)
			assert.Equal(t, tt.prayer, snap.Prayer)
			assert.Equal(t, tt.text, snap.Text)
			assert.Equal(t, tt.minutes, snap.Minutes)
		})
	}
}

func TestTickSecondsFormInFinalMinute(t *testing.T) {
	c, _ := newTestCountdown(t, at(12, 29, 20))
	snap := c.Tick()
	assert.Equal(t, PhaseUpcoming, snap.Phase)
	assert.Equal(t, "Prochain: Dhuhr dans 40s", snap.Text)
}

func TestTickActiveWindow(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		active bool
	}{
		{"one minute in", at(12, 31, 0), true},
		{"fifteen minutes in", at(12, 45, 0), true},
		{"sixteen minutes in", at(12, 46, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCountdown(t, tt.now)
			snap := c.Tick()
			if tt.active {
				assert.Equal(t, PhaseActive, snap.Phase)
				assert.Equal(t, PrayerDhuhr, snap.Prayer)
				assert.Equal(t, "Dhuhr - MAINTENANT", snap.Text)
			} else {
				assert.Equal(t, PhaseUpcoming, snap.Phase)
				assert.Equal(t, PrayerAsr, snap.Prayer)
			}
		})
	}
}

func TestTickStartMinuteShowsNextPrayer(t *testing.T) {
	// At the exact start minute the banner already advances, but the adhan
	// fires for the starting prayer.
	c, _ := newTestCountdown(t, at(12, 30, 0))
	c.AdhanEnabled = true

	var fired []string
	c.OnAdhan = func(prayer, clock string) {
		fired = append(fired, prayer+"@"+clock)
	}

	snap := c.Tick()
	assert.Equal(t, PhaseUpcoming, snap.Phase)
	assert.Equal(t, PrayerAsr, snap.Prayer)
	assert.Equal(t, []string{"Dhuhr@12:30"}, fired)
}

func TestAdhanFiresOncePerPrayer(t *testing.T) {
	c, clock := newTestCountdown(t, at(12, 31, 0))
	c.AdhanEnabled = true

	count := 0
	c.OnAdhan = func(string, string) { count++ }

	for i := 0; i < 5; i++ {
		clock.CurrentTime = clock.CurrentTime.Add(time.Second)
		c.Tick()
	}
	assert.Equal(t, 1, count)
}

func TestAdhanCatchesLateStart(t *testing.T) {
	// App launched three minutes after the prayer started: the trigger still
	// fires as long as the active window holds.
	c, _ := newTestCountdown(t, at(12, 33, 0))
	c.AdhanEnabled = true

	var got string
	c.OnAdhan = func(prayer, _ string) { got = prayer }
	c.Tick()
	assert.Equal(t, PrayerDhuhr, got)
}

func TestAdhanDisabled(t *testing.T) {
	c, _ := newTestCountdown(t, at(12, 31, 0))
	c.AdhanEnabled = false
	c.OnAdhan = func(string, string) { t.Fatal("adhan must not fire when disabled") }
	c.Tick()
}

func TestReminderFiresOnceInsideLeadTime(t *testing.T) {
	c, clock := newTestCountdown(t, at(12, 24, 0))
	c.ReminderMinutes = 5

	var calls []int
	c.OnReminder = func(prayer string, minutes int) {
		assert.Equal(t, PrayerDhuhr, prayer)
		calls = append(calls, minutes)
	}

	c.Tick() // 6 minutes out, nothing yet
	clock.CurrentTime = at(12, 25, 0)
	c.Tick()
	clock.CurrentTime = at(12, 26, 0)
	c.Tick()

	assert.Equal(t, []int{5}, calls)
}

func TestReminderDisabledWithZeroLeadTime(t *testing.T) {
	c, _ := newTestCountdown(t, at(12, 27, 0))
	c.ReminderMinutes = 0
	c.OnReminder = func(string, int) { t.Fatal("reminder must not fire when disabled") }
	c.Tick()
}

func TestSetScheduleResetsTriggers(t *testing.T) {
	c, _ := newTestCountdown(t, at(12, 31, 0))
	c.AdhanEnabled = true

	count := 0
	c.OnAdhan = func(string, string) { count++ }

	c.Tick()
	s, err := NewSchedule(at(12, 31, 0), testTimings())
	require.NoError(t, err)
	c.SetSchedule(s)
	c.Tick()

	assert.Equal(t, 2, count, "a fresh schedule starts with a clean trigger log")
}

func TestFormattersOverrideFallbacks(t *testing.T) {
	c, _ := newTestCountdown(t, at(4, 0, 0))
	c.Format = Formatters{
		Upcoming: func(prayer string, h, m int) string {
			return prayer
		},
	}
	assert.Equal(t, PrayerFajr, c.Tick().Text)
}
