package engine

import (
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-salat/internal/config"
)

// Phase classifies one countdown snapshot.
type Phase int

const (
	// PhaseIdle means no schedule is installed yet.
	PhaseIdle Phase = iota
	// PhaseStale means the installed schedule no longer covers today; the
	// caller should refresh and keep showing the previous text meanwhile.
	PhaseStale
	// PhaseActive means a prayer started within the active window.
	PhaseActive
	// PhaseUpcoming means the snapshot points at the next prayer.
	PhaseUpcoming
)

// Snapshot is the result of a single tick.
type Snapshot struct {
	Phase   Phase
	Prayer  string
	Text    string
	Minutes int // minutes until the upcoming prayer; zero otherwise
}

// Formatters produces the banner strings. Nil fields fall back to the
// built-in French wording.
type Formatters struct {
	Upcoming        func(prayer string, hours, minutes int) string
	UpcomingSeconds func(prayer string, seconds int) string
	Active          func(prayer string) string
}

func (f Formatters) upcoming(prayer string, hours, minutes int) string {
	if f.Upcoming != nil {
		return f.Upcoming(prayer, hours, minutes)
	}
	return fmt.Sprintf(config.FallbackUpcoming, prayer, hours, minutes)
}

func (f Formatters) upcomingSeconds(prayer string, seconds int) string {
	if f.UpcomingSeconds != nil {
		return f.UpcomingSeconds(prayer, seconds)
	}
	return fmt.Sprintf(config.FallbackUpcomingSecs, prayer, seconds)
}

func (f Formatters) active(prayer string) string {
	if f.Active != nil {
		return f.Active(prayer)
	}
	return fmt.Sprintf(config.FallbackActive, prayer)
}

// Countdown turns a daily schedule into per-second banner snapshots and fires
// the reminder and adhan triggers exactly once per prayer per day.
//
// Tick and SetSchedule must be called from a single goroutine.
type Countdown struct {
	Clock  Clock
	Log    *TriggerLog
	Format Formatters

	// ReminderMinutes is the pre-notification lead time; zero disables
	// reminders entirely.
	ReminderMinutes int

	// AdhanEnabled gates the adhan trigger (the banner still updates).
	AdhanEnabled bool

	// OnReminder receives the prayer name and the minutes remaining.
	OnReminder func(prayer string, minutes int)

	// OnAdhan receives the prayer name and its "HH:MM" display time.
	OnAdhan func(prayer string, clock string)

	schedule *Schedule
	logger   *slog.Logger
}

// NewCountdown wires a countdown with a fresh trigger log.
func NewCountdown(clock Clock, logger *slog.Logger) *Countdown {
	return &Countdown{
		Clock:           clock,
		Log:             NewTriggerLog(),
		ReminderMinutes: config.DefaultReminderMinutes,
		logger:          logger.With(config.LogKeyComponent, config.CompEngine),
	}
}

// SetSchedule installs a new day's schedule and clears the trigger log, so a
// refetch never replays notifications already delivered for other days.
func (c *Countdown) SetSchedule(s *Schedule) {
	c.schedule = s
	c.Log.Reset()
	if s != nil {
		c.logger.Info(config.MsgScheduleSet, config.LogKeyDate, s.Date)
	}
}

// Schedule returns the currently installed schedule, possibly nil.
func (c *Countdown) Schedule() *Schedule {
	return c.schedule
}

// Tick evaluates the schedule against the current instant. It walks the five
// main prayers in order: the first one inside its active window wins, else the
// first strictly future one, else tomorrow's Fajr.
func (c *Countdown) Tick() Snapshot {
	if c.schedule == nil {
		return Snapshot{Phase: PhaseIdle}
	}

	now := c.Clock.Now()
	if !c.schedule.IsFor(now) {
		return Snapshot{Phase: PhaseStale}
	}

	nowMin := now.Hour()*60 + now.Minute()
	nowSec := now.Second()

	for _, prayer := range MainPrayers {
		at, ok := c.schedule.At(prayer)
		if !ok {
			continue
		}
		diff := at - nowMin

		if diff <= 0 && -diff <= config.ActiveWindowMinutes {
			c.fireAdhan(prayer)
			if diff < 0 {
				return Snapshot{Phase: PhaseActive, Prayer: prayer, Text: c.Format.active(prayer)}
			}
			// At the exact start minute the banner already points at the
			// next prayer; the scan continues.
		}

		if diff > 0 {
			c.fireReminder(prayer, diff)
			return c.upcoming(prayer, diff, nowSec)
		}
	}

	// Everything passed: count down to tomorrow's Fajr across midnight.
	fajr, _ := c.schedule.At(PrayerFajr)
	diff := 24*60 - nowMin + fajr
	return c.upcoming(PrayerFajr, diff, nowSec)
}

func (c *Countdown) upcoming(prayer string, diff, nowSec int) Snapshot {
	totalSecs := diff*60 - nowSec
	var text string
	if totalSecs < 60 {
		text = c.Format.upcomingSeconds(prayer, totalSecs)
	} else {
		text = c.Format.upcoming(prayer, diff/60, diff%60)
	}
	return Snapshot{Phase: PhaseUpcoming, Prayer: prayer, Text: text, Minutes: diff}
}

func (c *Countdown) fireReminder(prayer string, diff int) {
	if c.ReminderMinutes <= 0 || diff > c.ReminderMinutes {
		return
	}
	if c.Log.Fired(TriggerReminder, prayer) {
		return
	}
	c.Log.Mark(TriggerReminder, prayer)
	c.logger.Info(config.MsgReminderFired,
		config.LogKeyPrayer, prayer,
		config.LogKeyCount, diff)
	if c.OnReminder != nil {
		c.OnReminder(prayer, diff)
	}
}

func (c *Countdown) fireAdhan(prayer string) {
	if !c.AdhanEnabled || c.Log.Fired(TriggerAdhan, prayer) {
		return
	}
	c.Log.Mark(TriggerAdhan, prayer)
	clock := c.schedule.DisplayTime(prayer)
	c.logger.Info(config.MsgAdhanTriggered,
		config.LogKeyPrayer, prayer,
		config.LogKeyTime, clock)
	if c.OnAdhan != nil {
		c.OnAdhan(prayer, clock)
	}
}
