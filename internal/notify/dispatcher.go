// Package notify delivers system notifications for prayer events. Delivery is
// best-effort: a refused or failed notification is logged and never surfaces
// as an application error.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tartampluch/go-salat/internal/config"
)

// ErrPermissionDenied wraps every refused or failed delivery. The dispatcher
// logs it and moves on; it never reaches the countdown.
var ErrPermissionDenied = errors.New("notification delivery refused")

// Sink delivers one notification to the platform. The tag identifies the
// event so platforms that support it can replace rather than stack.
type Sink interface {
	Send(title, body, tag string) error
}

// Messages produces localized notification texts. Nil fields fall back to the
// built-in French wording.
type Messages struct {
	PrayerTitle  func(prayer string) string
	PrayerBody   func(prayer, clock string) string
	ReminderBody func(prayer string, minutes int) string
}

func (m Messages) title(prayer string) string {
	if m.PrayerTitle != nil {
		return m.PrayerTitle(prayer)
	}
	return fmt.Sprintf(config.FallbackNotifTitle, prayer)
}

func (m Messages) body(prayer, clock string) string {
	if m.PrayerBody != nil {
		return m.PrayerBody(prayer, clock)
	}
	return fmt.Sprintf(config.FallbackNotifBody, clock, prayer)
}

func (m Messages) reminder(prayer string, minutes int) string {
	if m.ReminderBody != nil {
		return m.ReminderBody(prayer, minutes)
	}
	return fmt.Sprintf(config.FallbackReminderBody, prayer, minutes)
}

// Dispatcher routes prayer events to the notification sink.
type Dispatcher struct {
	Sink   Sink
	Msg    Messages
	logger *slog.Logger
}

func NewDispatcher(sink Sink, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		Sink:   sink,
		logger: logger.With(config.LogKeyComponent, config.CompNotify),
	}
}

// PrayerStarted announces that a prayer's time has arrived.
func (d *Dispatcher) PrayerStarted(prayer, clock string) {
	d.send(d.Msg.title(prayer), d.Msg.body(prayer, clock), tag(prayer))
}

// Reminder announces an upcoming prayer. It reuses the per-prayer tag so the
// start notification replaces it on platforms honoring tags.
func (d *Dispatcher) Reminder(prayer string, minutes int) {
	d.send(d.Msg.title(prayer), d.Msg.reminder(prayer, minutes), tag(prayer))
}

// Test sends a throwaway notification so the user can verify their desktop
// shows them at all.
func (d *Dispatcher) Test(title, body string) {
	d.send(title, body, "test")
}

func (d *Dispatcher) send(title, body, tag string) error {
	if err := d.Sink.Send(title, body, tag); err != nil {
		err = fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		d.logger.Warn(config.MsgNotifyFailed,
			config.LogKeyKey, tag,
			config.LogKeyError, err.Error())
		return err
	}
	return nil
}

func tag(prayer string) string {
	return "prayer-" + strings.ToLower(prayer)
}
