// Package ui hosts the Fyne application: tray menu, main window, settings,
// the per-second countdown loop and the adhan playback flow.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/go-co-op/gocron/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/engine"
	"github.com/tartampluch/go-salat/internal/location"
	"github.com/tartampluch/go-salat/internal/notify"
	"github.com/tartampluch/go-salat/internal/player"
	"github.com/tartampluch/go-salat/internal/provider"
	"github.com/tartampluch/go-salat/internal/schedule"
	"github.com/tartampluch/go-salat/internal/server"
)

// SalatApp encapsulates the UI state, preferences, and background logic.
type SalatApp struct {
	App         fyne.App
	Window      fyne.Window // settings window, nil when closed
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Server     *server.ScheduleServer
	Cache      *schedule.Cache
	Resolver   *location.Resolver
	Dispatcher *notify.Dispatcher
	Player     *player.Player
	Adhan      *provider.AdhanSource
	Clock      engine.Clock // injected clock for testability

	Countdown *engine.Countdown

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem   *fyne.MenuItem
	TrayShowItem     *fyne.MenuItem
	TrayRefreshItem  *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string

	scheduler gocron.Scheduler

	// engineMut serializes countdown access between the tick job and the
	// refresh path.
	engineMut   sync.Mutex
	refreshing  bool
	lastAttempt time.Time
	lastText    string
	duaUntil    time.Time

	// lastAdhanSource feeds the main window's replay control.
	lastAdhanSource string

	mainWindow fyne.Window
	cityWindow fyne.Window
	main       *mainWidgets
}

// fyneSink delivers notifications through the Fyne driver. Fyne has no tag
// support, so tags are accepted and dropped.
type fyneSink struct {
	app fyne.App
}

func (s fyneSink) Send(title, body, _ string) error {
	s.app.SendNotification(fyne.NewNotification(title, body))
	return nil
}

// NewSalatApp constructs the application and wires dependencies.
func NewSalatApp(a fyne.App, ctx context.Context, srv *server.ScheduleServer, cache *schedule.Cache, resolver *location.Resolver, adhan *provider.AdhanSource, snd *player.Player) *SalatApp {
	app := &SalatApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Cache:              cache,
		Resolver:           resolver,
		Adhan:              adhan,
		Player:             snd,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
	}
	app.Dispatcher = notify.NewDispatcher(fyneSink{app: a}, slog.Default())
	return app
}

// Run launches the application services and the main UI loop.
func (app *SalatApp) Run() {
	app.SetupI18n()
	app.setupCountdown()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayMissing, config.LogKeyComponent, config.CompUI)
	}

	if err := app.startScheduler(); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyError, err,
			config.LogKeyComponent, config.CompUI)
	}

	go app.refresh(false)
	app.App.Run()
}

// setupCountdown wires the engine with localized formats and the current
// notification preferences.
func (app *SalatApp) setupCountdown() {
	app.Countdown = engine.NewCountdown(app.Clock, slog.Default())
	app.Countdown.Format = engine.Formatters{
		Upcoming: func(prayer string, hours, minutes int) string {
			if msg := app.GetMsgData(config.TKeyCountdownNext, map[string]interface{}{
				"Prayer": prayer, "Hours": hours, "Minutes": minutes,
			}); msg != "" {
				return msg
			}
			return fmt.Sprintf(config.FallbackUpcoming, prayer, hours, minutes)
		},
		UpcomingSeconds: func(prayer string, seconds int) string {
			if msg := app.GetMsgData(config.TKeyCountdownSecs, map[string]interface{}{
				"Prayer": prayer, "Seconds": seconds,
			}); msg != "" {
				return msg
			}
			return fmt.Sprintf(config.FallbackUpcomingSecs, prayer, seconds)
		},
		Active: func(prayer string) string {
			if msg := app.GetMsgData(config.TKeyCountdownNow, map[string]interface{}{
				"Prayer": prayer,
			}); msg != "" {
				return msg
			}
			return fmt.Sprintf(config.FallbackActive, prayer)
		},
	}
	app.Countdown.OnReminder = app.Dispatcher.Reminder
	app.Countdown.OnAdhan = app.onAdhan
	app.applyNotificationPrefs()

	app.Dispatcher.Msg = notify.Messages{
		PrayerTitle: func(prayer string) string {
			if msg := app.GetMsgData(config.TKeyNotifTitle, map[string]interface{}{"Prayer": prayer}); msg != "" {
				return msg
			}
			return fmt.Sprintf(config.FallbackNotifTitle, prayer)
		},
		PrayerBody: func(prayer, clock string) string {
			if msg := app.GetMsgData(config.TKeyNotifBody, map[string]interface{}{
				"Prayer": prayer, "Time": clock,
			}); msg != "" {
				return msg
			}
			return fmt.Sprintf(config.FallbackNotifBody, clock, prayer)
		},
	}
}

// applyNotificationPrefs pushes the reminder/adhan preferences into the
// engine. Called at startup and after every settings save.
func (app *SalatApp) applyNotificationPrefs() {
	if app.Preferences.BoolWithFallback(config.PrefReminders, true) {
		app.Countdown.ReminderMinutes = app.Preferences.IntWithFallback(
			config.PrefReminderMin, config.DefaultReminderMinutes)
	} else {
		app.Countdown.ReminderMinutes = 0
	}
	app.Countdown.AdhanEnabled = app.Preferences.BoolWithFallback(config.PrefAdhanEnabled, true)
}

// setupTrayMenu constructs the system tray menu.
func (app *SalatApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, func() {
		app.ShowMainWindow()
	})

	app.TrayShowItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuShow), func() {
		app.ShowMainWindow()
	})

	app.TrayRefreshItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRefresh), func() {
		go app.refresh(true)
	})

	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayShowItem,
		app.TrayRefreshItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *SalatApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayShowItem.Label = app.GetMsg(config.TKeyMenuShow)
	app.TrayRefreshItem.Label = app.GetMsg(config.TKeyMenuRefresh)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.Menu.Refresh()
}

// startScheduler runs the per-second countdown tick and a daily refresh
// shortly after midnight.
func (app *SalatApp) startScheduler() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	// Singleton mode keeps a slow tick (stale detection, UI refresh) from
	// piling up behind itself.
	_, err = s.NewJob(
		gocron.DurationJob(config.TickInterval),
		gocron.NewTask(app.tick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 1, 0))),
		gocron.NewTask(func() { app.refresh(false) }),
	)
	if err != nil {
		return err
	}

	s.Start()
	app.scheduler = s

	slog.Info(config.MsgSchedulerStart, config.LogKeyComponent, config.CompUI)

	go func() {
		<-app.Ctx.Done()
		slog.Info(config.MsgSchedulerStop, config.LogKeyComponent, config.CompUI)
		_ = s.Shutdown()
		app.App.Quit()
	}()
	return nil
}

// tick advances the countdown one step and reflects the result in the UI.
func (app *SalatApp) tick() {
	app.engineMut.Lock()
	snap := app.Countdown.Tick()
	app.engineMut.Unlock()

	switch snap.Phase {
	case engine.PhaseIdle:
		return
	case engine.PhaseStale:
		// Keep showing the previous text while a refetch runs.
		go app.refresh(false)
		return
	}

	if snap.Text != app.lastText {
		app.lastText = snap.Text
		app.updateTrayStatus(snap.Text)
		app.updateBanner(snap)
	}
	app.updateDuaPanel()
}

// updateTrayStatus mirrors the countdown text in the tray's top item.
func (app *SalatApp) updateTrayStatus(text string) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}
	app.TrayStatusItem.Label = text
	app.Menu.Refresh()
}

// refresh resolves the location, fetches today's schedule, installs it into
// the engine and republishes the feed. Concurrent calls collapse into one,
// and failed attempts are spaced out.
func (app *SalatApp) refresh(manual bool) {
	app.engineMut.Lock()
	if app.refreshing || (!manual && app.Clock.Now().Sub(app.lastAttempt) < config.RefreshRetryDelay) {
		app.engineMut.Unlock()
		return
	}
	app.refreshing = true
	app.lastAttempt = app.Clock.Now()
	app.engineMut.Unlock()

	defer func() {
		app.engineMut.Lock()
		app.refreshing = false
		app.engineMut.Unlock()
	}()

	slog.Info(config.MsgRefreshReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	loc := app.currentLocation()
	method := app.Preferences.IntWithFallback(config.PrefMethod, config.DefaultMethod)
	school := app.Preferences.IntWithFallback(config.PrefSchool, config.SchoolUnset)

	sched, err := app.Cache.Today(app.Ctx, loc.Latitude, loc.Longitude, method, school)
	if err != nil {
		slog.Error(config.MsgRefreshFailed,
			config.LogKeyError, err,
			config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(
				config.TitleRefreshError, app.GetMsg(config.TKeyNotifError)))
		}
		return
	}

	app.engineMut.Lock()
	app.Countdown.SetSchedule(sched)
	app.engineMut.Unlock()

	if feed, err := server.Render(sched, loc.Name, app.Clock.Now()); err != nil {
		slog.Error(config.ErrICalEncode,
			config.LogKeyError, err,
			config.LogKeyComponent, config.CompUI)
	} else {
		app.Server.Update(feed)
	}

	app.refreshMainWindow(sched, loc)

	slog.Info(config.MsgRefreshOK,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyDate, sched.Date,
		config.LogKeyCity, loc.Name)

	if manual {
		app.App.SendNotification(fyne.NewNotification(
			config.AppName, app.GetMsg(config.TKeyNotifRefreshed)))
	}
}

// currentLocation returns the stored location, resolving and persisting one
// on first run.
func (app *SalatApp) currentLocation() location.Location {
	name := app.Preferences.String(config.PrefCityName)
	if name != "" {
		return location.Location{
			Latitude:  app.Preferences.Float(config.PrefLatitude),
			Longitude: app.Preferences.Float(config.PrefLongitude),
			Name:      name,
		}
	}

	loc := app.Resolver.Current(app.Ctx)
	app.SetLocation(loc)
	return loc
}

// SetLocation persists the chosen location and makes it current.
func (app *SalatApp) SetLocation(loc location.Location) {
	app.Preferences.SetFloat(config.PrefLatitude, loc.Latitude)
	app.Preferences.SetFloat(config.PrefLongitude, loc.Longitude)
	app.Preferences.SetString(config.PrefCityName, loc.Name)

	slog.Info(config.MsgLocationSet,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCity, loc.Name,
		config.LogKeyLatitude, loc.Latitude,
		config.LogKeyLongitude, loc.Longitude)
}

// onAdhan handles a prayer start: system notification, then audio playback,
// then the post-adhan dua panel.
func (app *SalatApp) onAdhan(prayer, clock string) {
	app.Dispatcher.PrayerStarted(prayer, clock)

	go func() {
		app.loadAdhanCredentials()
		app.playAdhan(app.Adhan.Resolve(app.Ctx, prayer))
	}()
}

// playAdhan runs one playback session, blocking until it ends, and opens the
// dua panel on natural completion. The source is remembered so the main
// window's replay control can retry a failed or finished session.
func (app *SalatApp) playAdhan(source string) {
	app.engineMut.Lock()
	app.lastAdhanSource = source
	app.engineMut.Unlock()

	pct := app.Preferences.IntWithFallback(config.PrefAdhanVolume, config.DefaultAdhanVolume)
	_ = app.Player.SetVolume(float64(pct) / 100)

	if err := app.Player.Play(app.Ctx, source); err != nil {
		slog.Error(config.MsgPlaybackFailed,
			config.LogKeyError, err,
			config.LogKeySource, source,
			config.LogKeyComponent, config.CompUI)
		return
	}

	select {
	case <-app.Player.Finished():
	case <-app.Ctx.Done():
		return
	}

	app.engineMut.Lock()
	app.duaUntil = app.Clock.Now().Add(config.DuaWindow)
	app.engineMut.Unlock()
}

// loadAdhanCredentials pushes the configured premium-audio settings into the
// source, reading the secret from the system keyring.
func (app *SalatApp) loadAdhanCredentials() {
	app.Adhan.CustomFile = app.Preferences.String(config.PrefAdhanFile)
	app.Adhan.TokenURL = app.Preferences.String(config.PrefAudioTokenURL)
	app.Adhan.MediaURL = app.Preferences.String(config.PrefAudioMediaURL)
	app.Adhan.ClientID = app.Preferences.String(config.PrefAudioClientID)

	if app.Adhan.ClientID != "" {
		if secret, err := keyring.Get(config.KeyringService, app.Adhan.ClientID); err == nil {
			app.Adhan.ClientSecret = secret
		} else {
			slog.Debug(config.MsgSecretFail,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
}

// duaActive reports whether the post-adhan invocation window is open.
func (app *SalatApp) duaActive() bool {
	app.engineMut.Lock()
	defer app.engineMut.Unlock()
	return app.Clock.Now().Before(app.duaUntil)
}
