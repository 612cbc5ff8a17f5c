package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/engine"
	"github.com/tartampluch/go-salat/internal/location"
	"github.com/tartampluch/go-salat/internal/player"
)

// mainWidgets holds references to the main window's mutable elements.
type mainWidgets struct {
	banner      *widget.Label
	city        *widget.Label
	prayerTimes map[string]*widget.Label
	duaCard     *widget.Card
}

// ShowMainWindow opens (or focuses) the prayer overview window.
func (app *SalatApp) ShowMainWindow() {
	if app.mainWindow != nil {
		app.mainWindow.RequestFocus()
		return
	}

	slog.Info("Opening main window", config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.mainWindow = w

	mw := &mainWidgets{
		banner:      widget.NewLabel(config.FallbackSchedule),
		city:        widget.NewLabel(""),
		prayerTimes: make(map[string]*widget.Label, len(engine.MainPrayers)),
	}
	mw.banner.Alignment = fyne.TextAlignCenter
	mw.banner.TextStyle = fyne.TextStyle{Bold: true}
	mw.city.Alignment = fyne.TextAlignCenter

	// One card per main prayer, in chronological order.
	cards := make([]fyne.CanvasObject, 0, len(engine.MainPrayers))
	for _, prayer := range engine.MainPrayers {
		timeLabel := widget.NewLabel("--:--")
		timeLabel.Alignment = fyne.TextAlignCenter
		timeLabel.TextStyle = fyne.TextStyle{Bold: true}
		mw.prayerTimes[prayer] = timeLabel
		cards = append(cards, widget.NewCard(prayer, "", timeLabel))
	}

	duaLabel := widget.NewLabel(app.GetMsg(config.TKeyLblDuaTitle))
	duaLabel.Wrapping = fyne.TextWrapWord
	mw.duaCard = widget.NewCard("", "", duaLabel)
	mw.duaCard.Hide()

	playerCard := app.buildPlayerCard()

	btnCity := widget.NewButton(app.GetMsg(config.TKeyBtnChangeCity), func() {
		app.ShowCityWindow()
	})
	btnSettings := widget.NewButton(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	content := container.NewPadded(container.NewVBox(
		mw.banner,
		mw.city,
		container.NewGridWithColumns(config.LayoutColumnsGrid, cards...),
		mw.duaCard,
		playerCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCity, btnSettings),
	))

	w.SetContent(content)
	w.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	w.SetOnClosed(func() {
		app.mainWindow = nil
		app.main = nil
	})

	app.main = mw

	// Populate immediately from current state.
	app.engineMut.Lock()
	sched := app.Countdown.Schedule()
	app.engineMut.Unlock()
	if sched != nil {
		app.refreshMainWindow(sched, app.currentLocation())
	}
	if app.lastText != "" {
		mw.banner.SetText(app.lastText)
	}

	w.Show()
}

// buildPlayerCard assembles the adhan transport controls: replay restarts a
// finished or failed session from its remembered source, pause toggles the
// running one, and the slider adjusts volume live.
func (app *SalatApp) buildPlayerCard() fyne.CanvasObject {
	btnReplay := widget.NewButton(app.GetMsg(config.TKeyBtnReplay), func() {
		if app.Player.Status() != player.StatusIdle {
			_ = app.Player.Seek(0)
			return
		}
		app.engineMut.Lock()
		source := app.lastAdhanSource
		app.engineMut.Unlock()
		if source == "" {
			return
		}
		go app.playAdhan(source)
	})

	btnPause := widget.NewButton(app.GetMsg(config.TKeyBtnPlayPause), func() {
		switch app.Player.Status() {
		case player.StatusPlaying:
			_ = app.Player.Pause()
		case player.StatusPaused:
			_ = app.Player.Resume()
		}
	})

	volume := widget.NewSlider(0, 100)
	volume.Value = float64(app.Preferences.IntWithFallback(
		config.PrefAdhanVolume, config.DefaultAdhanVolume))
	volume.OnChanged = func(v float64) {
		app.Preferences.SetInt(config.PrefAdhanVolume, int(v))
		_ = app.Player.SetVolume(v / 100)
	}

	return widget.NewCard("", "", container.NewVBox(
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnPause, btnReplay),
		volume,
	))
}

// refreshMainWindow updates the per-prayer times and the city line. Safe to
// call when the window is closed.
func (app *SalatApp) refreshMainWindow(sched *engine.Schedule, loc location.Location) {
	mw := app.main
	if mw == nil {
		return
	}
	for _, prayer := range engine.MainPrayers {
		if lbl, ok := mw.prayerTimes[prayer]; ok {
			lbl.SetText(sched.DisplayTime(prayer))
		}
	}
	mw.city.SetText(loc.Name)
}

// updateBanner mirrors the countdown text in the main window.
func (app *SalatApp) updateBanner(snap engine.Snapshot) {
	if app.main == nil {
		return
	}
	app.main.banner.SetText(snap.Text)
}

// updateDuaPanel shows the invocation card during the post-adhan window.
func (app *SalatApp) updateDuaPanel() {
	mw := app.main
	if mw == nil {
		return
	}
	if app.duaActive() {
		if !mw.duaCard.Visible() {
			mw.duaCard.Show()
		}
	} else if mw.duaCard.Visible() {
		mw.duaCard.Hide()
	}
}
