package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-salat/internal/config"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	langSelect     *widget.Select
	methodSelect   *widget.Select
	entryPort      *NumericalEntry
	checkReminder  *widget.Check
	entryRemValue  *NumericalEntry
	checkAdhan     *widget.Check
	pathEntry      *widget.Entry
	entryVolume    *NumericalEntry
	tokenURLEntry  *widget.Entry
	mediaURLEntry  *widget.Entry
	clientIDEntry  *widget.Entry
	clientSecEntry *widget.Entry
}

// ShowSettingsWindow displays the configuration dialog.
func (app *SalatApp) ShowSettingsWindow() {
	if app.Window != nil {
		slog.Debug("Settings window already open, requesting focus", config.LogKeyComponent, config.CompUISet)
		app.Window.RequestFocus()
		return
	}

	slog.Info("Opening settings window", config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.Window = w

	sw := &settingsWidgets{}

	var refreshLayout func()
	onLayoutChange := func() {
		if refreshLayout != nil {
			refreshLayout()
		}
	}

	// --- 1. General (language, calculation method, feed port) ---
	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	methodNames := make([]string, len(config.CalculationMethods))
	for i, m := range config.CalculationMethods {
		methodNames[i] = m.Name
	}
	sw.methodSelect = widget.NewSelect(methodNames, nil)
	currentMethod := app.Preferences.IntWithFallback(config.PrefMethod, config.DefaultMethod)
	for _, m := range config.CalculationMethods {
		if m.ID == currentMethod {
			sw.methodSelect.SetSelected(m.Name)
		}
	}

	sw.entryPort = NewNumericalEntry()
	sw.entryPort.SetText(app.Preferences.StringWithFallback(config.PrefFeedPort, config.DefaultFeedPort))
	sw.entryPort.Validator = func(s string) error {
		if s == "" {
			return errors.New(app.GetMsg(config.TKeyErrPortReq))
		}
		port, err := strconv.Atoi(s)
		if err != nil {
			return errors.New(app.GetMsg(config.TKeyErrPortNum))
		}
		if port < config.MinPort || port > config.MaxPort {
			return errors.New(app.GetMsg(config.TKeyErrPortRange))
		}
		return nil
	}

	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)

	itemMethod := widget.NewFormItem(app.GetMsg(config.TKeyLblMethod), sw.methodSelect)
	itemMethod.HintText = app.GetMsg(config.TKeyHelpMethod)

	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyLblFeedPort), sw.entryPort)
	itemPort.HintText = app.GetMsg(config.TKeyHelpFeedPort)

	generalCard := widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "",
		widget.NewForm(itemLang, itemMethod, itemPort))

	// --- 2. Reminders ---
	sw.checkReminder = widget.NewCheck(app.GetMsg(config.TKeyLblReminders), nil)
	sw.checkReminder.Checked = app.Preferences.BoolWithFallback(config.PrefReminders, true)

	sw.entryRemValue = NewNumericalEntry()
	sw.entryRemValue.SetText(strconv.Itoa(
		app.Preferences.IntWithFallback(config.PrefReminderMin, config.DefaultReminderMinutes)))

	remRow := container.NewBorder(nil, nil,
		widget.NewLabel(app.GetMsg(config.TKeyLblReminderMin)),
		widget.NewLabel(app.GetMsg(config.TKeyLblMinutes)),
		sw.entryRemValue)

	sw.checkReminder.OnChanged = func(b bool) {
		if b {
			remRow.Show()
		} else {
			remRow.Hide()
		}
		onLayoutChange()
	}
	if sw.checkReminder.Checked {
		remRow.Show()
	} else {
		remRow.Hide()
	}

	reminderCard := widget.NewCard("", "", container.NewVBox(sw.checkReminder, remRow))

	// --- 3. Adhan ---
	adhanCard := app.buildAdhanCard(w, sw, onLayoutChange)

	// --- Actions ---
	btnTest := widget.NewButton(app.GetMsg(config.TKeyBtnTestNotif), func() {
		app.Dispatcher.Test(
			app.GetMsg(config.TKeyNotifTestTitle),
			app.GetMsg(config.TKeyNotifTestBody))
	})

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), func() {
		if err := sw.entryPort.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw, w)
	})
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footerText := fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version)
	footerLabel := widget.NewLabel(footerText)
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	paddedContent := container.NewPadded(container.NewVBox(
		generalCard,
		reminderCard,
		adhanCard,
		btnTest,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footerLabel,
	))

	refreshLayout = func() {
		paddedContent.Refresh()
		minSize := paddedContent.MinSize()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, minSize.Height))
	}

	w.SetContent(paddedContent)
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.Window = nil })

	refreshLayout()
	w.Show()
}

// buildAdhanCard constructs the adhan playback section: enable switch, custom
// recording, volume and the optional authenticated audio API.
func (app *SalatApp) buildAdhanCard(w fyne.Window, sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	sw.checkAdhan = widget.NewCheck(app.GetMsg(config.TKeyLblEnableAdhan), nil)
	sw.checkAdhan.Checked = app.Preferences.BoolWithFallback(config.PrefAdhanEnabled, true)

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(app.Preferences.String(config.PrefAdhanFile))

	browseBtn := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{".mp3", ".ogg", ".wav"}))
		d.Show()
	})

	sw.entryVolume = NewNumericalEntry()
	sw.entryVolume.SetText(strconv.Itoa(
		app.Preferences.IntWithFallback(config.PrefAdhanVolume, config.DefaultAdhanVolume)))

	// Premium audio API (optional). The secret never touches preferences:
	// it is stored in the system keyring under the client ID.
	sw.tokenURLEntry = widget.NewEntry()
	sw.tokenURLEntry.SetText(app.Preferences.String(config.PrefAudioTokenURL))
	sw.mediaURLEntry = widget.NewEntry()
	sw.mediaURLEntry.SetText(app.Preferences.String(config.PrefAudioMediaURL))
	sw.clientIDEntry = widget.NewEntry()
	sw.clientIDEntry.SetText(app.Preferences.String(config.PrefAudioClientID))
	sw.clientSecEntry = widget.NewPasswordEntry()
	if id := sw.clientIDEntry.Text; id != "" {
		if secret, err := keyring.Get(config.KeyringService, id); err == nil {
			sw.clientSecEntry.SetText(secret)
		}
	}

	itemFile := widget.NewFormItem(app.GetMsg(config.TKeyLblAdhanFile),
		container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry))
	itemFile.HintText = app.GetMsg(config.TKeyHelpAdhanFile)

	itemVolume := widget.NewFormItem(app.GetMsg(config.TKeyLblVolume), sw.entryVolume)

	itemAPI := widget.NewFormItem(app.GetMsg(config.TKeyLblAudioAPI), sw.tokenURLEntry)
	itemAPI.HintText = app.GetMsg(config.TKeyHelpAudioAPI)
	itemMedia := widget.NewFormItem("", sw.mediaURLEntry)
	itemID := widget.NewFormItem(app.GetMsg(config.TKeyLblClientID), sw.clientIDEntry)
	itemSecret := widget.NewFormItem(app.GetMsg(config.TKeyLblClientSec), sw.clientSecEntry)

	form := widget.NewForm(itemFile, itemVolume, itemAPI, itemMedia, itemID, itemSecret)

	sw.checkAdhan.OnChanged = func(b bool) {
		if b {
			form.Show()
		} else {
			form.Hide()
		}
		onLayoutChange()
	}
	if sw.checkAdhan.Checked {
		form.Show()
	} else {
		form.Hide()
	}

	return widget.NewCard(app.GetMsg(config.TKeyLblAdhan), "", container.NewVBox(sw.checkAdhan, form))
}

// saveSettings persists the data and triggers a refresh with the new values.
func (app *SalatApp) saveSettings(sw *settingsWidgets, w fyne.Window) {
	slog.Info("Saving preferences", config.LogKeyComponent, config.CompUISet)

	app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)

	for _, m := range config.CalculationMethods {
		if m.Name == sw.methodSelect.Selected {
			app.Preferences.SetInt(config.PrefMethod, m.ID)
		}
	}

	if sw.entryPort.Text != "" {
		app.Preferences.SetString(config.PrefFeedPort, sw.entryPort.Text)
	}

	// An empty reminder value disables the feature, checkbox notwithstanding.
	if sw.entryRemValue.Text == "" {
		app.Preferences.SetBool(config.PrefReminders, false)
	} else {
		app.Preferences.SetBool(config.PrefReminders, sw.checkReminder.Checked)
		if v, err := strconv.Atoi(sw.entryRemValue.Text); err == nil {
			app.Preferences.SetInt(config.PrefReminderMin, v)
		}
	}

	app.Preferences.SetBool(config.PrefAdhanEnabled, sw.checkAdhan.Checked)
	app.Preferences.SetString(config.PrefAdhanFile, sw.pathEntry.Text)
	if v, err := strconv.Atoi(sw.entryVolume.Text); err == nil && v >= 0 && v <= 100 {
		app.Preferences.SetInt(config.PrefAdhanVolume, v)
	}

	app.Preferences.SetString(config.PrefAudioTokenURL, sw.tokenURLEntry.Text)
	app.Preferences.SetString(config.PrefAudioMediaURL, sw.mediaURLEntry.Text)
	app.Preferences.SetString(config.PrefAudioClientID, sw.clientIDEntry.Text)

	if sw.clientIDEntry.Text != "" && sw.clientSecEntry.Text != "" {
		if err := keyring.Set(config.KeyringService, sw.clientIDEntry.Text, sw.clientSecEntry.Text); err != nil {
			slog.Error("Failed to save credentials to keyring",
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUISet)
		}
	}

	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	app.applyNotificationPrefs()
	go app.refresh(true)

	w.Close()
}
