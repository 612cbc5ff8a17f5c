package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/location"
	"github.com/tartampluch/go-salat/internal/provider"
)

// ShowCityWindow opens the city picker: debounced search, geolocation and
// nearby suggestions.
func (app *SalatApp) ShowCityWindow() {
	if app.cityWindow != nil {
		app.cityWindow.RequestFocus()
		return
	}

	slog.Info("Opening city window", config.LogKeyComponent, config.CompUICity)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinCity))
	app.cityWindow = w

	var results []provider.City

	statusLabel := widget.NewLabel(app.GetMsg(config.TKeyLblTypeMore))
	statusLabel.TextStyle = fyne.TextStyle{Italic: true}

	resultList := widget.NewList(
		func() int { return len(results) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(results) {
				obj.(*widget.Label).SetText(results[id].Name)
			}
		},
	)

	pick := func(city provider.City) {
		app.SetLocation(location.Location{
			Latitude:  city.Lat,
			Longitude: city.Lon,
			Name:      city.Name,
		})
		go app.refresh(true)
		w.Close()
	}

	resultList.OnSelected = func(id widget.ListItemID) {
		if id < len(results) {
			pick(results[id])
		}
	}

	showResults := func(cities []provider.City, err error) {
		switch {
		case err != nil:
			results = nil
			statusLabel.SetText(app.GetMsg(config.TKeyLblUnavailable))
		case len(cities) == 0:
			results = nil
			statusLabel.SetText(app.GetMsg(config.TKeyLblNoResults))
		default:
			results = cities
			statusLabel.SetText("")
		}
		resultList.UnselectAll()
		resultList.Refresh()
	}

	search := location.NewDebouncer(config.SearchDebounce, func(query string) {
		cities, err := app.Resolver.Search(app.Ctx, query)
		showResults(cities, err)
	})

	searchEntry := widget.NewEntry()
	searchEntry.PlaceHolder = app.GetMsg(config.TKeyLblSearchCity)
	searchEntry.OnChanged = search.Trigger

	btnLocate := widget.NewButton(app.GetMsg(config.TKeyBtnLocate), func() {
		go func() {
			loc := app.Resolver.Current(app.Ctx)
			pick(provider.City{Name: loc.Name, Lat: loc.Latitude, Lon: loc.Longitude})
		}()
	})

	btnNearby := widget.NewButton(app.GetMsg(config.TKeyBtnNearby), func() {
		go func() {
			showResults(app.Resolver.Nearby(app.Ctx), nil)
		}()
	})

	content := container.NewBorder(
		container.NewVBox(
			searchEntry,
			container.NewGridWithColumns(config.LayoutColumnsDouble, btnLocate, btnNearby),
			statusLabel,
		),
		nil, nil, nil,
		resultList,
	)

	w.SetContent(container.NewPadded(content))
	w.Resize(fyne.NewSize(config.CityWindowWidth, config.CityWindowHeight))
	w.SetOnClosed(func() {
		search.Stop()
		app.cityWindow = nil
	})
	w.Show()
}
