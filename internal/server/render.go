package server

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/engine"
)

// Render builds the iCalendar feed for one day's schedule: a timed VEVENT per
// prayer (plus Sunrise), stamped at 'now'. The city name fills LOCATION.
func Render(s *engine.Schedule, city string, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint so subscribed clients re-pull daily schedules.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	day, err := time.ParseInLocation(config.DateKeyLayout, s.Date, now.Location())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	names := append(append([]string{}, engine.MainPrayers...), engine.PrayerSunrise)
	for _, name := range names {
		minutes, ok := s.At(name)
		if !ok {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID,
			fmt.Sprintf(config.FormatUID, s.Date, strings.ToLower(name), config.ICalDomain))
		event.Props.SetText(config.PropSummary, name)
		if city != "" {
			event.Props.SetText(config.PropLocation, city)
		}

		dtStamp := ical.NewProp(config.PropDTStamp)
		dtStamp.SetDateTime(now.UTC())
		event.Props.Set(dtStamp)

		start := day.Add(time.Duration(minutes) * time.Minute)
		dtStart := ical.NewProp(config.PropDTStart)
		dtStart.SetDateTime(start)
		event.Props.Set(dtStart)

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}
