// Package ics renders a user's registered events as an iCalendar feed.
package ics

import (
	"context"
	"log/slog"
	"time"

	ical "github.com/arran4/golang-ical"

	"communityevents/internal/domain"
)

const (
	productID = "-//communityevents//registrations//EN"
	uidDomain = "communityevents"
)

// WindowBuilder resolves an event's date and clock times into instants.
// domain.CalendarBridge satisfies it.
type WindowBuilder interface {
	BuildWindow(date, startTime, endTime string, loc *time.Location) (domain.TimeWindow, error)
	Location() *time.Location
}

// Exporter turns catalog events into a VCALENDAR document.
type Exporter struct {
	windows WindowBuilder
	logger  *slog.Logger
}

func NewExporter(windows WindowBuilder, logger *slog.Logger) *Exporter {
	return &Exporter{windows: windows, logger: logger}
}

// Render serializes events. Events whose schedule cannot be resolved are left out.
func (x *Exporter) Render(ctx context.Context, events []*domain.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("My registered events")
	cal.SetXWRTimezone(x.windows.Location().String())

	for _, ev := range events {
		w, err := x.windows.BuildWindow(ev.Date, ev.StartTime, ev.EndTime, x.windows.Location())
		if err != nil {
			x.logger.WarnContext(ctx, "skipping event with invalid schedule in ics export", "event_id", ev.ID, "err", err)
			continue
		}
		vev := cal.AddEvent(ev.ID + "@" + uidDomain)
		vev.SetDtStampTime(now)
		vev.SetStartAt(w.Start)
		vev.SetEndAt(w.End)
		vev.SetSummary(ev.Title)
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vev.SetLocation(ev.Location)
		}
	}
	return cal.Serialize()
}
