package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"communityevents/internal/domain"
)

const (
	dateLayout      = time.DateOnly
	clockTimeLayout = "15:04"
)

type calendarBridge struct {
	provider domain.CalendarProvider
	loc      *time.Location
	timeout  time.Duration
	logger   *slog.Logger
}

// NewCalendarBridge returns a CalendarBridge anchoring every event to loc and bounding
// each provider call by timeout (no bound when timeout <= 0).
func NewCalendarBridge(provider domain.CalendarProvider, loc *time.Location, timeout time.Duration, logger *slog.Logger) domain.CalendarBridge {
	if loc == nil {
		loc = time.UTC
	}
	return &calendarBridge{
		provider: provider,
		loc:      loc,
		timeout:  timeout,
		logger:   logger,
	}
}

func (b *calendarBridge) Location() *time.Location { return b.loc }

// BuildWindow combines a calendar date and two clock times into instants in loc.
func (b *calendarBridge) BuildWindow(date, startTime, endTime string, loc *time.Location) (domain.TimeWindow, error) {
	if loc == nil {
		loc = b.loc
	}
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return domain.TimeWindow{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", domain.ErrInvalidSchedule, date)
	}
	start, err := atClock(day, startTime)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	end, err := atClock(day, endTime)
	if err != nil {
		return domain.TimeWindow{}, err
	}
	if !end.After(start) {
		return domain.TimeWindow{}, fmt.Errorf("%w: end time %s must be after start time %s", domain.ErrInvalidSchedule, endTime, startTime)
	}
	return domain.TimeWindow{Start: start, End: end}, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	c, err := time.Parse(clockTimeLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q is not HH:MM", domain.ErrInvalidSchedule, clock)
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, day.Location())
	// time.Date shifts clock times that fall in a DST gap; those never occur on that day.
	if t.Hour() != c.Hour() || t.Minute() != c.Minute() {
		return time.Time{}, fmt.Errorf("%w: time %s does not exist on %s in %s",
			domain.ErrInvalidSchedule, clock, day.Format(dateLayout), day.Location())
	}
	return t, nil
}

// FindExisting reports whether the primary calendar already holds an event matching
// titleQuery inside w. The match is by text, so it can miss renamed copies and can
// hit unrelated events sharing the title. A blank query would match everything and is rejected.
func (b *calendarBridge) FindExisting(ctx context.Context, cred domain.Credential, titleQuery string, w domain.TimeWindow) (bool, error) {
	if cred == "" {
		return false, domain.ErrMissingCredential
	}
	if strings.TrimSpace(titleQuery) == "" {
		return false, fmt.Errorf("%w: duplicate lookup needs a title", domain.ErrInvalidInput)
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	items, err := b.provider.ListEvents(ctx, cred, domain.CalendarQuery{
		Text:    titleQuery,
		TimeMin: w.Start,
		TimeMax: w.End,
	})
	if err != nil {
		return false, asProviderError("list", err)
	}
	return len(items) > 0, nil
}

// CreateRemoteEvent inserts ev and returns the provider-assigned id. It never retries.
func (b *calendarBridge) CreateRemoteEvent(ctx context.Context, cred domain.Credential, ev *domain.ExternalCalendarEvent) (string, error) {
	if cred == "" {
		return "", domain.ErrMissingCredential
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	created, err := b.provider.InsertEvent(ctx, cred, ev)
	if err != nil {
		return "", asProviderError("insert", err)
	}
	if created == nil || created.ID == "" {
		return "", &domain.ProviderError{Op: "insert", Err: errors.New("provider returned no event id")}
	}
	return created.ID, nil
}

func (b *calendarBridge) Sync(ctx context.Context, cred domain.Credential, event *domain.Event) (*domain.SyncResult, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: event is required", domain.ErrInvalidInput)
	}
	if cred == "" {
		return nil, domain.ErrMissingCredential
	}
	if strings.TrimSpace(event.Title) == "" {
		return nil, fmt.Errorf("%w: event %s has no title", domain.ErrInvalidInput, event.ID)
	}
	window, err := b.BuildWindow(event.Date, event.StartTime, event.EndTime, b.loc)
	if err != nil {
		return nil, err
	}

	exists, err := b.FindExisting(ctx, cred, event.Title, window)
	if err != nil {
		return nil, err
	}
	if exists {
		b.logger.InfoContext(ctx, "calendar event already present", "event_id", event.ID)
		return &domain.SyncResult{Created: false, Reason: domain.SyncReasonDuplicate}, nil
	}

	id, err := b.CreateRemoteEvent(ctx, cred, &domain.ExternalCalendarEvent{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start:       window.Start,
		End:         window.End,
		TimeZone:    b.loc.String(),
	})
	if err != nil {
		return nil, err
	}
	b.logger.InfoContext(ctx, "calendar event created", "event_id", event.ID, "external_event_id", id)
	return &domain.SyncResult{Created: true, ExternalEventID: id}, nil
}

func (b *calendarBridge) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

// asProviderError makes sure every provider failure, including deadline expiry, is a *ProviderError.
func asProviderError(op string, err error) error {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return err
	}
	return &domain.ProviderError{Op: op, Err: err}
}
