package domain

import (
	"context"
	"time"
)

// Credential is a per-request access token for the user's external calendar.
type Credential string

// TimeWindow is an absolute [Start, End] interval.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (w TimeWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

// ExternalCalendarEvent is an event as represented by the external provider.
type ExternalCalendarEvent struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// CalendarQuery filters events on the provider's primary calendar.
type CalendarQuery struct {
	Text    string
	TimeMin time.Time
	TimeMax time.Time
}

// CalendarProvider is the port to the external calendar service.
// Implementations return *ProviderError for every transport, auth or quota failure.
type CalendarProvider interface {
	ListEvents(ctx context.Context, cred Credential, q CalendarQuery) ([]*ExternalCalendarEvent, error)
	InsertEvent(ctx context.Context, cred Credential, ev *ExternalCalendarEvent) (*ExternalCalendarEvent, error)
}

// SyncReasonDuplicate is reported when a matching event already exists on the calendar.
const SyncReasonDuplicate = "duplicate"

// SyncResult reports whether a remote event was created.
// swagger:model SyncResult
type SyncResult struct {
	Created         bool   `json:"created"`
	ExternalEventID string `json:"external_event_id,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// CalendarBridge mirrors catalog events into the external calendar.
type CalendarBridge interface {
	BuildWindow(date, startTime, endTime string, loc *time.Location) (TimeWindow, error)
	FindExisting(ctx context.Context, cred Credential, titleQuery string, w TimeWindow) (bool, error)
	CreateRemoteEvent(ctx context.Context, cred Credential, ev *ExternalCalendarEvent) (string, error)
	Sync(ctx context.Context, cred Credential, event *Event) (*SyncResult, error)
	// Location is the fixed timezone every event is anchored to.
	Location() *time.Location
}
