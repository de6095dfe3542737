// Package googlecalendar implements domain.CalendarProvider on the Google Calendar v3 API.
package googlecalendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"communityevents/internal/domain"
)

// PrimaryCalendarID addresses the authenticated user's default calendar.
const PrimaryCalendarID = "primary"

type googleCalendarProvider struct {
	client   *http.Client
	endpoint string
}

// NewProvider returns a CalendarProvider that acts with the user's OAuth access token.
// client is the base transport (nil means http.DefaultClient); endpoint overrides the
// API base URL and is empty in production.
func NewProvider(client *http.Client, endpoint string) domain.CalendarProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &googleCalendarProvider{client: client, endpoint: endpoint}
}

func (p *googleCalendarProvider) service(ctx context.Context, cred domain.Credential) (*calendar.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: string(cred), TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, p.client), ts)
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return svc, nil
}

func (p *googleCalendarProvider) ListEvents(ctx context.Context, cred domain.Credential, q domain.CalendarQuery) ([]*domain.ExternalCalendarEvent, error) {
	svc, err := p.service(ctx, cred)
	if err != nil {
		return nil, &domain.ProviderError{Op: "list", Err: err}
	}
	call := svc.Events.List(PrimaryCalendarID).
		Q(q.Text).
		SingleEvents(true).
		Context(ctx)
	if !q.TimeMin.IsZero() {
		call = call.TimeMin(q.TimeMin.Format(time.RFC3339))
	}
	if !q.TimeMax.IsZero() {
		call = call.TimeMax(q.TimeMax.Format(time.RFC3339))
	}
	res, err := call.Do()
	if err != nil {
		return nil, providerError("list", err)
	}

	out := make([]*domain.ExternalCalendarEvent, 0, len(res.Items))
	for _, item := range res.Items {
		out = append(out, fromAPI(item))
	}
	return out, nil
}

func (p *googleCalendarProvider) InsertEvent(ctx context.Context, cred domain.Credential, ev *domain.ExternalCalendarEvent) (*domain.ExternalCalendarEvent, error) {
	svc, err := p.service(ctx, cred)
	if err != nil {
		return nil, &domain.ProviderError{Op: "insert", Err: err}
	}
	created, err := svc.Events.Insert(PrimaryCalendarID, toAPI(ev)).Context(ctx).Do()
	if err != nil {
		return nil, providerError("insert", err)
	}
	return fromAPI(created), nil
}

func toAPI(ev *domain.ExternalCalendarEvent) *calendar.Event {
	return &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
	}
}

func fromAPI(item *calendar.Event) *domain.ExternalCalendarEvent {
	out := &domain.ExternalCalendarEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
	}
	if item.Start != nil {
		out.TimeZone = item.Start.TimeZone
		if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			out.Start = t
		}
	}
	if item.End != nil {
		if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			out.End = t
		}
	}
	return out
}

func providerError(op string, err error) error {
	perr := &domain.ProviderError{Op: op, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		perr.StatusCode = gerr.Code
	}
	return perr
}
