package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"communityevents/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeCalendarProvider records calls and returns canned responses.
type fakeCalendarProvider struct {
	mu          sync.Mutex
	existing    []*domain.ExternalCalendarEvent
	listErr     error
	insertErr   error
	insertID    string
	block       bool
	listCalls   int
	insertCalls int
	lastQuery   domain.CalendarQuery
	lastInsert  *domain.ExternalCalendarEvent
	lastCred    domain.Credential
}

func (f *fakeCalendarProvider) ListEvents(ctx context.Context, cred domain.Credential, q domain.CalendarQuery) ([]*domain.ExternalCalendarEvent, error) {
	f.mu.Lock()
	f.listCalls++
	f.lastQuery = q
	f.lastCred = cred
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.existing, nil
}

func (f *fakeCalendarProvider) InsertEvent(ctx context.Context, cred domain.Credential, ev *domain.ExternalCalendarEvent) (*domain.ExternalCalendarEvent, error) {
	f.mu.Lock()
	f.insertCalls++
	f.lastInsert = ev
	f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	out := *ev
	out.ID = f.insertID
	return &out, nil
}

// fakeRegistrationStore lets tests force each store outcome.
type fakeRegistrationStore struct {
	exists    bool
	existsErr error
	createErr error
	created   int
	regs      []*domain.Registration
	listErr   error
}

func (f *fakeRegistrationStore) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeRegistrationStore) Create(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &domain.Registration{ID: "reg-fake", UserID: userID, EventID: eventID}, nil
}

func (f *fakeRegistrationStore) ListByUser(ctx context.Context, userID string) ([]*domain.Registration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.regs, nil
}

// fakeEventCatalog serves events from a map, or err for every lookup.
type fakeEventCatalog struct {
	events map[string]*domain.Event
	err    error
}

func (f *fakeEventCatalog) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ev, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.RegistrationConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return f.err
}

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return f.err
}

type fakeRenderer struct {
	name string
	err  error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	f.name = templateName
	if f.err != nil {
		return "", "", "", f.err
	}
	return "You're registered", "<p>hi</p>", "hi", nil
}
