package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"communityevents/internal/domain"
)

// maxEventLookups bounds concurrent catalog reads when listing a user's events.
const maxEventLookups = 8

// DefaultEmailTimeout bounds the confirmation step when no timeout is configured.
const DefaultEmailTimeout = 10 * time.Second

type registrationService struct {
	store  domain.RegistrationStore
	events domain.EventCatalog
	users  domain.UserDirectory
	bridge domain.CalendarBridge
	emails domain.EmailService
	// emailTimeout caps the lookups and send behind one confirmation email.
	emailTimeout time.Duration
	logger       *slog.Logger
}

// NewRegistrationService creates a RegistrationService. users and emails may be nil, in which
// case no confirmation email is sent. emailTimeout <= 0 means DefaultEmailTimeout.
func NewRegistrationService(
	store domain.RegistrationStore,
	events domain.EventCatalog,
	users domain.UserDirectory,
	bridge domain.CalendarBridge,
	emails domain.EmailService,
	emailTimeout time.Duration,
	logger *slog.Logger,
) domain.RegistrationService {
	if emailTimeout <= 0 {
		emailTimeout = DefaultEmailTimeout
	}
	return &registrationService{
		store:        store,
		events:       events,
		users:        users,
		bridge:       bridge,
		emails:       emails,
		emailTimeout: emailTimeout,
		logger:       logger,
	}
}

func (s *registrationService) Register(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	userID = strings.TrimSpace(userID)
	eventID = strings.TrimSpace(eventID)
	if userID == "" || eventID == "" {
		return nil, fmt.Errorf("%w: user_id and event_id are required", domain.ErrInvalidInput)
	}

	// Fast path only; Create is the authoritative uniqueness check.
	exists, err := s.store.Exists(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}
	if exists {
		return nil, domain.ErrAlreadyRegistered
	}

	reg, err := s.store.Create(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: %w", domain.ErrAlreadyRegistered, err)
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.logger.InfoContext(ctx, "registration created", "registration_id", reg.ID, "user_id", userID, "event_id", eventID)
	s.sendConfirmation(ctx, reg)
	return reg, nil
}

func (s *registrationService) RegisterAndSync(ctx context.Context, userID, eventID string, cred domain.Credential) (*domain.RegistrationResult, error) {
	reg, err := s.Register(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	result := &domain.RegistrationResult{Registration: reg}
	synced, err := s.SyncToCalendar(ctx, reg.EventID, cred)
	if err != nil {
		s.logger.WarnContext(ctx, "calendar sync failed after registration",
			"registration_id", reg.ID, "event_id", reg.EventID, "err", err)
		result.Sync = &domain.SyncOutcome{Err: err, Code: domain.ErrorCode(err)}
		return result, nil
	}
	result.Sync = &domain.SyncOutcome{Result: synced}
	return result, nil
}

func (s *registrationService) SyncToCalendar(ctx context.Context, eventID string, cred domain.Credential) (*domain.SyncResult, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event_id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(string(cred)) == "" {
		return nil, domain.ErrMissingCredential
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, err)
	}
	return s.bridge.Sync(ctx, cred, event)
}

func (s *registrationService) ListMyEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}
	regs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if len(regs) == 0 {
		return []*domain.Event{}, nil
	}

	resolved := make([]*domain.Event, len(regs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxEventLookups)
	for i, reg := range regs {
		g.Go(func() error {
			ev, err := s.events.GetByID(gctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Event removed from the catalog; the registration stays but is not listed.
					return nil
				}
				return fmt.Errorf("get event for registration %s: %w", reg.ID, err)
			}
			resolved[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	events := make([]*domain.Event, 0, len(resolved))
	for _, ev := range resolved {
		if ev != nil {
			events = append(events, ev)
		}
	}
	return events, nil
}

// sendConfirmation mails the user about a new registration. Failures, including running
// past emailTimeout, are logged only.
func (s *registrationService) sendConfirmation(ctx context.Context, reg *domain.Registration) {
	if s.emails == nil || s.users == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.emailTimeout)
	defer cancel()
	user, err := s.users.GetByID(ctx, reg.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "confirmation email skipped: user lookup failed", "user_id", reg.UserID, "err", err)
		return
	}
	event, err := s.events.GetByID(ctx, reg.EventID)
	if err != nil {
		s.logger.WarnContext(ctx, "confirmation email skipped: event lookup failed", "event_id", reg.EventID, "err", err)
		return
	}
	err = s.emails.SendRegistrationConfirmation(ctx, &domain.RegistrationConfirmationEmailData{
		Email:     user.Email,
		Name:      user.Name,
		EventName: event.Title,
		Date:      event.Date,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		Location:  event.Location,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "confirmation email failed", "registration_id", reg.ID, "err", err)
	}
}
