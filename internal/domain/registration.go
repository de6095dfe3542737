package domain

import (
	"context"
	"time"
)

// Registration records that a user has claimed an event. It is never mutated or deleted.
// swagger:model Registration
type Registration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewRegistration returns a Registration for the pair. ID is set by the store on create.
func NewRegistration(userID, eventID string, registeredAt time.Time) *Registration {
	return &Registration{
		UserID:       userID,
		EventID:      eventID,
		RegisteredAt: registeredAt,
	}
}

// RegistrationStore persists registrations and owns the (user, event) uniqueness guarantee.
type RegistrationStore interface {
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	// Create inserts the pair atomically. It returns ErrConflict when the pair already exists
	// and ErrNotFound when the user or event does not resolve.
	Create(ctx context.Context, userID, eventID string) (*Registration, error)
	ListByUser(ctx context.Context, userID string) ([]*Registration, error)
}

// SyncOutcome is the result of the calendar step of RegisterAndSync.
// Exactly one of Result and Err is set.
type SyncOutcome struct {
	Result *SyncResult `json:"result,omitempty"`
	Err    error       `json:"-"`
	Code   string      `json:"error_code,omitempty"`
}

// RegistrationResult bundles a successful registration with the optional calendar outcome.
type RegistrationResult struct {
	Registration *Registration `json:"registration"`
	Sync         *SyncOutcome  `json:"sync,omitempty"`
}

// RegistrationService orchestrates registration and calendar mirroring.
type RegistrationService interface {
	Register(ctx context.Context, userID, eventID string) (*Registration, error)
	// RegisterAndSync registers and then mirrors the event. A sync failure is reported in
	// RegistrationResult.Sync and never invalidates the registration.
	RegisterAndSync(ctx context.Context, userID, eventID string, cred Credential) (*RegistrationResult, error)
	SyncToCalendar(ctx context.Context, eventID string, cred Credential) (*SyncResult, error)
	ListMyEvents(ctx context.Context, userID string) ([]*Event, error)
}
