package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"communityevents/internal/domain"
)

// Postgres SQLSTATE codes the registration store translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

type registrationRepository struct {
	DB  *sql.DB
	now func() time.Time
}

// NewRegistrationRepository returns a RegistrationStore backed by the registrations table.
// Uniqueness and existence of user and event are enforced by table constraints.
func NewRegistrationRepository(db *sql.DB) domain.RegistrationStore {
	return &registrationRepository{
		DB:  db,
		now: time.Now,
	}
}

func (r *registrationRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, userID, eventID).Scan(&exists); err != nil {
		if pqCode(err) == pgInvalidTextRepr {
			// Not a UUID, so no row can match.
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func (r *registrationRepository) Create(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	reg := domain.NewRegistration(userID, eventID, r.now().UTC())
	query := `
		INSERT INTO registrations (id, user_id, event_id, registered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, event_id) DO NOTHING
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, uuid.NewString(), reg.UserID, reg.EventID, reg.RegisteredAt).
		Scan(&reg.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConflict
		}
		switch pqCode(err) {
		case pgUniqueViolation:
			return nil, domain.ErrConflict
		case pgForeignKeyViolation, pgInvalidTextRepr:
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, user_id, event_id, registered_at
		FROM registrations
		WHERE user_id = $1
		ORDER BY registered_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		if pqCode(err) == pgInvalidTextRepr {
			return []*domain.Registration{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	regs := []*domain.Registration{}
	for rows.Next() {
		reg := &domain.Registration{}
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.RegisteredAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func pqCode(err error) pq.ErrorCode {
	var perr *pq.Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ""
}
