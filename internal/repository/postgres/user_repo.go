package postgres

import (
	"context"
	"database/sql"
	"errors"

	"communityevents/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a UserDirectory reading the users table.
func NewUserRepository(db *sql.DB) domain.UserDirectory {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, name, created_at
		FROM users
		WHERE id = $1
	`
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pgInvalidTextRepr {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
