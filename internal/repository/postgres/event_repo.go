package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"communityevents/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns an EventCatalog reading the events table.
func NewEventRepository(db *sql.DB) domain.EventCatalog {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, title, description, long_description, location, address, category, organizer_name,
		       date, start_time, end_time
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	var longDesc, address, category, organizer sql.NullString
	var date time.Time
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &longDesc, &e.Location, &address, &category, &organizer,
		&date, &e.StartTime, &e.EndTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pgInvalidTextRepr {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.LongDescription = longDesc.String
	e.Address = address.String
	e.Category = category.String
	e.OrganizerName = organizer.String
	e.Date = date.Format(time.DateOnly)
	return e, nil
}
