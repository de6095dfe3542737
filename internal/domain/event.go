package domain

import "context"

// Event is the catalog record consumed by registration and calendar sync.
// Date is a calendar date (YYYY-MM-DD); StartTime and EndTime are local clock times (HH:MM).
// swagger:model Event
type Event struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	LongDescription string `json:"long_description,omitempty"`
	Location        string `json:"location"`
	Address         string `json:"address,omitempty"`
	Category        string `json:"category,omitempty"`
	OrganizerName   string `json:"organizer_name,omitempty"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
}

// EventCatalog is the read-only source of events.
type EventCatalog interface {
	GetByID(ctx context.Context, id string) (*Event, error)
}
