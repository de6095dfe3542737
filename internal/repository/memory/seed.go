package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"communityevents/internal/domain"
)

// Seed is the fixture document accepted by LoadSeed.
type Seed struct {
	Users  []*domain.User  `json:"users"`
	Events []*domain.Event `json:"events"`
}

// LoadSeed decodes a Seed from r into the catalog and returns how many users and events it added.
func (c *Catalog) LoadSeed(r io.Reader) (users, events int, err error) {
	var s Seed
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return 0, 0, fmt.Errorf("decode seed: %w", err)
	}
	for i, u := range s.Users {
		if u == nil || u.ID == "" {
			return 0, 0, fmt.Errorf("seed user %d: %w: id is required", i, domain.ErrInvalidInput)
		}
	}
	for i, e := range s.Events {
		if e == nil || e.ID == "" {
			return 0, 0, fmt.Errorf("seed event %d: %w: id is required", i, domain.ErrInvalidInput)
		}
	}
	for _, u := range s.Users {
		c.PutUser(u)
	}
	for _, e := range s.Events {
		c.PutEvent(e)
	}
	return len(s.Users), len(s.Events), nil
}

// LoadSeedFile is LoadSeed over the file at path.
func (c *Catalog) LoadSeedFile(path string) (users, events int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return c.LoadSeed(f)
}
