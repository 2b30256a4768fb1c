package domain

import "time"

// Item is the domain model for catalog entries.
type Item struct {
	ID        string
	Name      string
	Price     float64
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
