package entities

import "time"

// Centre is a sales office; MANAGER users can only write records of their
// own centre.
type Centre struct {
	ID        uint64    `db:"id"`
	Name      string    `db:"name"`
	City      string    `db:"city"`
	CreatedAt time.Time `db:"created_at"`
}
