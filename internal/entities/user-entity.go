package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"lead-system/pkg/constants"
)

type User struct {
	ID          uint64 `db:"id"`
	Fio         string `db:"fio"`
	Email       string `db:"email"`
	PhoneNumber string `db:"phone_number"`

	Password string `db:"password"`

	Role     constants.Role `db:"role"`
	CentreID null.Uint64    `db:"centre_id"`

	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SameCentre reports whether the user is attached to the given centre.
func (u *User) SameCentre(centreID uint64) bool {
	return u.CentreID.Valid && u.CentreID.Uint64 == centreID
}
