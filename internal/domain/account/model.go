package account

import (
	"time"

	"github.com/google/uuid"
)

// Account maps to the account table. An account is either a regular user or
// a staff account linked to the health center it manages.
type Account struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	Name           string     `db:"name" json:"name"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	IsStaff        bool       `db:"is_staff" json:"is_staff"`
	HealthCenterID *uuid.UUID `db:"health_center_id" json:"health_center_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// RegisterInput carries the fields accepted at registration time.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	IsStaff  bool   `json:"-"`
}

// Credentials carries a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
