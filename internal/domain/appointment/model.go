package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. An appointment starts pending; confirmed and
// cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Appointment maps to the appointment table.
type Appointment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	AccountID      uuid.UUID `db:"account_id" json:"account_id"`
	HealthCenterID uuid.UUID `db:"health_center_id" json:"health_center_id"`
	Phone          string    `db:"phone" json:"phone"`
	ScheduledFor   time.Time `db:"scheduled_for" json:"scheduled_for"`
	Message        *string   `db:"message" json:"message,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the appointment can no longer transition.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusConfirmed || a.Status == StatusCancelled
}

// Detail is the joined listing row: the appointment plus the owner's
// contact details and the center's name.
type Detail struct {
	Appointment
	OwnerName  string `db:"owner_name" json:"owner_name"`
	OwnerEmail string `db:"owner_email" json:"owner_email"`
	CenterName string `db:"center_name" json:"center_name"`
}

// CreateInput carries a booking request.
type CreateInput struct {
	HealthCenterID uuid.UUID `json:"health_center_id"`
	Phone          string    `json:"phone"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	Message        string    `json:"message"`
}
