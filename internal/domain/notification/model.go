package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	TypeNewCenter      = "new_center"
	TypeFacilityUpdate = "facility_update"
	TypeSystem         = "system"
	TypeAccount        = "account"
	TypeEmergency      = "emergency"
	TypeAppointment    = "appointment"
)

// Notification maps to the notification table.
type Notification struct {
	ID        uuid.UUID              `db:"id" json:"id"`
	AccountID uuid.UUID              `db:"account_id" json:"account_id"`
	Title     string                 `db:"title" json:"title"`
	Message   string                 `db:"message" json:"message"`
	Type      string                 `db:"notification_type" json:"notification_type"`
	IsRead    bool                   `db:"is_read" json:"is_read"`
	Data      map[string]interface{} `db:"data" json:"data,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}
