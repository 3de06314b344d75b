package appointment

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists appointments.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// GetDetailByID returns the joined row: the appointment plus owner
	// contact fields and the center name.
	GetDetailByID(ctx context.Context, id uuid.UUID) (*Detail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Detail, int, error)
	ListByCenter(ctx context.Context, healthCenterID uuid.UUID, limit, offset int) ([]*Detail, int, error)
	// DeleteByCenter removes every appointment for a center and returns the
	// number of rows deleted.
	DeleteByCenter(ctx context.Context, healthCenterID uuid.UUID) (int, error)
	CountByStatus(ctx context.Context, healthCenterID uuid.UUID) (map[string]int, error)
}
