package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetHealthCenter(ctx context.Context, accountID, healthCenterID uuid.UUID) error
	ListStaff(ctx context.Context, activeOnly bool) ([]*Account, error)
}
