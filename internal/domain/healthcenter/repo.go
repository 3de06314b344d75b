package healthcenter

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists health centers.
type Repository interface {
	Create(ctx context.Context, hc *HealthCenter) error
	GetByID(ctx context.Context, id uuid.UUID) (*HealthCenter, error)
	GetByOwner(ctx context.Context, ownerAccountID uuid.UUID) (*HealthCenter, error)
	ExistsByNameAddress(ctx context.Context, name, address string) (bool, error)
	Update(ctx context.Context, hc *HealthCenter) error
	Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*HealthCenter, int, error)
	Districts(ctx context.Context) ([]string, error)
}
