package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// FindRecentDuplicate returns the most recent notification with the same
	// owner, title and message created at or after since, or nil if none.
	FindRecentDuplicate(ctx context.Context, accountID uuid.UUID, title, message string, since time.Time) (*Notification, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Notification, int, error)
	ListUnread(ctx context.Context, accountID uuid.UUID) ([]*Notification, error)
	CountUnread(ctx context.Context, accountID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int, error)
	MarkAllRead(ctx context.Context, accountID uuid.UUID) (int, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}
