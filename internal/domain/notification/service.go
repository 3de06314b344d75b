package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/healthreach/healthreach/internal/platform/apperrors"
	"github.com/healthreach/healthreach/internal/platform/db"
)

var validTypes = map[string]bool{
	TypeNewCenter: true, TypeFacilityUpdate: true, TypeSystem: true,
	TypeAccount: true, TypeEmergency: true, TypeAppointment: true,
}

// StaffDirectory enumerates active staff accounts for fan-out, in a stable
// order.
type StaffDirectory interface {
	ListActiveStaffIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Service is both the notification store and the dispatcher.
type Service struct {
	repo        Repository
	staff       StaffDirectory
	pool        *pgxpool.Pool
	dedupWindow time.Duration
	logger      zerolog.Logger
}

func NewService(repo Repository, staff StaffDirectory, pool *pgxpool.Pool, dedupWindow time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		staff:       staff,
		pool:        pool,
		dedupWindow: dedupWindow,
		logger:      logger,
	}
}

func (s *Service) validate(n *Notification) error {
	if n.AccountID == uuid.Nil {
		return apperrors.Validation("account_id", "account_id is required")
	}
	if n.Title == "" {
		return apperrors.Validation("title", "title is required")
	}
	if n.Type == "" {
		n.Type = TypeSystem
	}
	if !validTypes[n.Type] {
		return apperrors.Validation("notification_type", "invalid notification type: "+n.Type)
	}
	return nil
}

// Create persists a single notification. A persistence failure is reported
// as a dispatch error so callers can distinguish it from their own storage
// failures.
func (s *Service) Create(ctx context.Context, n *Notification) (*Notification, error) {
	if err := s.validate(n); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, apperrors.Dispatch(err)
	}
	return n, nil
}

// CreateDeduped persists a notification unless an identical one (same owner,
// title and message) was already created within the dedup window, in which
// case the existing row is returned and no new row is written. Only the
// general-purpose creation endpoint goes through here; lifecycle and fan-out
// dispatch always write.
func (s *Service) CreateDeduped(ctx context.Context, n *Notification) (*Notification, error) {
	if err := s.validate(n); err != nil {
		return nil, err
	}
	if s.dedupWindow > 0 {
		existing, err := s.repo.FindRecentDuplicate(ctx, n.AccountID, n.Title, n.Message, time.Now().Add(-s.dedupWindow))
		if err != nil {
			return nil, apperrors.Dispatch(err)
		}
		if existing != nil {
			return existing, nil
		}
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, apperrors.Dispatch(err)
	}
	return n, nil
}

// Notify builds and dispatches a single notification. Every call stores a
// row: a repeated appointment or broadcast produces a repeated notification.
func (s *Service) Notify(ctx context.Context, accountID uuid.UUID, title, message, ntype string, data map[string]interface{}) (*Notification, error) {
	return s.Create(ctx, &Notification{
		AccountID: accountID,
		Title:     title,
		Message:   message,
		Type:      ntype,
		Data:      data,
	})
}

// NotifyUserAndStaff fans a notification out to the target account and every
// active staff account except the target itself. Recipients are deduplicated
// by account, never by content. The whole fan-out runs in one transaction:
// either every recipient gets the notification or none do. The target is
// written first, then staff in email order.
func (s *Service) NotifyUserAndStaff(ctx context.Context, targetID uuid.UUID, title, message, ntype string, data map[string]interface{}) ([]*Notification, error) {
	if targetID == uuid.Nil {
		return nil, apperrors.Validation("account_id", "target account is required")
	}

	staffIDs, err := s.staff.ListActiveStaffIDs(ctx)
	if err != nil {
		return nil, apperrors.Dispatch(err)
	}

	recipients := make([]uuid.UUID, 0, len(staffIDs)+1)
	recipients = append(recipients, targetID)
	for _, id := range staffIDs {
		if id != targetID {
			recipients = append(recipients, id)
		}
	}

	return s.fanOut(ctx, recipients, title, message, ntype, data)
}

// NotifyAllStaff fans a notification out to every active staff account, in
// the same transactional manner as NotifyUserAndStaff.
func (s *Service) NotifyAllStaff(ctx context.Context, title, message, ntype string, data map[string]interface{}) ([]*Notification, error) {
	staffIDs, err := s.staff.ListActiveStaffIDs(ctx)
	if err != nil {
		return nil, apperrors.Dispatch(err)
	}
	return s.fanOut(ctx, staffIDs, title, message, ntype, data)
}

func (s *Service) fanOut(ctx context.Context, recipients []uuid.UUID, title, message, ntype string, data map[string]interface{}) ([]*Notification, error) {
	created := make([]*Notification, 0, len(recipients))
	run := func(ctx context.Context) error {
		for _, accountID := range recipients {
			n, err := s.Create(ctx, &Notification{
				AccountID: accountID,
				Title:     title,
				Message:   message,
				Type:      ntype,
				Data:      data,
			})
			if err != nil {
				return err
			}
			created = append(created, n)
		}
		return nil
	}

	var err error
	if s.pool != nil {
		err = db.WithTx(ctx, s.pool, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindDispatch || apperrors.IsValidation(err) {
			return nil, err
		}
		return nil, apperrors.Dispatch(err)
	}

	s.logger.Debug().
		Int("recipients", len(created)).
		Str("title", title).
		Str("type", ntype).
		Msg("notification fan-out complete")

	return created, nil
}

// -- store operations --

// List returns the owner's notifications newest first, with the total and
// unread counts.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Notification, int, int, error) {
	items, total, err := s.repo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, accountID)
	if err != nil {
		return nil, 0, 0, err
	}
	return items, total, unread, nil
}

func (s *Service) ListUnread(ctx context.Context, accountID uuid.UUID) ([]*Notification, error) {
	return s.repo.ListUnread(ctx, accountID)
}

// MarkRead marks the given notifications read for the owner. An empty id
// list marks everything read. Returns the number of rows updated.
func (s *Service) MarkRead(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return s.repo.MarkAllRead(ctx, accountID)
	}
	return s.repo.MarkRead(ctx, accountID, ids)
}

// Delete removes a notification owned by the caller.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return s.repo.Delete(ctx, accountID, id)
}
