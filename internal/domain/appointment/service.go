package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthreach/healthreach/internal/domain/notification"
	"github.com/healthreach/healthreach/internal/platform/apperrors"
	"github.com/healthreach/healthreach/internal/platform/auth"
)

const dateLayout = "Jan 2, 2006 at 3:04 PM"

// CenterDirectory resolves the health center an appointment targets.
type CenterDirectory interface {
	CenterName(ctx context.Context, id uuid.UUID) (string, error)
}

// Notifier dispatches appointment lifecycle notifications.
type Notifier interface {
	Notify(ctx context.Context, accountID uuid.UUID, title, message, ntype string, data map[string]interface{}) (*notification.Notification, error)
}

type Service struct {
	repo     Repository
	centers  CenterDirectory
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, centers CenterDirectory, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{repo: repo, centers: centers, notifier: notifier, logger: logger}
}

// Create books an appointment for the authenticated caller. The appointment
// always starts pending. The submission notification is dispatched after the
// appointment is persisted; a dispatch failure is logged and does not undo
// the booking.
func (s *Service) Create(ctx context.Context, actor *auth.Identity, in CreateInput) (*Appointment, error) {
	if actor == nil {
		return nil, apperrors.Unauthenticated("not authenticated")
	}
	if in.HealthCenterID == uuid.Nil {
		return nil, apperrors.Validation("health_center_id", "health_center_id is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, apperrors.Validation("phone", "phone is required")
	}
	if in.ScheduledFor.IsZero() {
		return nil, apperrors.Validation("scheduled_for", "scheduled_for is required")
	}

	centerName, err := s.centers.CenterName(ctx, in.HealthCenterID)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		AccountID:      actor.AccountID,
		HealthCenterID: in.HealthCenterID,
		Phone:          strings.TrimSpace(in.Phone),
		ScheduledFor:   in.ScheduledFor,
		Status:         StatusPending,
	}
	if msg := strings.TrimSpace(in.Message); msg != "" {
		a.Message = &msg
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, a, actor.Email, centerName,
		"Appointment Submitted",
		fmt.Sprintf("Your appointment request at %s for %s has been submitted and is awaiting review.",
			centerName, a.ScheduledFor.Format(dateLayout)))

	return a, nil
}

// List returns appointments scoped to the viewer: staff linked to a center
// see that center's appointments, regular users see their own, and staff
// without a linked center see nothing.
func (s *Service) List(ctx context.Context, actor *auth.Identity, limit, offset int) ([]*Detail, int, error) {
	if actor == nil {
		return nil, 0, apperrors.Unauthenticated("not authenticated")
	}
	if actor.IsStaff {
		if actor.HealthCenterID == nil {
			return []*Detail{}, 0, nil
		}
		return s.repo.ListByCenter(ctx, *actor.HealthCenterID, limit, offset)
	}
	return s.repo.ListByAccount(ctx, actor.AccountID, limit, offset)
}

// Approve confirms a pending appointment. The returned representation carries
// the owner's contact fields and the center name so callers need no further
// lookups.
func (s *Service) Approve(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Detail, error) {
	return s.transition(ctx, actor, id, StatusConfirmed,
		"Appointment Approved", "has been approved")
}

// Reject cancels a pending appointment.
func (s *Service) Reject(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*Detail, error) {
	return s.transition(ctx, actor, id, StatusCancelled,
		"Appointment Rejected", "has been rejected")
}

func (s *Service) transition(ctx context.Context, actor *auth.Identity, id uuid.UUID, status, title, verdict string) (*Detail, error) {
	if actor == nil {
		return nil, apperrors.Unauthenticated("not authenticated")
	}
	if !actor.IsStaff || actor.HealthCenterID == nil {
		return nil, apperrors.Forbidden("staff account with a linked health center required")
	}

	if _, err := s.centers.CenterName(ctx, *actor.HealthCenterID); err != nil {
		return nil, err
	}

	d, err := s.repo.GetDetailByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.HealthCenterID != *actor.HealthCenterID {
		return nil, apperrors.Forbidden("appointment belongs to another health center")
	}
	if d.IsTerminal() {
		return nil, apperrors.Conflict("appointment is already " + d.Status)
	}

	if err := s.repo.UpdateStatus(ctx, d.ID, status); err != nil {
		return nil, err
	}
	d.Status = status

	s.notifyOwner(ctx, &d.Appointment, d.OwnerEmail, d.CenterName, title,
		fmt.Sprintf("Your appointment at %s for %s %s.",
			d.CenterName, d.ScheduledFor.Format(dateLayout), verdict))

	return d, nil
}

// notifyOwner dispatches a lifecycle notification to the appointment owner.
// Failures are logged only: the state change already took effect.
func (s *Service) notifyOwner(ctx context.Context, a *Appointment, ownerEmail, centerName, title, message string) {
	data := map[string]interface{}{
		"hospital": centerName,
		"date":     a.ScheduledFor.Format(dateLayout),
		"phone":    a.Phone,
	}
	if ownerEmail != "" {
		data["user"] = ownerEmail
	}
	if a.Message != nil {
		data["message"] = *a.Message
	}

	if _, err := s.notifier.Notify(ctx, a.AccountID, title, message, notification.TypeAppointment, data); err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", a.ID.String()).
			Str("title", title).
			Msg("appointment notification dispatch failed")
	}
}

// Purge deletes every appointment for the staff caller's own center and
// returns the number removed. No notifications are sent.
func (s *Service) Purge(ctx context.Context, actor *auth.Identity, healthCenterID uuid.UUID) (int, error) {
	if actor == nil {
		return 0, apperrors.Unauthenticated("not authenticated")
	}
	if !actor.IsStaff || actor.HealthCenterID == nil {
		return 0, apperrors.Forbidden("staff account with a linked health center required")
	}
	if *actor.HealthCenterID != healthCenterID {
		return 0, apperrors.Forbidden("cannot purge appointments of another health center")
	}
	return s.repo.DeleteByCenter(ctx, healthCenterID)
}

// CountByStatus reports appointment counts per status for a center. The
// directory dashboard aggregates this.
func (s *Service) CountByStatus(ctx context.Context, healthCenterID uuid.UUID) (map[string]int, error) {
	return s.repo.CountByStatus(ctx, healthCenterID)
}
