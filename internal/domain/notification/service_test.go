package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthreach/healthreach/internal/platform/apperrors"
)

// -- Mock Repository --

type mockRepo struct {
	items   map[uuid.UUID]*Notification
	order   []uuid.UUID
	failing bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Notification)}
}

func (m *mockRepo) Create(_ context.Context, n *Notification) error {
	if m.failing {
		return fmt.Errorf("storage unavailable")
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.items[n.ID] = n
	m.order = append(m.order, n.ID)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, apperrors.NotFound("notification not found")
	}
	return n, nil
}

func (m *mockRepo) FindRecentDuplicate(_ context.Context, accountID uuid.UUID, title, message string, since time.Time) (*Notification, error) {
	var latest *Notification
	for _, n := range m.items {
		if n.AccountID != accountID || n.Title != title || n.Message != message {
			continue
		}
		if n.CreatedAt.Before(since) {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			latest = n
		}
	}
	return latest, nil
}

func (m *mockRepo) ListByAccount(_ context.Context, accountID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	var result []*Notification
	for _, id := range m.order {
		if n := m.items[id]; n != nil && n.AccountID == accountID {
			result = append(result, n)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListUnread(_ context.Context, accountID uuid.UUID) ([]*Notification, error) {
	var result []*Notification
	for _, id := range m.order {
		if n := m.items[id]; n != nil && n.AccountID == accountID && !n.IsRead {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *mockRepo) CountUnread(_ context.Context, accountID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.items {
		if n.AccountID == accountID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockRepo) MarkRead(_ context.Context, accountID uuid.UUID, ids []uuid.UUID) (int, error) {
	updated := 0
	for _, id := range ids {
		if n, ok := m.items[id]; ok && n.AccountID == accountID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (m *mockRepo) MarkAllRead(_ context.Context, accountID uuid.UUID) (int, error) {
	updated := 0
	for _, n := range m.items {
		if n.AccountID == accountID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (m *mockRepo) Delete(_ context.Context, accountID, id uuid.UUID) error {
	n, ok := m.items[id]
	if !ok || n.AccountID != accountID {
		return apperrors.NotFound("notification not found")
	}
	delete(m.items, id)
	return nil
}

type mockStaffDirectory struct {
	ids []uuid.UUID
	err error
}

func (m *mockStaffDirectory) ListActiveStaffIDs(_ context.Context) ([]uuid.UUID, error) {
	return m.ids, m.err
}

func newTestService(repo *mockRepo, staff *mockStaffDirectory, window time.Duration) *Service {
	return NewService(repo, staff, nil, window, zerolog.Nop())
}

// -- Tests --

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockStaffDirectory{}, 0)

	_, err := svc.Create(context.Background(), &Notification{Title: "x"})
	if !apperrors.IsValidation(err) {
		t.Errorf("expected validation error for missing account, got %v", err)
	}

	_, err = svc.Create(context.Background(), &Notification{AccountID: uuid.New()})
	if !apperrors.IsValidation(err) {
		t.Errorf("expected validation error for missing title, got %v", err)
	}

	_, err = svc.Create(context.Background(), &Notification{AccountID: uuid.New(), Title: "x", Type: "bogus"})
	if !apperrors.IsValidation(err) {
		t.Errorf("expected validation error for bad type, got %v", err)
	}
}

func TestCreate_DefaultsToSystemType(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockStaffDirectory{}, 0)

	n, err := svc.Create(context.Background(), &Notification{AccountID: uuid.New(), Title: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Type != TypeSystem {
		t.Errorf("expected default type %s, got %s", TypeSystem, n.Type)
	}
	if n.IsRead {
		t.Error("new notification must be unread")
	}
}

func TestCreate_StorageFailureIsDispatchError(t *testing.T) {
	repo := newMockRepo()
	repo.failing = true
	svc := newTestService(repo, &mockStaffDirectory{}, 0)

	_, err := svc.Create(context.Background(), &Notification{AccountID: uuid.New(), Title: "x"})
	if apperrors.KindOf(err) != apperrors.KindDispatch {
		t.Errorf("expected dispatch error, got %v", err)
	}
}

func TestCreateDeduped_SuppressesWithinWindow(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockStaffDirectory{}, 5*time.Minute)
	owner := uuid.New()

	first, err := svc.CreateDeduped(context.Background(), &Notification{AccountID: owner, Title: "t", Message: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.CreateDeduped(context.Background(), &Notification{AccountID: owner, Title: "t", Message: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Error("expected the existing notification to be returned")
	}
	if len(repo.items) != 1 {
		t.Errorf("expected 1 stored notification, got %d", len(repo.items))
	}
}

func TestCreateDeduped_CreatesAfterWindow(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockStaffDirectory{}, 5*time.Minute)
	owner := uuid.New()

	first, err := svc.CreateDeduped(context.Background(), &Notification{AccountID: owner, Title: "t", Message: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.items[first.ID].CreatedAt = time.Now().Add(-6 * time.Minute)

	second, err := svc.CreateDeduped(context.Background(), &Notification{AccountID: owner, Title: "t", Message: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a new notification outside the window")
	}
	if len(repo.items) != 2 {
		t.Errorf("expected 2 stored notifications, got %d", len(repo.items))
	}
}

func TestCreateDeduped_DifferentMessageNotSuppressed(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockStaffDirectory{}, 5*time.Minute)
	owner := uuid.New()

	if _, err := svc.CreateDeduped(context.Background(), &Notification{AccountID: owner, Title: "t", Message: "m1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateDeduped(context.Background(), &Notification{AccountID: owner, Title: "t", Message: "m2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.items) != 2 {
		t.Errorf("expected 2 stored notifications, got %d", len(repo.items))
	}
}

func TestNotify_RepeatedContentAlwaysStored(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockStaffDirectory{}, 5*time.Minute)
	owner := uuid.New()

	for i := 0; i < 2; i++ {
		if _, err := svc.Notify(context.Background(), owner, "Appointment Submitted", "same message", TypeAppointment, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(repo.items) != 2 {
		t.Errorf("lifecycle dispatch must store every notification, got %d rows", len(repo.items))
	}
}

func TestFanOut_RepeatedBroadcastAlwaysStored(t *testing.T) {
	repo := newMockRepo()
	staff := &mockStaffDirectory{ids: []uuid.UUID{uuid.New(), uuid.New()}}
	svc := newTestService(repo, staff, 5*time.Minute)

	for i := 0; i < 2; i++ {
		created, err := svc.NotifyAllStaff(context.Background(), "alert", "evacuate", TypeEmergency, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(created) != 2 {
			t.Fatalf("broadcast %d: expected 2 created, got %d", i+1, len(created))
		}
	}
	if len(repo.items) != 4 {
		t.Errorf("repeated broadcasts must store rows each time, got %d", len(repo.items))
	}
}

func TestNotifyUserAndStaff_FanOutCount(t *testing.T) {
	repo := newMockRepo()
	staff := &mockStaffDirectory{ids: []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}}
	svc := newTestService(repo, staff, 0)
	target := uuid.New()

	created, err := svc.NotifyUserAndStaff(context.Background(), target, "t", "m", TypeNewCenter, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 4 {
		t.Errorf("expected 4 notifications (target + 3 staff), got %d", len(created))
	}
	if created[0].AccountID != target {
		t.Error("expected the target notification first")
	}
}

func TestNotifyUserAndStaff_StaffTargetNotDuplicated(t *testing.T) {
	repo := newMockRepo()
	target := uuid.New()
	staff := &mockStaffDirectory{ids: []uuid.UUID{target, uuid.New(), uuid.New()}}
	svc := newTestService(repo, staff, 0)

	created, err := svc.NotifyUserAndStaff(context.Background(), target, "t", "m", TypeNewCenter, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 3 {
		t.Errorf("expected 3 notifications when the target is staff, got %d", len(created))
	}
	seen := make(map[uuid.UUID]int)
	for _, n := range created {
		seen[n.AccountID]++
	}
	if seen[target] != 1 {
		t.Errorf("expected exactly 1 notification for the staff target, got %d", seen[target])
	}
}

func TestNotifyUserAndStaff_RequiresTarget(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockStaffDirectory{}, 0)
	if _, err := svc.NotifyUserAndStaff(context.Background(), uuid.Nil, "t", "m", TypeSystem, nil); !apperrors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNotifyUserAndStaff_StaffLookupFailureIsDispatchError(t *testing.T) {
	staff := &mockStaffDirectory{err: fmt.Errorf("directory down")}
	svc := newTestService(newMockRepo(), staff, 0)
	if _, err := svc.NotifyUserAndStaff(context.Background(), uuid.New(), "t", "m", TypeSystem, nil); apperrors.KindOf(err) != apperrors.KindDispatch {
		t.Errorf("expected dispatch error, got %v", err)
	}
}

func TestNotifyAllStaff(t *testing.T) {
	repo := newMockRepo()
	staff := &mockStaffDirectory{ids: []uuid.UUID{uuid.New(), uuid.New()}}
	svc := newTestService(repo, staff, 0)

	created, err := svc.NotifyAllStaff(context.Background(), "alert", "msg", TypeEmergency, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(created))
	}
	for _, n := range created {
		if n.Type != TypeEmergency {
			t.Errorf("expected type %s, got %s", TypeEmergency, n.Type)
		}
	}
}

func TestMarkRead_EmptyIDsMarksAll(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockStaffDirectory{}, 0)
	owner := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), &Notification{AccountID: owner, Title: fmt.Sprintf("n%d", i)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	updated, err := svc.MarkRead(context.Background(), owner, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 3 {
		t.Errorf("expected 3 updated, got %d", updated)
	}

	unread, err := svc.ListUnread(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("expected no unread notifications, got %d", len(unread))
	}
}

func TestList_ReturnsUnreadCount(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockStaffDirectory{}, 0)
	owner := uuid.New()

	for i := 0; i < 2; i++ {
		if _, err := svc.Create(context.Background(), &Notification{AccountID: owner, Title: fmt.Sprintf("n%d", i)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := svc.Create(context.Background(), &Notification{AccountID: uuid.New(), Title: "other"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, unread, err := svc.List(context.Background(), owner, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 notifications, got total=%d len=%d", total, len(items))
	}
	if unread != 2 {
		t.Errorf("expected 2 unread, got %d", unread)
	}
}

func TestDelete_OtherOwnerNotFound(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockStaffDirectory{}, 0)
	owner := uuid.New()

	n, err := svc.Create(context.Background(), &Notification{AccountID: owner, Title: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), uuid.New(), n.ID); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found for foreign owner, got %v", err)
	}
	if err := svc.Delete(context.Background(), owner, n.ID); err != nil {
		t.Errorf("unexpected error deleting own notification: %v", err)
	}
}
