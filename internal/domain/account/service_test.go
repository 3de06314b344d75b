package account

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/healthreach/healthreach/internal/platform/apperrors"
	"github.com/healthreach/healthreach/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	items map[uuid.UUID]*Account
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Account)}
}

func (m *mockRepo) Create(_ context.Context, a *Account) error {
	for _, existing := range m.items {
		if existing.Email == a.Email {
			return apperrors.Conflict("email already registered")
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, apperrors.NotFound("account not found")
	}
	return a, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range m.items {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, apperrors.NotFound("account not found")
}

func (m *mockRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, a := range m.items {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) SetHealthCenter(_ context.Context, accountID, healthCenterID uuid.UUID) error {
	a, ok := m.items[accountID]
	if !ok {
		return apperrors.NotFound("account not found")
	}
	a.HealthCenterID = &healthCenterID
	return nil
}

func (m *mockRepo) ListStaff(_ context.Context, activeOnly bool) ([]*Account, error) {
	var result []*Account
	for _, a := range m.items {
		if !a.IsStaff {
			continue
		}
		if activeOnly && !a.IsActive {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

func newTestService(repo *mockRepo) *Service {
	return NewService(repo, auth.NewTokenIssuer("test-secret", time.Hour))
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:    "amina@example.com",
		Password: "changeme123",
		Name:     "Amina Okello",
	}
}

// -- Tests --

func TestRegister(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	a, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.IsActive {
		t.Error("new account must be active")
	}
	if a.IsStaff {
		t.Error("regular registration must not create staff")
	}
	if a.PasswordHash == "changeme123" {
		t.Error("password must be hashed")
	}
	if !auth.CheckPassword(a.PasswordHash, "changeme123") {
		t.Error("hash must verify against the original password")
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	svc := newTestService(newMockRepo())
	in := validRegisterInput()
	in.Email = "  Amina@Example.COM "

	a, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Email != "amina@example.com" {
		t.Errorf("expected lowercased trimmed email, got %q", a.Email)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(newMockRepo())

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *RegisterInput) { in.Password = "short" }},
		{"missing name", func(in *RegisterInput) { in.Name = "  " }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegisterInput()
			tc.mutate(&in)
			if _, err := svc.Register(context.Background(), in); !apperrors.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(newMockRepo())

	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Register(context.Background(), validRegisterInput()); !apperrors.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestRegisterStaff(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	id, err := svc.RegisterStaff(context.Background(), "admin@mulago.example.com", "changeme123", "Mulago Admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.IsStaff {
		t.Error("expected a staff account")
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(newMockRepo())
	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, token, expiresAt, err := svc.Login(context.Background(), Credentials{Email: "amina@example.com", Password: "changeme123"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Email != "amina@example.com" {
		t.Errorf("unexpected account %q", a.Email)
	}
	if token == "" {
		t.Error("expected a signed token")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("token must expire in the future")
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	svc := newTestService(newMockRepo())
	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, _, err := svc.Login(context.Background(), Credentials{Email: "amina@example.com", Password: "wrong-password"}, false); !apperrors.IsUnauthenticated(err) {
		t.Errorf("expected unauthenticated for wrong password, got %v", err)
	}
	if _, _, _, err := svc.Login(context.Background(), Credentials{Email: "nobody@example.com", Password: "changeme123"}, false); !apperrors.IsUnauthenticated(err) {
		t.Errorf("expected unauthenticated for unknown email, got %v", err)
	}
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	a, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.items[a.ID].IsActive = false

	if _, _, _, err := svc.Login(context.Background(), Credentials{Email: "amina@example.com", Password: "changeme123"}, false); !apperrors.IsForbidden(err) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestLogin_RequireStaff(t *testing.T) {
	svc := newTestService(newMockRepo())
	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.RegisterStaff(context.Background(), "admin@mulago.example.com", "changeme123", "Mulago Admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, _, err := svc.Login(context.Background(), Credentials{Email: "amina@example.com", Password: "changeme123"}, true); !apperrors.IsForbidden(err) {
		t.Errorf("expected forbidden for non-staff, got %v", err)
	}
	if _, _, _, err := svc.Login(context.Background(), Credentials{Email: "admin@mulago.example.com", Password: "changeme123"}, true); err != nil {
		t.Errorf("unexpected error for staff login: %v", err)
	}
}

func TestListActiveStaffIDs_Ordering(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	emails := []string{"c@example.com", "a@example.com", "b@example.com"}
	want := make(map[string]uuid.UUID, len(emails))
	for _, email := range emails {
		id, err := svc.RegisterStaff(context.Background(), email, "changeme123", "Staff")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want[email] = id
	}

	inactiveID, err := svc.RegisterStaff(context.Background(), "d@example.com", "changeme123", "Gone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.items[inactiveID].IsActive = false

	ids, err := svc.ListActiveStaffIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 active staff, got %d", len(ids))
	}
	expected := []uuid.UUID{want["a@example.com"], want["b@example.com"], want["c@example.com"]}
	for i, id := range expected {
		if ids[i] != id {
			t.Errorf("position %d: expected %s, got %s", i, id, ids[i])
		}
	}
}

func TestResolveIdentity_ReflectsCurrentState(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	id, err := svc.RegisterStaff(context.Background(), "admin@mulago.example.com", "changeme123", "Mulago Admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	identity, err := svc.ResolveIdentity(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !identity.IsStaff || identity.HealthCenterID != nil {
		t.Error("expected an unlinked staff identity")
	}

	// Linking a center must show up on the next resolve without a new login.
	centerID := uuid.New()
	if err := svc.SetHealthCenter(context.Background(), id, centerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	identity, err = svc.ResolveIdentity(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.HealthCenterID == nil || *identity.HealthCenterID != centerID {
		t.Error("resolved identity must carry the freshly linked center")
	}
}

func TestResolveIdentity_DeactivatedAndUnknown(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	a, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.items[a.ID].IsActive = false

	if _, err := svc.ResolveIdentity(context.Background(), a.ID); !apperrors.IsForbidden(err) {
		t.Errorf("expected forbidden for a deactivated account, got %v", err)
	}
	if _, err := svc.ResolveIdentity(context.Background(), uuid.New()); !apperrors.IsUnauthenticated(err) {
		t.Errorf("expected unauthenticated for an unknown account, got %v", err)
	}
}

func TestSetHealthCenter(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	id, err := svc.RegisterStaff(context.Background(), "admin@mulago.example.com", "changeme123", "Mulago Admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	centerID := uuid.New()
	if err := svc.SetHealthCenter(context.Background(), id, centerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.HealthCenterID == nil || *a.HealthCenterID != centerID {
		t.Error("health center link not stored")
	}
}
