package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healthreach/healthreach/internal/platform/apperrors"
	"github.com/healthreach/healthreach/internal/platform/auth"
)

const minPasswordLength = 8

type Service struct {
	repo   Repository
	tokens *auth.TokenIssuer
}

func NewService(repo Repository, tokens *auth.TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a new account with a hashed password. Duplicate emails
// are rejected with Conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, apperrors.Validation("email", "a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.Validation("password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.Validation("name", "name is required")
	}

	exists, err := s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("email already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	a := &Account{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		IsActive:     true,
		IsStaff:      in.IsStaff,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RegisterStaff creates a staff account during hospital registration and
// returns its id.
func (s *Service) RegisterStaff(ctx context.Context, email, password, name string) (uuid.UUID, error) {
	a, err := s.Register(ctx, RegisterInput{Email: email, Password: password, Name: name, IsStaff: true})
	if err != nil {
		return uuid.Nil, err
	}
	return a.ID, nil
}

// Login verifies credentials and issues an access token. A wrong email or
// password yields Unauthenticated; a deactivated account yields Forbidden.
// When requireStaff is set, non-staff accounts are rejected with Forbidden.
func (s *Service) Login(ctx context.Context, creds Credentials, requireStaff bool) (*Account, string, time.Time, error) {
	a, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(creds.Email)))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, "", time.Time{}, apperrors.Unauthenticated("invalid email or password")
		}
		return nil, "", time.Time{}, err
	}
	if !auth.CheckPassword(a.PasswordHash, creds.Password) {
		return nil, "", time.Time{}, apperrors.Unauthenticated("invalid email or password")
	}
	if !a.IsActive {
		return nil, "", time.Time{}, apperrors.Forbidden("account is deactivated")
	}
	if requireStaff && !a.IsStaff {
		return nil, "", time.Time{}, apperrors.Forbidden("staff account required")
	}

	token, expiresAt, err := s.tokens.Issue(a.ID, a.Email, a.IsStaff, a.HealthCenterID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return a, token, expiresAt, nil
}

// IssueToken issues an access token for an already verified account.
func (s *Service) IssueToken(a *Account) (string, time.Time, error) {
	return s.tokens.Issue(a.ID, a.Email, a.IsStaff, a.HealthCenterID)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email))
}

// ResolveIdentity loads the account's current state for the auth middleware.
// Staff role and center link are read from the store here, not from token
// claims, so role changes take effect on the next request. An unknown
// account yields Unauthenticated, a deactivated one Forbidden.
func (s *Service) ResolveIdentity(ctx context.Context, accountID uuid.UUID) (*auth.Identity, error) {
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthenticated("account no longer exists")
		}
		return nil, err
	}
	if !a.IsActive {
		return nil, apperrors.Forbidden("account is deactivated")
	}
	return &auth.Identity{
		AccountID:      a.ID,
		Email:          a.Email,
		IsStaff:        a.IsStaff,
		HealthCenterID: a.HealthCenterID,
	}, nil
}

// SetHealthCenter links a staff account to the health center it manages.
func (s *Service) SetHealthCenter(ctx context.Context, accountID, healthCenterID uuid.UUID) error {
	return s.repo.SetHealthCenter(ctx, accountID, healthCenterID)
}

func (s *Service) ListStaff(ctx context.Context, activeOnly bool) ([]*Account, error) {
	return s.repo.ListStaff(ctx, activeOnly)
}

// ListActiveStaffIDs enumerates active staff account ids in a stable order
// (email ascending). Notification fan-out iterates this list.
func (s *Service) ListActiveStaffIDs(ctx context.Context) ([]uuid.UUID, error) {
	staff, err := s.repo.ListStaff(ctx, true)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(staff))
	for _, a := range staff {
		ids = append(ids, a.ID)
	}
	return ids, nil
}
