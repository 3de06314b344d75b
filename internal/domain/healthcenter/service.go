package healthcenter

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/healthreach/healthreach/internal/domain/notification"
	"github.com/healthreach/healthreach/internal/platform/apperrors"
	"github.com/healthreach/healthreach/internal/platform/db"
)

const defaultCountry = "Uganda"

// AccountRegistrar creates and links the staff account that owns a health
// center.
type AccountRegistrar interface {
	RegisterStaff(ctx context.Context, email, password, name string) (uuid.UUID, error)
	SetHealthCenter(ctx context.Context, accountID, healthCenterID uuid.UUID) error
}

// Notifier dispatches directory notifications.
type Notifier interface {
	NotifyUserAndStaff(ctx context.Context, targetID uuid.UUID, title, message, ntype string, data map[string]interface{}) ([]*notification.Notification, error)
	NotifyAllStaff(ctx context.Context, title, message, ntype string, data map[string]interface{}) ([]*notification.Notification, error)
}

// AppointmentCounter reports appointment counts per status for a center.
type AppointmentCounter interface {
	CountByStatus(ctx context.Context, healthCenterID uuid.UUID) (map[string]int, error)
}

type Service struct {
	repo     Repository
	accounts AccountRegistrar
	notifier Notifier
	counter  AppointmentCounter
	pool     *pgxpool.Pool
	logger   zerolog.Logger
}

func NewService(repo Repository, accounts AccountRegistrar, notifier Notifier, pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		notifier: notifier,
		pool:     pool,
		logger:   logger,
	}
}

// SetAppointmentCounter wires the appointment stats source. Set after
// construction because the appointment service itself depends on this
// service for center lookups.
func (s *Service) SetAppointmentCounter(counter AppointmentCounter) {
	s.counter = counter
}

// RegisterHospitalInput carries hospital registration: the staff credential
// plus the center's directory entry.
type RegisterHospitalInput struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ContactName       string `json:"contact_name"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Address           string `json:"address"`
	City              string `json:"city"`
	Country           string `json:"country"`
	CenterEmail       string `json:"center_email"`
	Phone             string `json:"phone"`
	IsEmergency       *bool  `json:"is_emergency"`
	HasAmbulance      *bool  `json:"has_ambulance"`
	HasPharmacy       *bool  `json:"has_pharmacy"`
	HasLab            *bool  `json:"has_lab"`
	Specialties       string `json:"specialties"`
	ConditionsTreated string `json:"conditions_treated"`
}

func (in *RegisterHospitalInput) center() *HealthCenter {
	hc := &HealthCenter{
		Name:              strings.TrimSpace(in.Name),
		Address:           strings.TrimSpace(in.Address),
		City:              strings.TrimSpace(in.City),
		Country:           strings.TrimSpace(in.Country),
		IsEmergency:       true,
		HasPharmacy:       true,
		Specialties:       in.Specialties,
		ConditionsTreated: in.ConditionsTreated,
	}
	if hc.Country == "" {
		hc.Country = defaultCountry
	}
	if in.Description != "" {
		hc.Description = &in.Description
	}
	if in.CenterEmail != "" {
		hc.Email = &in.CenterEmail
	}
	if in.Phone != "" {
		hc.Phone = &in.Phone
	}
	if in.IsEmergency != nil {
		hc.IsEmergency = *in.IsEmergency
	}
	if in.HasAmbulance != nil {
		hc.HasAmbulance = *in.HasAmbulance
	}
	if in.HasPharmacy != nil {
		hc.HasPharmacy = *in.HasPharmacy
	}
	if in.HasLab != nil {
		hc.HasLab = *in.HasLab
	}
	return hc
}

func validateCenter(hc *HealthCenter) error {
	if hc.Name == "" {
		return apperrors.Validation("name", "name is required")
	}
	if hc.Address == "" {
		return apperrors.Validation("address", "address is required")
	}
	if hc.City == "" {
		return apperrors.Validation("city", "city is required")
	}
	return nil
}

// RegisterHospital creates a staff account and its health center in one
// transaction, then announces the new center to the directory.
func (s *Service) RegisterHospital(ctx context.Context, in RegisterHospitalInput) (*HealthCenter, uuid.UUID, error) {
	hc := in.center()
	if err := validateCenter(hc); err != nil {
		return nil, uuid.Nil, err
	}

	exists, err := s.repo.ExistsByNameAddress(ctx, hc.Name, hc.Address)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if exists {
		return nil, uuid.Nil, apperrors.Conflict("a health center with this name and address already exists")
	}

	contactName := strings.TrimSpace(in.ContactName)
	if contactName == "" {
		contactName = hc.Name
	}

	var ownerID uuid.UUID
	register := func(ctx context.Context) error {
		ownerID, err = s.accounts.RegisterStaff(ctx, in.Email, in.Password, contactName)
		if err != nil {
			return err
		}
		hc.OwnerAccountID = &ownerID
		if err := s.repo.Create(ctx, hc); err != nil {
			return err
		}
		return s.accounts.SetHealthCenter(ctx, ownerID, hc.ID)
	}
	if s.pool != nil {
		err = db.WithTx(ctx, s.pool, register)
	} else {
		err = register(ctx)
	}
	if err != nil {
		return nil, uuid.Nil, err
	}

	s.announceNewCenter(ctx, ownerID, hc)

	return hc, ownerID, nil
}

// CreateOwned creates a center owned by an existing staff account.
func (s *Service) CreateOwned(ctx context.Context, ownerID uuid.UUID, hc *HealthCenter) error {
	if hc.Country == "" {
		hc.Country = defaultCountry
	}
	if err := validateCenter(hc); err != nil {
		return err
	}

	exists, err := s.repo.ExistsByNameAddress(ctx, hc.Name, hc.Address)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Conflict("a health center with this name and address already exists")
	}

	hc.OwnerAccountID = &ownerID
	create := func(ctx context.Context) error {
		if err := s.repo.Create(ctx, hc); err != nil {
			return err
		}
		return s.accounts.SetHealthCenter(ctx, ownerID, hc.ID)
	}
	if s.pool != nil {
		err = db.WithTx(ctx, s.pool, create)
	} else {
		err = create(ctx)
	}
	if err != nil {
		return err
	}

	s.announceNewCenter(ctx, ownerID, hc)
	return nil
}

// announceNewCenter fans the new_center notification out to the owner and
// all active staff. Dispatch failures are logged, not returned: the center
// registration already committed.
func (s *Service) announceNewCenter(ctx context.Context, ownerID uuid.UUID, hc *HealthCenter) {
	_, err := s.notifier.NotifyUserAndStaff(ctx, ownerID,
		"New Health Center Registered",
		fmt.Sprintf("%s in %s has joined the directory", hc.Name, hc.City),
		notification.TypeNewCenter,
		map[string]interface{}{"hospital": hc.Name, "city": hc.City})
	if err != nil {
		s.logger.Error().Err(err).
			Str("health_center_id", hc.ID.String()).
			Msg("new center notification dispatch failed")
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*HealthCenter, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByOwner(ctx context.Context, ownerAccountID uuid.UUID) (*HealthCenter, error) {
	return s.repo.GetByOwner(ctx, ownerAccountID)
}

// CenterName resolves a center's display name. Used when composing
// appointment notifications.
func (s *Service) CenterName(ctx context.Context, id uuid.UUID) (string, error) {
	hc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return hc.Name, nil
}

func (s *Service) Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*HealthCenter, int, error) {
	return s.repo.Search(ctx, filter, limit, offset)
}

func (s *Service) Districts(ctx context.Context) ([]string, error) {
	return s.repo.Districts(ctx)
}

// Update applies changes to a center. Only the owning staff account may
// update its own center; everyone else gets Forbidden.
func (s *Service) Update(ctx context.Context, actorID uuid.UUID, isStaff bool, hc *HealthCenter) (*HealthCenter, error) {
	existing, err := s.repo.GetByID(ctx, hc.ID)
	if err != nil {
		return nil, err
	}
	if !isStaff || existing.OwnerAccountID == nil || *existing.OwnerAccountID != actorID {
		return nil, apperrors.Forbidden("only the owning account may update this health center")
	}

	if hc.Country == "" {
		hc.Country = existing.Country
	}
	if err := validateCenter(hc); err != nil {
		return nil, err
	}
	hc.OwnerAccountID = existing.OwnerAccountID
	if err := s.repo.Update(ctx, hc); err != nil {
		return nil, err
	}

	_, err = s.notifier.NotifyAllStaff(ctx,
		"Facility Updated",
		fmt.Sprintf("%s updated its directory entry", hc.Name),
		notification.TypeFacilityUpdate,
		map[string]interface{}{"hospital": hc.Name})
	if err != nil {
		s.logger.Error().Err(err).
			Str("health_center_id", hc.ID.String()).
			Msg("facility update notification dispatch failed")
	}

	return s.repo.GetByID(ctx, hc.ID)
}

// Dashboard aggregates the staff caller's own center with its appointment
// counts by status.
type Dashboard struct {
	Center            *HealthCenter  `json:"center"`
	AppointmentCounts map[string]int `json:"appointment_counts"`
	TotalAppointments int            `json:"total_appointments"`
}

func (s *Service) GetDashboard(ctx context.Context, actorID uuid.UUID, isStaff bool) (*Dashboard, error) {
	if !isStaff {
		return nil, apperrors.Forbidden("staff account required")
	}
	hc, err := s.repo.GetByOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	counts, err := s.counter.CountByStatus(ctx, hc.ID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return &Dashboard{Center: hc, AppointmentCounts: counts, TotalAppointments: total}, nil
}
