package healthcenter

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// HealthCenter maps to the health_center table. Specialties and conditions
// are stored as comma separated lists.
type HealthCenter struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Description       *string    `db:"description" json:"description,omitempty"`
	Address           string     `db:"address" json:"address"`
	City              string     `db:"city" json:"city"`
	Country           string     `db:"country" json:"country"`
	Email             *string    `db:"email" json:"email,omitempty"`
	Phone             *string    `db:"phone" json:"phone,omitempty"`
	IsEmergency       bool       `db:"is_emergency" json:"is_emergency"`
	HasAmbulance      bool       `db:"has_ambulance" json:"has_ambulance"`
	HasPharmacy       bool       `db:"has_pharmacy" json:"has_pharmacy"`
	HasLab            bool       `db:"has_lab" json:"has_lab"`
	Specialties       string     `db:"specialties" json:"specialties"`
	ConditionsTreated string     `db:"conditions_treated" json:"conditions_treated"`
	OwnerAccountID    *uuid.UUID `db:"owner_account_id" json:"owner_account_id,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// SpecialtyList splits the comma separated specialties into a slice.
func (hc *HealthCenter) SpecialtyList() []string {
	return splitCSV(hc.Specialties)
}

// ConditionList splits the comma separated conditions into a slice.
func (hc *HealthCenter) ConditionList() []string {
	return splitCSV(hc.ConditionsTreated)
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SearchFilter holds directory search parameters.
type SearchFilter struct {
	Query     string
	City      string
	Emergency *bool
	Ambulance *bool
	Pharmacy  *bool
	Lab       *bool
}
