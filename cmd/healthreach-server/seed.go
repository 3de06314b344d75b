package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/healthreach/healthreach/internal/domain/account"
	"github.com/healthreach/healthreach/internal/domain/healthcenter"
	"github.com/healthreach/healthreach/internal/platform/apperrors"
)

// runSeed loads demo data: a regular user plus a couple of hospitals with
// their staff accounts. Existing rows are skipped so the command can be
// re-run safely.
func runSeed(ctx context.Context, app *app, logger zerolog.Logger) error {
	demoUser := account.RegisterInput{
		Email:    "amina@example.com",
		Password: "changeme123",
		Name:     "Amina Okello",
	}
	if _, err := app.accounts.Register(ctx, demoUser); err != nil {
		if !apperrors.IsConflict(err) {
			return err
		}
		logger.Info().Str("email", demoUser.Email).Msg("user already exists, skipping")
	} else {
		logger.Info().Str("email", demoUser.Email).Msg("seeded demo user")
	}

	hospitals := []healthcenter.RegisterHospitalInput{
		{
			Email:             "admin@mulago.example.com",
			Password:          "changeme123",
			ContactName:       "Mulago Admin",
			Name:              "Mulago National Referral Hospital",
			Address:           "Upper Mulago Hill Road",
			City:              "Kampala",
			Phone:             "+256414554001",
			Specialties:       "cardiology, oncology, pediatrics",
			ConditionsTreated: "malaria, tuberculosis, diabetes",
		},
		{
			Email:             "admin@gulu.example.com",
			Password:          "changeme123",
			ContactName:       "Gulu Admin",
			Name:              "Gulu Regional Referral Hospital",
			Address:           "Gulu-Kampala Road",
			City:              "Gulu",
			Phone:             "+256471432002",
			Specialties:       "surgery, maternity",
			ConditionsTreated: "malaria, hypertension",
		},
	}

	for _, in := range hospitals {
		if _, _, err := app.centers.RegisterHospital(ctx, in); err != nil {
			if !apperrors.IsConflict(err) {
				return err
			}
			logger.Info().Str("name", in.Name).Msg("health center already exists, skipping")
			continue
		}
		logger.Info().Str("name", in.Name).Msg("seeded health center")
	}

	logger.Info().Msg("seed complete")
	return nil
}
