package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/repository"
)

// seedDatabase inserts the pilot accounts on an empty database. A non-empty
// users table makes this a no-op, so restarts never duplicate records.
func seedDatabase(ctx context.Context, users *repository.UserRepository, activity *repository.ActivityRepository, logr *zap.Logger) error {
	count, err := users.CountAll(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	available := true

	seeds := []models.User{
		{
			ID:           uuid.NewString(),
			Name:         "Portal Admin",
			Email:        "admin@wasteup.ng",
			PasswordHash: string(hash),
			Phone:        "+2348000000001",
			Role:         models.RoleAdmin,
			Zone:         "Bodija",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           uuid.NewString(),
			Name:         "CleanOyo Services",
			Email:        "ops@cleanoyo.ng",
			PasswordHash: string(hash),
			Phone:        "+2348000000002",
			Role:         models.RolePSPOperator,
			Zone:         "Bodija",
			Availability: &available,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           uuid.NewString(),
			Name:         "Ayo Balogun",
			Email:        "ayo@example.com",
			PasswordHash: string(hash),
			Phone:        "+2348000000003",
			Role:         models.RoleResident,
			Zone:         "Bodija",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	for i := range seeds {
		if err := users.Create(ctx, &seeds[i]); err != nil {
			return err
		}
	}

	// Resident prefers the pilot operator in their zone.
	resident := &seeds[2]
	resident.PreferredOperatorID = &seeds[1].ID
	if err := users.UpdateProfile(ctx, resident); err != nil {
		return err
	}

	log := &models.ActivityLog{
		ID:        uuid.NewString(),
		UserID:    seeds[0].ID,
		Action:    models.ActivityDatabaseSeed,
		Details:   "Pilot accounts created for Bodija zone.",
		Timestamp: now,
	}
	if err := activity.Append(ctx, log); err != nil {
		logr.Warn("failed to record seed activity", zap.Error(err))
	}

	logr.Sugar().Infow("database seeded", "accounts", len(seeds))
	return nil
}
