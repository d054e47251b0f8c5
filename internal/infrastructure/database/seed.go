package database

import (
	"context"
	"errors"
	"strings"

	"multinvest-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DefaultAdminEmail    = "admin@multinvest.com"
	DefaultAdminPassword = "admin123"
)

// SeedInput configures the bootstrap admin account.
type SeedInput struct {
	AdminEmail    string
	AdminPassword string
}

// DefaultFirms are inserted when the firms table is empty.
var DefaultFirms = []domain.Firm{
	{Name: "Acme Estates", Description: "Luxury villas and apartments in prime locations.", ImageURL: "https://images.unsplash.com/photo-1505691938895-1758d7feb511"},
	{Name: "BlueSky Realty", Description: "Affordable housing projects for first-time buyers.", ImageURL: "https://images.unsplash.com/photo-1494526585095-c41746248156"},
	{Name: "Summit Homes", Description: "Exclusive high-rise apartments with modern amenities.", ImageURL: "https://images.unsplash.com/photo-1568605114967-8130f3a36994"},
}

// SeedResult reports what Seed inserted.
type SeedResult struct {
	AdminCreated bool
	FirmsCreated int
}

// Seed creates the admin user and default firms if they are missing. Existing rows are left alone.
func Seed(ctx context.Context, db *gorm.DB, in SeedInput) (SeedResult, error) {
	var res SeedResult
	email := strings.ToLower(strings.TrimSpace(in.AdminEmail))
	if email == "" {
		email = DefaultAdminEmail
	}
	password := in.AdminPassword
	if password == "" {
		password = DefaultAdminPassword
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin domain.User
		err := tx.Where("email = ?", email).First(&admin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			admin = domain.User{
				Username:     "Admin",
				Email:        email,
				PasswordHash: string(hash),
				Balance:      decimal.Zero,
				IsAdmin:      true,
			}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
			res.AdminCreated = true
		} else if err != nil {
			return err
		}

		var firms int64
		if err := tx.Model(&domain.Firm{}).Count(&firms).Error; err != nil {
			return err
		}
		if firms == 0 {
			for _, f := range DefaultFirms {
				firm := f
				if err := tx.Create(&firm).Error; err != nil {
					return err
				}
				res.FirmsCreated++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	log.Info().Bool("admin_created", res.AdminCreated).Int("firms_created", res.FirmsCreated).Msg("seed complete")
	return res, nil
}
