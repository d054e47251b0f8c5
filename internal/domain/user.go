package domain

import (
	"time"

	"multinvest-backend/internal/constants"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User is an investor or platform administrator.
type User struct {
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Username     string          `gorm:"column:username;not null" json:"username"`
	Email        string          `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string          `gorm:"column:password_hash;not null" json:"-"`
	Balance      decimal.Decimal `gorm:"column:balance;type:decimal(15,2);not null" json:"balance"`
	IsAdmin      bool            `gorm:"column:is_admin;not null" json:"is_admin"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

// Role is the session role derived from IsAdmin.
func (u *User) Role() string {
	return constants.RoleFor(u.IsAdmin)
}
