package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Firm is an investment opportunity users can put money into.
type Firm struct {
	FirmID      uuid.UUID `gorm:"column:firm_id;type:uuid;primaryKey" json:"firm_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	ImageURL    string    `gorm:"column:image_url;type:text" json:"image_url"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Firm) TableName() string {
	return "firms"
}

func (f *Firm) BeforeCreate(tx *gorm.DB) error {
	if f.FirmID == uuid.Nil {
		f.FirmID = uuid.New()
	}
	return nil
}
