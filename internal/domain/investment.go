package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InvestmentPending   = "pending"
	InvestmentCompleted = "completed"
	InvestmentRejected  = "rejected"
)

// Investment is money a user sent to a firm, identified by the transfer's transaction id.
// It starts pending; an admin confirms it (completed) or rejects it.
type Investment struct {
	InvestmentID  uuid.UUID       `gorm:"column:investment_id;type:uuid;primaryKey" json:"investment_id"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	FirmID        *uuid.UUID      `gorm:"column:firm_id;type:uuid" json:"firm_id"`
	TransactionID string          `gorm:"column:transaction_id;not null" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(15,2);not null" json:"amount"`
	Status        string          `gorm:"column:status;type:varchar(50);not null;default:'pending'" json:"status"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Investment) TableName() string {
	return "investments"
}

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.InvestmentID == uuid.Nil {
		i.InvestmentID = uuid.New()
	}
	return nil
}

// CanTransitionInvestment reports whether an investment in status from may move to status to.
func CanTransitionInvestment(from, to string) bool {
	return from == InvestmentPending && (to == InvestmentCompleted || to == InvestmentRejected)
}
