package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)

// Withdrawal is a request to pay part of a user's balance out to a wallet.
type Withdrawal struct {
	WithdrawalID  uuid.UUID       `gorm:"column:withdrawal_id;type:uuid;primaryKey" json:"withdrawal_id"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	WalletAddress string          `gorm:"column:wallet_address;not null" json:"wallet_address"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(15,2);not null" json:"amount"`
	Status        string          `gorm:"column:status;type:varchar(50);not null;default:'pending'" json:"status"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}

func (w *Withdrawal) BeforeCreate(tx *gorm.DB) error {
	if w.WithdrawalID == uuid.Nil {
		w.WithdrawalID = uuid.New()
	}
	return nil
}

func CanTransitionWithdrawal(from, to string) bool {
	return from == WithdrawalPending && (to == WithdrawalApproved || to == WithdrawalRejected)
}
