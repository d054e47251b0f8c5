package withdrawals

import (
	"context"
	"errors"
	"strings"
	"time"

	"multinvest-backend/internal/application/projection"
	"multinvest-backend/internal/domain"
	"multinvest-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrMissingFields       = errors.New("Wallet address and amount are required")
	ErrInvalidWallet       = errors.New("Invalid wallet address")
	ErrInvalidAmount       = errors.New("Invalid amount.")
	ErrInsufficientBalance = errors.New("Insufficient balance")
	ErrWithdrawalNotFound  = errors.New("Withdrawal not found")
	ErrInvalidStatus       = errors.New("Status must be approved or rejected")
	ErrInvalidTransition   = errors.New("Only pending withdrawals can change status")
	ErrUserNotFound        = errors.New("User not found")
)

type Service struct {
	DB *gorm.DB
}

// RequestInput is the withdrawal form. Amount is the decimal text as submitted.
type RequestInput struct {
	WalletAddress string `json:"wallet_address"`
	Amount        string `json:"amount"`
}

// WithdrawalView renders amounts with two decimals.
type WithdrawalView struct {
	WithdrawalID  uuid.UUID `json:"withdrawal_id"`
	UserID        uuid.UUID `json:"user_id"`
	WalletAddress string    `json:"wallet_address"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func ToView(w domain.Withdrawal) WithdrawalView {
	return WithdrawalView{
		WithdrawalID:  w.WithdrawalID,
		UserID:        w.UserID,
		WalletAddress: w.WalletAddress,
		Amount:        projection.Format(w.Amount),
		Status:        w.Status,
		CreatedAt:     w.CreatedAt.UTC(),
	}
}

func toViews(ws []domain.Withdrawal) []WithdrawalView {
	out := make([]WithdrawalView, len(ws))
	for i, w := range ws {
		out[i] = ToView(w)
	}
	return out
}

// Request records a pending withdrawal. The amount plus every other pending
// withdrawal of the user must fit in the current balance.
func (s *Service) Request(ctx context.Context, userID uuid.UUID, in RequestInput) (*domain.Withdrawal, error) {
	wallet := strings.TrimSpace(in.WalletAddress)
	if wallet == "" || strings.TrimSpace(in.Amount) == "" {
		return nil, ErrMissingFields
	}
	if !validation.IsValidWalletAddress(wallet) {
		return nil, ErrInvalidWallet
	}
	amount, err := projection.ParseAmount(in.Amount)
	if err != nil || !amount.Round(2).IsPositive() {
		return nil, ErrInvalidAmount
	}
	amount = amount.Round(2)

	w := &domain.Withdrawal{
		UserID:        userID,
		WalletAddress: wallet,
		Amount:        amount,
		Status:        domain.WithdrawalPending,
		CreatedAt:     time.Now().UTC(),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.Where("user_id = ?", userID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		var pending []domain.Withdrawal
		if err := tx.Where("user_id = ? AND status = ?", userID, domain.WithdrawalPending).Find(&pending).Error; err != nil {
			return err
		}
		reserved := decimal.Zero
		for _, p := range pending {
			reserved = reserved.Add(p.Amount)
		}
		if reserved.Add(amount).GreaterThan(u.Balance) {
			return ErrInsufficientBalance
		}
		if err := tx.Create(w).Error; err != nil {
			return err
		}
		ev, err := domain.NewEvent(domain.EntityWithdrawal, w.WithdrawalID, domain.EventCreated, &userID, map[string]interface{}{
			"wallet_address": wallet,
			"amount":         projection.Format(amount),
		})
		if err != nil {
			return err
		}
		return tx.Create(ev).Error
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListForUser returns a user's withdrawals, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]WithdrawalView, error) {
	ws := []domain.Withdrawal{}
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&ws).Error; err != nil {
		return nil, err
	}
	return toViews(ws), nil
}

// ListAll returns every withdrawal, optionally filtered by status.
func (s *Service) ListAll(ctx context.Context, status string) ([]WithdrawalView, error) {
	q := s.DB.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	ws := []domain.Withdrawal{}
	if err := q.Find(&ws).Error; err != nil {
		return nil, err
	}
	return toViews(ws), nil
}

// UpdateStatus approves or rejects a pending withdrawal. Approval debits the
// user's balance in the same transaction, re-checking that it covers the amount.
func (s *Service) UpdateStatus(ctx context.Context, actor, withdrawalID uuid.UUID, status string) (*domain.Withdrawal, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != domain.WithdrawalApproved && status != domain.WithdrawalRejected {
		return nil, ErrInvalidStatus
	}
	var w domain.Withdrawal
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("withdrawal_id = ?", withdrawalID).First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return err
		}
		if !domain.CanTransitionWithdrawal(w.Status, status) {
			return ErrInvalidTransition
		}
		from := w.Status
		if status == domain.WithdrawalApproved {
			res := tx.Model(&domain.User{}).
				Where("user_id = ? AND balance >= ?", w.UserID, w.Amount).
				Update("balance", gorm.Expr("balance - ?", w.Amount))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientBalance
			}
		}
		res := tx.Model(&domain.Withdrawal{}).
			Where("withdrawal_id = ? AND status = ?", withdrawalID, from).
			Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		ev, err := domain.NewEvent(domain.EntityWithdrawal, withdrawalID, domain.EventStatusChanged, &actor, map[string]interface{}{
			"from":   from,
			"to":     status,
			"amount": projection.Format(w.Amount),
		})
		if err != nil {
			return err
		}
		if err := tx.Create(ev).Error; err != nil {
			return err
		}
		w.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}
