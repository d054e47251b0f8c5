package investments

import (
	"context"
	"errors"
	"strings"
	"time"

	"multinvest-backend/internal/application/emails"
	"multinvest-backend/internal/application/projection"
	"multinvest-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrMissingFields      = errors.New("Please complete all fields for investment.")
	ErrInvalidAmount      = errors.New("Invalid amount.")
	ErrInvalidFirm        = errors.New("Invalid firm")
	ErrFirmNotFound       = errors.New("Firm not found")
	ErrInvestmentNotFound = errors.New("Investment not found")
	ErrInvalidStatus      = errors.New("Status must be completed or rejected")
	ErrInvalidTransition  = errors.New("Only pending investments can change status")
)

// maxAmount is the largest value a decimal(15,2) column holds.
var maxAmount = decimal.RequireFromString("9999999999999.99")

type Service struct {
	DB        *gorm.DB
	Projector *projection.Calculator
	Email     emails.Sender
}

// CreateInput is the invest form. Amount is the decimal text as submitted.
type CreateInput struct {
	FirmID        string `json:"firm_id"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
}

// InvestmentView is an investment as shown to its owner, with the firm name and
// the projected value filled in by the row pass.
type InvestmentView struct {
	InvestmentID   uuid.UUID  `json:"investment_id"`
	UserID         uuid.UUID  `json:"user_id"`
	FirmID         *uuid.UUID `json:"firm_id"`
	FirmName       string     `json:"firm_name"`
	TransactionID  string     `json:"transaction_id"`
	Amount         string     `json:"amount"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ProjectedValue string     `json:"projected_value"`
}

// SetText receives the projected value.
func (v *InvestmentView) SetText(text string) { v.ProjectedValue = text }

// ParseAmount reads a positive amount with at most 13 integer digits, rounded to cents.
func ParseAmount(text string) (decimal.Decimal, error) {
	d, err := projection.ParseAmount(text)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() || d.GreaterThan(maxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Create records a pending investment and its CREATED event.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*domain.Investment, error) {
	firmText := strings.TrimSpace(in.FirmID)
	txID := strings.TrimSpace(in.TransactionID)
	if firmText == "" || txID == "" || strings.TrimSpace(in.Amount) == "" {
		return nil, ErrMissingFields
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	firmID, err := uuid.Parse(firmText)
	if err != nil {
		return nil, ErrInvalidFirm
	}

	inv := &domain.Investment{
		UserID:        userID,
		FirmID:        &firmID,
		TransactionID: txID,
		Amount:        amount,
		Status:        domain.InvestmentPending,
		CreatedAt:     time.Now().UTC(),
	}
	var firm domain.Firm
	var owner domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("firm_id = ?", firmID).First(&firm).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFirmNotFound
			}
			return err
		}
		if err := tx.Where("user_id = ?", userID).First(&owner).Error; err != nil {
			return err
		}
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		ev, err := domain.NewEvent(domain.EntityInvestment, inv.InvestmentID, domain.EventCreated, &userID, map[string]interface{}{
			"firm_id":        firmID.String(),
			"transaction_id": txID,
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

	if s.Email != nil {
		if err := s.Email.SendInvestmentReceived(ctx, owner.Email, owner.Username, firm.Name, projection.Format(amount), txID); err != nil {
			log.Warn().Err(err).Str("investment_id", inv.InvestmentID.String()).Msg("investment email failed")
		}
	}
	return inv, nil
}

// ForUser returns a user's investments, newest first.
func (s *Service) ForUser(ctx context.Context, userID uuid.UUID) ([]domain.Investment, error) {
	invs := []domain.Investment{}
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}

// ListForUser returns the user's investments as views with projected values.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*InvestmentView, projection.PassResult, error) {
	invs, err := s.ForUser(ctx, userID)
	if err != nil {
		return nil, projection.PassResult{}, err
	}
	return s.Views(ctx, invs)
}

// ListAll returns every investment, optionally filtered by status, for admins.
func (s *Service) ListAll(ctx context.Context, status string) ([]*InvestmentView, projection.PassResult, error) {
	q := s.DB.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	invs := []domain.Investment{}
	if err := q.Find(&invs).Error; err != nil {
		return nil, projection.PassResult{}, err
	}
	return s.Views(ctx, invs)
}

// Views resolves firm names and runs one projection pass over the rows.
func (s *Service) Views(ctx context.Context, invs []domain.Investment) ([]*InvestmentView, projection.PassResult, error) {
	firmIDs := map[uuid.UUID]bool{}
	for _, inv := range invs {
		if inv.FirmID != nil {
			firmIDs[*inv.FirmID] = true
		}
	}
	names := map[uuid.UUID]string{}
	if len(firmIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(firmIDs))
		for id := range firmIDs {
			ids = append(ids, id)
		}
		var firms []domain.Firm
		if err := s.DB.WithContext(ctx).Where("firm_id IN ?", ids).Select("firm_id, name").Find(&firms).Error; err != nil {
			return nil, projection.PassResult{}, err
		}
		for _, f := range firms {
			names[f.FirmID] = f.Name
		}
	}

	views := make([]*InvestmentView, len(invs))
	rows := make([]projection.Row, len(invs))
	for i, inv := range invs {
		v := &InvestmentView{
			InvestmentID:  inv.InvestmentID,
			UserID:        inv.UserID,
			FirmID:        inv.FirmID,
			TransactionID: inv.TransactionID,
			Amount:        projection.Format(inv.Amount),
			Status:        inv.Status,
			CreatedAt:     inv.CreatedAt.UTC(),
		}
		if inv.FirmID != nil {
			v.FirmName = names[*inv.FirmID]
		}
		views[i] = v
		rows[i] = projection.Row{
			Amount:    inv.Amount.String(),
			CreatedAt: v.CreatedAt.Format(time.RFC3339Nano),
			Status:    inv.Status,
			Slot:      v,
		}
	}
	return views, s.Projector.ApplyRows(rows), nil
}

// UpdateStatus moves a pending investment to completed or rejected and records
// a STATUS_CHANGED event in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, actor, investmentID uuid.UUID, status string) (*domain.Investment, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != domain.InvestmentCompleted && status != domain.InvestmentRejected {
		return nil, ErrInvalidStatus
	}
	var inv domain.Investment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("investment_id = ?", investmentID).First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvestmentNotFound
			}
			return err
		}
		if !domain.CanTransitionInvestment(inv.Status, status) {
			return ErrInvalidTransition
		}
		from := inv.Status
		res := tx.Model(&domain.Investment{}).
			Where("investment_id = ? AND status = ?", investmentID, from).
			Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		ev, err := domain.NewEvent(domain.EntityInvestment, investmentID, domain.EventStatusChanged, &actor, map[string]interface{}{
			"from": from,
			"to":   status,
		})
		if err != nil {
			return err
		}
		if err := tx.Create(ev).Error; err != nil {
			return err
		}
		inv.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CompletedTotal sums the amounts of completed investments.
func CompletedTotal(invs []domain.Investment) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invs {
		if inv.Status == domain.InvestmentCompleted {
			total = total.Add(inv.Amount)
		}
	}
	return total
}
