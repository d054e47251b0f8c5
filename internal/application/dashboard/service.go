package dashboard

import (
	"context"

	"multinvest-backend/internal/application/investments"
	"multinvest-backend/internal/application/projection"
	"multinvest-backend/internal/application/user"
	"multinvest-backend/internal/application/withdrawals"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// returnRate is the headline return shown next to the completed total.
var returnRate = decimal.RequireFromString("1.05")

type Service struct {
	Users       *user.Service
	Investments *investments.Service
	Withdrawals *withdrawals.Service
}

type UserSummary struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	IsAdmin  bool      `json:"is_admin"`
}

// Dashboard is everything the investor dashboard renders. Money is two-decimal text.
type Dashboard struct {
	User            UserSummary                   `json:"user"`
	Balance         string                        `json:"balance"`
	Investments     []*investments.InvestmentView `json:"investments"`
	Withdrawals     []withdrawals.WithdrawalView  `json:"withdrawals"`
	CompletedTotal  string                        `json:"completed_total"`
	ProjectedReturn string                        `json:"projected_return"`
	Projection      projection.PassResult         `json:"projection"`
}

func (s *Service) Build(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	u, err := s.Users.ViewUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	invs, err := s.Investments.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views, pass, err := s.Investments.Views(ctx, invs)
	if err != nil {
		return nil, err
	}
	ws, err := s.Withdrawals.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := investments.CompletedTotal(invs)
	return &Dashboard{
		User: UserSummary{
			UserID:   u.UserID,
			Username: u.Username,
			Email:    u.Email,
			IsAdmin:  u.IsAdmin,
		},
		Balance:         projection.Format(u.Balance),
		Investments:     views,
		Withdrawals:     ws,
		CompletedTotal:  projection.Format(total),
		ProjectedReturn: projection.Format(total.Mul(returnRate)),
		Projection:      pass,
	}, nil
}
