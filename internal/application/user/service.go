package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"multinvest-backend/internal/application/emails"
	policies "multinvest-backend/internal/application/policies/user"
	"multinvest-backend/internal/constants"
	"multinvest-backend/internal/domain"
	"multinvest-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAllFieldsRequired = errors.New("All fields are required.")
	ErrInvalidEmail      = errors.New("Invalid email address.")
	ErrInvalidUsername   = errors.New("Username must be 3-50 characters: letters, digits, '.', '_' or '-'.")
	ErrWeakPassword      = errors.New("Password must be at least 8 characters long and contain uppercase, lowercase, and digits.")
	ErrPasswordMismatch  = errors.New("Passwords do not match.")
	ErrEmailRegistered   = errors.New("Email already registered.")
	ErrUserNotFound      = errors.New("User not found")
	ErrInvalidAmount     = errors.New("Invalid amount.")
	ErrNegativeBalance   = errors.New("Balance cannot go below zero")
)

// Service holds DB and the optional mailer for user operations.
type Service struct {
	DB    *gorm.DB
	Email emails.Sender
}

// SignupInput is the signup form.
type SignupInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
}

// Signup validates the form, stores the user with a bcrypt hash and sends the welcome email.
// A failed email is logged, not returned.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" || in.Confirm == "" {
		return nil, ErrAllFieldsRequired
	}
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if !validation.IsStrongPassword(in.Password) {
		return nil, ErrWeakPassword
	}
	if in.Password != in.Confirm {
		return nil, ErrPasswordMismatch
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Balance:      decimal.Zero,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		// lost a race with a concurrent signup on the unique index
		if isDuplicate(err) {
			return nil, ErrEmailRegistered
		}
		return nil, err
	}

	if s.Email != nil {
		if err := s.Email.SendWelcome(ctx, u.Email, u.Username); err != nil {
			log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("welcome email failed")
		}
	}
	return u, nil
}

// ViewUser loads one user by id.
func (s *Service) ViewUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// AdjustBalance adds delta (negative to debit) to a user's balance and records a
// BALANCE_ADJUSTED event in the same transaction.
func (s *Service) AdjustBalance(ctx context.Context, actor, userID uuid.UUID, delta decimal.Decimal, note string) (*domain.User, error) {
	delta = delta.Round(2)
	if delta.IsZero() {
		return nil, ErrInvalidAmount
	}
	var out domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		before := out.Balance
		after := before.Add(delta)
		if after.IsNegative() {
			return ErrNegativeBalance
		}
		// conditional update so a concurrent debit cannot push the balance below zero
		res := tx.Model(&domain.User{}).
			Where("user_id = ? AND balance + ? >= 0", userID, delta).
			Update("balance", gorm.Expr("balance + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNegativeBalance
		}
		ev, err := domain.NewEvent(domain.EntityUser, userID, domain.EventBalanceAdjusted, &actor, map[string]interface{}{
			"delta":          delta.StringFixed(2),
			"balance_before": before.StringFixed(2),
			"balance_after":  after.StringFixed(2),
			"note":           note,
		})
		if err != nil {
			return err
		}
		if err := tx.Create(ev).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetRole makes a user an admin or an investor, subject to the role governance
// rules, and records a ROLE_CHANGED event. Callers should drop the target's
// sessions afterwards so the new role takes effect.
func (s *Service) SetRole(ctx context.Context, actor, userID uuid.UUID, role string) (*domain.User, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	var out *domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, err := policies.ValidateRoleAssignment(ctx, tx, policies.ValidateRoleAssignmentParams{
			ActorUserID:  actor.String(),
			TargetUserID: userID.String(),
			TargetRole:   role,
		})
		if err != nil {
			return err
		}
		from := target.Role()
		isAdmin := role == constants.Admin
		if err := tx.Model(&domain.User{}).Where("user_id = ?", userID).Update("is_admin", isAdmin).Error; err != nil {
			return err
		}
		ev, err := domain.NewEvent(domain.EntityUser, userID, domain.EventRoleChanged, &actor, map[string]interface{}{
			"from": from,
			"to":   role,
		})
		if err != nil {
			return err
		}
		if err := tx.Create(ev).Error; err != nil {
			return err
		}
		target.IsAdmin = isAdmin
		out = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// ParseUserID parses a path or session user id.
func ParseUserID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q: %w", s, err)
	}
	return id, nil
}
