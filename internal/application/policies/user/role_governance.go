package policies

import (
	"context"
	"errors"

	"multinvest-backend/internal/constants"
	"multinvest-backend/internal/domain"

	"gorm.io/gorm"
)

type ValidateRoleAssignmentParams struct {
	ActorUserID  string
	TargetUserID string
	TargetRole   string
}

// ValidateRoleAssignment checks an admin's request to change another user's role.
// Returns the target on success. Pass the transaction when the change follows.
func ValidateRoleAssignment(ctx context.Context, db *gorm.DB, params ValidateRoleAssignmentParams) (*domain.User, error) {
	if !constants.IsValidRole(params.TargetRole) {
		return nil, ErrInvalidRole
	}
	if params.ActorUserID == params.TargetUserID {
		return nil, ErrUsersCannotModifyTheirOwnRole
	}
	var target domain.User
	if err := db.WithContext(ctx).Where("user_id = ?", params.TargetUserID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetUserNotFound
		}
		return nil, err
	}
	// last admin cannot be demoted
	if target.IsAdmin && params.TargetRole != constants.Admin {
		var count int64
		if err := db.WithContext(ctx).Model(&domain.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
			return nil, err
		}
		if count <= 1 {
			return nil, ErrPlatformMustHaveAnAdmin
		}
	}
	return &target, nil
}
