package policies

import "errors"

var (
	ErrInvalidRole                   = errors.New("Role must be investor or admin")
	ErrTargetUserNotFound            = errors.New("Target user not found")
	ErrUsersCannotModifyTheirOwnRole = errors.New("Users cannot modify their own role")
	ErrPlatformMustHaveAnAdmin       = errors.New("The platform must have at least one admin")
)
