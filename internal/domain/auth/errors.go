package auth

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrInviteInvalid    = errors.New("invite token is invalid or expired")
	ErrResetInvalid     = errors.New("reset token is invalid or expired")
	ErrEmployeeNotFound = errors.New("employee not found in this organization")
)
