package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule errors
	ErrValidationFailed          = errors.New("validation failed")
	ErrPasswordTooShort          = errors.New("password is too short")
	ErrInvalidAmount             = errors.New("amount must be greater than zero")
	ErrSelfTransfer              = errors.New("cannot transfer funds to your own wallet")
	ErrInsufficientFunds         = errors.New("insufficient wallet balance")
	ErrTournamentNameRequired    = errors.New("tournament name is required")
	ErrTournamentInvalidMode     = errors.New("invalid tournament mode")
	ErrTournamentInvalidCapacity = errors.New("tournament max teams must be at least 1")
	ErrTournamentInvalidFee      = errors.New("tournament entry fee must not be negative")
	ErrTournamentInvalidStatus   = errors.New("invalid tournament status provided")
	ErrTournamentFull            = errors.New("tournament registration is full")
	ErrStartTimeInvalid          = errors.New("start time must be in HH:MM 24-hour format")

	// Conflict errors
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserUsernameConflict = errors.New("username is already in use")
	ErrRegistrationConflict = errors.New("player is already registered for this tournament")

	// Authentication and authorization errors
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrResetTokenInvalid      = errors.New("invalid or expired password reset token")

	// Entity-specific not-found errors
	ErrUserNotFound         = errors.New("user not found")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrMessageNotFound      = errors.New("message not found")
)
