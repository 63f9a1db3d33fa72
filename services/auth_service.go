package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	resetTokenTTL     = 10 * time.Minute
)

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, input SignupInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	GeneratePasswordResetToken(ctx context.Context, email string) (string, error)
	ResetPasswordByToken(ctx context.Context, token, newPassword string) error
}

type authService struct {
	userRepo  repositories.UserRepository
	resetRepo repositories.PasswordResetRepository
}

func NewAuthService(userRepo repositories.UserRepository, resetRepo repositories.PasswordResetRepository) AuthService {
	return &authService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
	}
}

func (s *authService) Register(ctx context.Context, input SignupInput) (*models.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RolePlayer,
		Active:       true,
		Stats:        models.PlayerStats{Rank: "Unranked"},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		case errors.Is(err, repositories.ErrUserUsernameConflict):
			return nil, ErrUserUsernameConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if !user.Active {
		return nil, ErrAuthInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// GeneratePasswordResetToken issues a persisted single-use token. An empty
// token is returned for unknown emails so callers cannot probe registration.
func (s *authService) GeneratePasswordResetToken(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}

	// Invalidate any outstanding tokens before issuing a new one.
	if err := s.resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return "", err
	}

	token := &models.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetRepo.Create(ctx, token); err != nil {
		return "", err
	}
	return token.Token, nil
}

func (s *authService) ResetPasswordByToken(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	reset, err := s.resetRepo.GetValid(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, repositories.ErrResetTokenNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	user, err := s.userRepo.GetByID(ctx, reset.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}
	return s.resetRepo.Delete(ctx, token)
}
