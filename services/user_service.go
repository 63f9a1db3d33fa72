package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/esports-arena/tournament-hub/storage"
	"github.com/google/uuid"
)

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	// UpdateStats applies organizer-driven edits to a player's won/earnings/
	// finishes/rank. The played counter is owned by the stats updater and is
	// not written here.
	UpdateStats(ctx context.Context, userID int, stats models.PlayerStats) (*models.User, error)
	UploadAvatar(ctx context.Context, userID int, contentType string, body io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader, logger *slog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.sanitize(user)
	return user, nil
}

func (s *userService) UpdateStats(ctx context.Context, userID int, stats models.PlayerStats) (*models.User, error) {
	if stats.TournamentsWon < 0 || stats.TotalEarnings < 0 || stats.TotalFinishes < 0 {
		return nil, fmt.Errorf("%w: stats values must not be negative", ErrValidationFailed)
	}

	if err := s.userRepo.UpdateStats(ctx, userID, stats); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, userID)
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, contentType string, body io.Reader) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("avatar uploads are not configured")
	}

	ext, err := storage.ExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	oldKey := user.AvatarKey
	key := fmt.Sprintf("users/%d/avatar_%s%s", userID, uuid.NewString(), ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &key); err != nil {
		return nil, err
	}

	if oldKey != nil {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous avatar",
				slog.Int("user_id", userID), slog.Any("error", delErr))
		}
	}

	user.AvatarKey = &key
	s.sanitize(user)
	return user, nil
}

func (s *userService) sanitize(user *models.User) {
	user.PasswordHash = ""
	if user.AvatarKey != nil && *user.AvatarKey != "" && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*user.AvatarKey); url != "" {
			user.AvatarURL = &url
		}
	}
}
