package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
)

type CreateMessageInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	UserID   *int   `json:"user_id"`
}

type MessageService interface {
	Create(ctx context.Context, input CreateMessageInput) (*models.Message, error)
	List(ctx context.Context, statusFilter *models.MessageStatus) ([]models.Message, error)
	MarkRead(ctx context.Context, id int) (*models.Message, error)
	Delete(ctx context.Context, id int) error
}

type messageService struct {
	messageRepo repositories.MessageRepository
}

func NewMessageService(messageRepo repositories.MessageRepository) MessageService {
	return &messageService{messageRepo: messageRepo}
}

func (s *messageService) Create(ctx context.Context, input CreateMessageInput) (*models.Message, error) {
	if input.Username == "" || input.Email == "" || input.Body == "" {
		return nil, fmt.Errorf("%w: username, email and body are required", ErrValidationFailed)
	}

	msg := &models.Message{
		Username: input.Username,
		Email:    input.Email,
		Subject:  input.Subject,
		Body:     input.Body,
		Status:   models.MessageUnread,
		UserID:   input.UserID,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *messageService) List(ctx context.Context, statusFilter *models.MessageStatus) ([]models.Message, error) {
	return s.messageRepo.List(ctx, statusFilter)
}

func (s *messageService) MarkRead(ctx context.Context, id int) (*models.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	if msg.Status != models.MessageRead {
		if err := s.messageRepo.UpdateStatus(ctx, id, models.MessageRead); err != nil {
			return nil, err
		}
		msg.Status = models.MessageRead
	}
	return msg, nil
}

func (s *messageService) Delete(ctx context.Context, id int) error {
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}
