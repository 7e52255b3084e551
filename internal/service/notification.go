package service

import (
	"context"
	"fmt"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) List(ctx context.Context, kind domain.RecipientKind, recipientID, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.noteRepo.List(ctx, kind, recipientID, pageSize, (page-1)*pageSize)
}

func (s *notificationService) MarkAsRead(ctx context.Context, kind domain.RecipientKind, recipientID, notificationID int32) error {
	if notificationID <= 0 {
		return fmt.Errorf("%w: notification id is required", domain.ErrValidation)
	}
	return s.noteRepo.MarkAsRead(ctx, notificationID, kind, recipientID)
}
