package service

import (
	"context"

	"adspace-backend/internal/domain"
	"adspace-backend/internal/logger"
	"adspace-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc EmailService
}

func NewNotificationService(
	noteRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
) NotificationService {
	return &notificationService{
		noteRepo: noteRepo,
		userRepo: userRepo,
		emailSvc: emailSvc,
	}
}

func (s *notificationService) NotifyUsers(ctx context.Context, userIDs []string, title, body, link string) {
	for _, userID := range userIDs {
		s.deliver(ctx, &domain.Notification{
			UserID: userID,
			Title:  title,
			Body:   body,
			Link:   link,
		})
	}
}

// NotifyUsersIdempotent suppresses duplicate deliveries per recipient under
// the given dedupe base.
func (s *notificationService) NotifyUsersIdempotent(ctx context.Context, userIDs []string, title, body, link, dedupeBase string) {
	for _, userID := range userIDs {
		key := dedupeBase + ":" + userID
		s.deliver(ctx, &domain.Notification{
			UserID:    userID,
			Title:     title,
			Body:      body,
			Link:      link,
			DedupeKey: &key,
		})
	}
}

// deliver persists the notice and sends a best-effort email. Nothing here
// may fail the caller: the triggering state change already committed.
func (s *notificationService) deliver(ctx context.Context, n *domain.Notification) {
	created, err := s.noteRepo.Create(ctx, n)
	if err != nil {
		logger.Error("Failed to persist notification", "user_id", n.UserID, "title", n.Title, "error", err)
		return
	}
	if !created {
		// Duplicate under the same dedupe key; already delivered.
		return
	}

	if s.emailSvc == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, n.UserID)
	if err != nil || user.Email == "" {
		return
	}
	if err := s.emailSvc.SendNotificationEmail(ctx, user.Email, n.Title, n.Body); err != nil {
		logger.Warn("Failed to send notification email", "user_id", n.UserID, "error", err)
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}
