package services

import (
	"context"
	"strings"
	"time"

	"kotoba-server/internal/domain/notification"
	"kotoba-server/internal/repository"
	"kotoba-server/internal/transport/httpdto"
	kotoba_errors "kotoba-server/pkg/errors"
	"kotoba-server/pkg/logger"

	"github.com/google/uuid"
)

const notificationPageSize = 50

type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	pusher        Pusher
	log           *logger.Logger
}

func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository, pusher Pusher, log *logger.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, users: users, pusher: pusher, log: log}
}

type DispatchInput struct {
	Title   string
	Message string
	Type    string
	Data    map[string]any
}

// Dispatch persists one notification row and, if the target currently has a
// live connection, pushes it immediately. No receipt, no retry: a dropped
// push is collected on the user's next pull.
func (s *NotificationService) Dispatch(ctx context.Context, userID uuid.UUID, in DispatchInput) (notification.Notification, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if in.Title == "" || in.Message == "" {
		return notification.Notification{}, kotoba_errors.ErrInvalidInput
	}
	if in.Type == "" {
		in.Type = notification.TypeSystem
	}

	n := &notification.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   in.Title,
		Message: in.Message,
		Type:    in.Type,
		Data:    in.Data,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return notification.Notification{}, err
	}

	s.pusher.PushNotification(userID, toNotificationView(*n, time.Now()))
	return *n, nil
}

// Broadcast dispatches the same notification to every user. Per-user failures
// are logged and skipped; the count of successful dispatches is returned.
func (s *NotificationService) Broadcast(ctx context.Context, in DispatchInput) (int, error) {
	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, id := range ids {
		if _, err := s.Dispatch(ctx, id, in); err != nil {
			s.log.Warnf("broadcast notification to %s: %v", id, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// List returns the user's feed, newest first, capped at one page.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]httpdto.NotificationView, error) {
	rows, err := s.notifications.ListByUser(ctx, userID, notificationPageSize)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]httpdto.NotificationView, 0, len(rows))
	for _, n := range rows {
		views = append(views, toNotificationView(n, now))
	}
	return views, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	return s.notifications.MarkRead(ctx, userID, ids)
}

func toNotificationView(n notification.Notification, now time.Time) httpdto.NotificationView {
	data := n.Data
	if data == nil {
		data = map[string]any{}
	}
	return httpdto.NotificationView{
		ID:        n.ID.String(),
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Data:      data,
		Read:      n.Read,
		Time:      timeAgo(n.CreatedAt, now),
		CreatedAt: n.CreatedAt,
	}
}
