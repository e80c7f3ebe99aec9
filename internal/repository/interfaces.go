package repository

import (
	"context"
	"time"

	"kotoba-server/internal/domain/chat"
	"kotoba-server/internal/domain/notification"
	"kotoba-server/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type ChatRepository interface {
	// GetOrCreateDirect resolves the single chat for the unordered pair
	// {a, b}, creating it (with both participant rows) when absent.
	GetOrCreateDirect(ctx context.Context, a, b uuid.UUID) (chat.Chat, error)

	// AppendMessage persists a message and, in the same transaction, bumps
	// the chat's last-message summary and the other participants' unread
	// counters. The message's CreatedAt is filled in from the insert.
	AppendMessage(ctx context.Context, m *chat.Message) error

	GetMessages(ctx context.Context, chatID uuid.UUID, limit int, before *time.Time) ([]chat.MessageWithSender, error)
	GetRecentChats(ctx context.Context, userID uuid.UUID, limit int) ([]chat.Summary, error)
	GetUserChatIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}
