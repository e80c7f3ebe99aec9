package services

import (
	"kotoba-server/internal/transport/httpdto"

	"github.com/google/uuid"
)

// Pusher is the realtime delivery surface the services depend on. The hub
// implements it; tests substitute a recorder. All delivery is best-effort and
// at-most-once per connected recipient; durability lives in the store.
type Pusher interface {
	// DeliverMessage fans a new message out to the chat's room subscribers
	// and to any listed participant who is connected but not yet in the
	// room (a chat created by this very message).
	DeliverMessage(chatID uuid.UUID, participants []uuid.UUID, msg httpdto.MessageView)

	// PushRecentChats replaces the recipient's recent-chat list. Returns
	// false when the user has no live connection.
	PushRecentChats(userID uuid.UUID, chats []httpdto.RecentChatView) bool

	// PushNotification delivers a freshly created notification. Returns
	// false when the user has no live connection.
	PushNotification(userID uuid.UUID, n httpdto.NotificationView) bool

	IsOnline(userID uuid.UUID) bool
}
