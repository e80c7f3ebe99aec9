package httpdto

import "time"

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required,uuid"`
	Message    string `json:"message" binding:"required"`
}

// ChatUser is the counterpart shown on a chat row or message.
type ChatUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarURL,omitempty"`
}

// RecentChatView is one row of the recent-chats read model.
type RecentChatView struct {
	ChatID        string    `json:"chatId"`
	User          ChatUser  `json:"user"`
	Preview       string    `json:"preview"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int       `json:"unreadCount"`
}

// MessageView is a chat message as delivered to clients, both over the
// realtime channel and from the history endpoint.
type MessageView struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Sender    ChatUser  `json:"sender"`
	IsMine    bool      `json:"isMine,omitempty"`
}
