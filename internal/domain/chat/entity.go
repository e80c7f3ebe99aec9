package chat

import (
	"time"

	"github.com/google/uuid"
)

// Chat is a one-on-one conversation. PairKey is derived from the two
// participant ids and is unique, so at most one chat can exist for any
// unordered user pair.
type Chat struct {
	ID            uuid.UUID
	PairKey       string
	LastMessage   string
	LastMessageAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message is immutable once created. History is ordered by CreatedAt.
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	SenderID  uuid.UUID
	Body      string
	CreatedAt time.Time
}

// MessageWithSender is a history row joined with the sender's public fields.
type MessageWithSender struct {
	Message
	SenderName      string
	SenderEmail     string
	SenderAvatarURL string
}

// Summary is one recent-chat row for a given viewer. The Other* fields are
// nullable: a chat whose counterpart row is missing (deleted user, corrupt
// participant data) still produces a Summary, and the presentation layer maps
// it to an explicit unknown-participant sentinel.
type Summary struct {
	ChatID         uuid.UUID
	OtherID        *uuid.UUID
	OtherName      string
	OtherEmail     string
	OtherAvatarURL string
	LastMessage    string
	LastActivityAt time.Time
	UnreadCount    int
}

// PairKey returns the canonical key for the unordered pair {a, b}.
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as > bs {
		as, bs = bs, as
	}
	return as + ":" + bs
}
