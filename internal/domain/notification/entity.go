package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification types mirror the mobile client's switch on the "type" field.
const (
	TypeProfileUpdate    = "profile_update"
	TypeFlashcardCreated = "flashcard_created"
	TypeNewLogin         = "new_login"
	TypeComment          = "comment"
	TypeExamReady        = "exam_ready"
	TypeSystem           = "system"
)

// Notification targets a single user. Read is the only mutable field.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Message   string
	Type      string
	Data      map[string]any
	Read      bool
	CreatedAt time.Time
}
