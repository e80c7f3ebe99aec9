package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser    = "user"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User is an identity record. Learning-domain fields (study streaks, badges,
// flashcard sets) live outside this service.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	Role         string
	CreatedAt    time.Time
}
