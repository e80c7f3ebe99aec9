package handler

import (
	"net/http"

	"kotoba-server/internal/repository"
	"kotoba-server/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the contact list the chat UI picks recipients from.
type UserHandler struct {
	users repository.UserRepository
}

func NewUserHandler(users repository.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]httpdto.UserInfo, 0, len(users))
	for _, u := range users {
		views = append(views, httpdto.UserInfo{
			ID:        u.ID.String(),
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
		})
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(views))
}
