package handler

import (
	"context"
	"net/http"
	"time"

	"kotoba-server/internal/domain/notification"
	"kotoba-server/internal/services"
	"kotoba-server/internal/transport/httpdto"
	"kotoba-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	auth          *services.AuthService
	notifications *services.NotificationService
	log           *logger.Logger
}

func NewAuthHandler(auth *services.AuthService, notifications *services.NotificationService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, notifications: notifications, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_INPUT"))
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(resp))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_INPUT"))
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyNewLogin(resp.User.ID, c.ClientIP())

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}

// notifyNewLogin records a login notification off the request path. The
// login response never waits on, or fails because of, the dispatch.
func (h *AuthHandler) notifyNewLogin(userID, ip string) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := h.notifications.Dispatch(ctx, id, services.DispatchInput{
			Title:   "New login",
			Message: "Your account was just signed in from a new session.",
			Type:    notification.TypeNewLogin,
			Data:    map[string]any{"ip": ip},
		})
		if err != nil {
			h.log.Warnf("login notification for %s: %v", userID, err)
		}
	}()
}
