package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kotoba-server/internal/services"
	"kotoba-server/internal/transport/httpdto"
	"kotoba-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// The hub is the process-local push surface the service layer depends on.
var _ services.Pusher = (*Hub)(nil)

// Handler upgrades authenticated HTTP requests to websocket sessions and
// dispatches inbound event frames.
type Handler struct {
	auth          *services.AuthService
	chats         *services.ChatService
	notifications *services.NotificationService
	hub           *Hub
	log           *logger.Logger
	upgrader      websocket.Upgrader
}

func NewHandler(auth *services.AuthService, chats *services.ChatService, notifications *services.NotificationService, hub *Hub, log *logger.Logger) *Handler {
	return &Handler{
		auth:          auth,
		chats:         chats,
		notifications: notifications,
		hub:           hub,
		log:           log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect authenticates the handshake and runs the session. The token is
// verified before the upgrade: a bad token gets a 401 response and no socket
// ever exists. The identity decoded here is the only one the session trusts.
func (h *Handler) Connect(c *gin.Context) {
	claims, err := h.auth.ParseAccessToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID)
	ctx, cancel := context.WithCancel(services.WithUserContext(context.Background(), userID, claims.Role))
	defer cancel()

	h.hub.Register(client)
	h.log.Infof("ws: user %s connected", userID)

	// Subscribe to the rooms of every existing conversation. Best-effort:
	// direct participant delivery covers a failure here.
	if chatIDs, err := h.chats.ChatIDs(ctx, userID); err == nil {
		for _, id := range chatIDs {
			h.hub.JoinRoom(client, id)
		}
	} else {
		h.log.Warnf("ws: join rooms for %s: %v", userID, err)
	}

	go client.WriteLoop(ctx)
	h.sendRecentChats(ctx, client)

	h.readLoop(ctx, client)

	h.hub.Unregister(client)
	h.log.Infof("ws: user %s disconnected", userID)
}

func (h *Handler) readLoop(ctx context.Context, client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.log.Warnf("ws: user %s sent malformed frame", client.UserID)
			continue
		}
		h.dispatch(ctx, client, frame)
	}
}

// dispatch routes one inbound frame. Every handler fails soft: errors are
// logged and the session lives on, read paths answer with an empty list.
func (h *Handler) dispatch(ctx context.Context, client *Client, frame Frame) {
	switch frame.Event {
	case EventSendMessage:
		var payload sendMessagePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			h.log.Warnf("ws: user %s sent malformed sendMessage", client.UserID)
			return
		}
		receiverID, err := uuid.Parse(payload.ReceiverID)
		if err != nil {
			h.log.Warnf("ws: user %s sent invalid receiver id", client.UserID)
			return
		}
		// Sender identity comes from the connection, never the payload.
		if _, err := h.chats.SendMessage(ctx, client.UserID, receiverID, payload.Message); err != nil {
			h.log.Warnf("ws: send message from %s: %v", client.UserID, err)
		}

	case EventGetRecentChats:
		h.sendRecentChats(ctx, client)

	case EventGetNotifications:
		views, err := h.notifications.List(ctx, client.UserID)
		if err != nil {
			h.log.Errorf("ws: list notifications for %s: %v", client.UserID, err)
			views = []httpdto.NotificationView{}
		}
		if views == nil {
			views = []httpdto.NotificationView{}
		}
		_ = client.SendEvent(EventNotificationsList, views)

	default:
		h.log.Warnf("ws: user %s sent unknown event %q", client.UserID, frame.Event)
	}
}

func (h *Handler) sendRecentChats(ctx context.Context, client *Client) {
	views, err := h.chats.RecentChats(ctx, client.UserID)
	if err != nil {
		h.log.Errorf("ws: recent chats for %s: %v", client.UserID, err)
		views = []httpdto.RecentChatView{}
	}
	if views == nil {
		views = []httpdto.RecentChatView{}
	}
	_ = client.SendEvent(EventRecentChats, views)
}
