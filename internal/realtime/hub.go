package realtime

import (
	"sync"

	"kotoba-server/internal/metrics"
	"kotoba-server/internal/transport/httpdto"
	"kotoba-server/pkg/logger"

	"github.com/google/uuid"
)

// Hub owns the connected-client set, the per-chat rooms and the injected
// presence registry. It implements the services.Pusher delivery surface.
//
// All state is process-local: a deployment with more than one server process
// will show inconsistent presence. Known limitation of this design.
type Hub struct {
	mu       sync.RWMutex
	registry *Registry
	clients  map[*Client]struct{}
	rooms    map[uuid.UUID]map[*Client]struct{}
	log      *logger.Logger
}

func NewHub(registry *Registry, log *logger.Logger) *Hub {
	return &Hub{
		registry: registry,
		clients:  make(map[*Client]struct{}),
		rooms:    make(map[uuid.UUID]map[*Client]struct{}),
		log:      log,
	}
}

// Register adds an authenticated client and broadcasts the updated presence
// list to everyone.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if prev := h.registry.Put(c); prev != nil {
		// A second login evicts the old connection from presence tracking
		// without force-closing its socket.
		h.log.Infof("presence: user %s reconnected, evicting stale entry", c.UserID)
	}
	h.broadcastPresenceLocked()
	h.mu.Unlock()
	metrics.ConnectionsActive.Inc()
}

// Unregister removes the client from all rooms and, if it was still the
// user's tracked connection, from presence, then broadcasts the updated
// online list. Calling it again for the same client is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for _, chatID := range c.Rooms() {
		h.removeFromRoomLocked(c, chatID)
	}
	removed := h.registry.Remove(c)
	if removed {
		h.broadcastPresenceLocked()
	}
	close(c.Send)
	h.mu.Unlock()
	metrics.ConnectionsActive.Dec()
}

// JoinRoom subscribes the client to a chat's fan-out.
func (h *Hub) JoinRoom(c *Client, chatID uuid.UUID) {
	h.mu.Lock()
	h.addToRoomLocked(c, chatID)
	h.mu.Unlock()
}

// DeliverMessage sends the message to every room subscriber, plus directly to
// any listed participant whose connection has not joined the room yet (the
// chat may have been created by this very message). Late joiners are added to
// the room so the next message reaches them the normal way.
func (h *Hub) DeliverMessage(chatID uuid.UUID, participants []uuid.UUID, msg httpdto.MessageView) {
	frame, err := encodeFrame(EventNewMessage, msg)
	if err != nil {
		h.log.Errorf("deliver message: encode: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[chatID]
	for c := range room {
		c.SendRaw(frame)
	}
	for _, userID := range participants {
		c, ok := h.registry.Get(userID)
		if !ok {
			continue
		}
		if _, in := room[c]; in {
			continue
		}
		h.addToRoomLocked(c, chatID)
		c.SendRaw(frame)
	}
}

// PushRecentChats implements services.Pusher.
func (h *Hub) PushRecentChats(userID uuid.UUID, chats []httpdto.RecentChatView) bool {
	return h.pushToUser(userID, EventRecentChats, chats)
}

// PushNotification implements services.Pusher.
func (h *Hub) PushNotification(userID uuid.UUID, n httpdto.NotificationView) bool {
	return h.pushToUser(userID, EventNewNotification, n)
}

func (h *Hub) IsOnline(userID uuid.UUID) bool {
	_, ok := h.registry.Get(userID)
	return ok
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// pushToUser holds the hub lock across the lookup and the send. Unregister
// closes the client's Send channel under the write lock, so a push can never
// race a disconnect onto a closed channel.
func (h *Hub) pushToUser(userID uuid.UUID, event string, data any) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.registry.Get(userID)
	if !ok {
		return false
	}
	if err := c.SendEvent(event, data); err != nil {
		h.log.Errorf("push %s to %s: %v", event, userID, err)
		return false
	}
	return true
}

// broadcastPresenceLocked sends the full online-user list to every client.
// O(clients) on each connect/disconnect; fine at this scale, a known ceiling
// beyond it.
func (h *Hub) broadcastPresenceLocked() {
	frame, err := encodeFrame(EventOnlineUsers, h.registry.OnlineIDs())
	if err != nil {
		h.log.Errorf("presence broadcast: encode: %v", err)
		return
	}
	for c := range h.clients {
		c.SendRaw(frame)
	}
	metrics.PresenceBroadcasts.Inc()
}

func (h *Hub) addToRoomLocked(c *Client, chatID uuid.UUID) {
	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = make(map[*Client]struct{})
	}
	h.rooms[chatID][c] = struct{}{}
	c.joinRoom(chatID)
}

func (h *Hub) removeFromRoomLocked(c *Client, chatID uuid.UUID) {
	if subscribers, ok := h.rooms[chatID]; ok {
		delete(subscribers, c)
		if len(subscribers) == 0 {
			delete(h.rooms, chatID)
		}
	}
	c.leaveRoom(chatID)
}
