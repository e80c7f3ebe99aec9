package realtime

import "encoding/json"

// Event names on the wire. Client to server:
const (
	EventGetRecentChats   = "getRecentChats"
	EventGetNotifications = "getNotifications"
	EventSendMessage      = "sendMessage"
)

// Server to client:
const (
	EventOnlineUsers       = "onlineUsers"
	EventRecentChats       = "recentChats"
	EventNotificationsList = "notificationsList"
	EventNewMessage        = "newMessage"
	EventNewNotification   = "newNotification"
)

// Frame is the JSON envelope carried in each websocket text message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type sendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

func encodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
