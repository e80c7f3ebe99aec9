package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"kotoba-server/internal/domain/chat"
	"kotoba-server/internal/domain/notification"
	"kotoba-server/internal/services"
	"kotoba-server/internal/transport/httpdto"
	"kotoba-server/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// brokenChatRepo fails every read so the fail-soft paths can be observed.
type brokenChatRepo struct{}

var errStoreDown = errors.New("store down")

func (brokenChatRepo) GetOrCreateDirect(context.Context, uuid.UUID, uuid.UUID) (chat.Chat, error) {
	return chat.Chat{}, errStoreDown
}

func (brokenChatRepo) AppendMessage(context.Context, *chat.Message) error { return errStoreDown }

func (brokenChatRepo) GetMessages(context.Context, uuid.UUID, int, *time.Time) ([]chat.MessageWithSender, error) {
	return nil, errStoreDown
}

func (brokenChatRepo) GetRecentChats(context.Context, uuid.UUID, int) ([]chat.Summary, error) {
	return nil, errStoreDown
}

func (brokenChatRepo) GetUserChatIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, errStoreDown
}

func (brokenChatRepo) ResetUnread(context.Context, uuid.UUID, uuid.UUID) error { return errStoreDown }

type emptyNotificationRepo struct{}

func (emptyNotificationRepo) Create(context.Context, *notification.Notification) error { return nil }

func (emptyNotificationRepo) ListByUser(context.Context, uuid.UUID, int) ([]notification.Notification, error) {
	return nil, nil
}

func (emptyNotificationRepo) MarkRead(context.Context, uuid.UUID, []uuid.UUID) error { return nil }

func newBrokenStoreHandler() (*Handler, *Hub) {
	l := &logger.Logger{Logger: zap.NewNop()}
	hub := NewHub(NewRegistry(), l)
	chats := services.NewChatService(brokenChatRepo{}, nil, hub, l)
	notifications := services.NewNotificationService(emptyNotificationRepo{}, nil, hub, l)
	return NewHandler(nil, chats, notifications, hub, l), hub
}

func TestRecentChatsFailSoftOnStoreError(t *testing.T) {
	h, _ := newBrokenStoreHandler()
	c := newTestClient(uuid.New())

	h.sendRecentChats(context.Background(), c)

	f := readFrame(t, c)
	if f.Event != EventRecentChats {
		t.Fatalf("expected %q, got %q", EventRecentChats, f.Event)
	}
	var views []httpdto.RecentChatView
	if err := json.Unmarshal(f.Data, &views); err != nil {
		t.Fatalf("malformed payload: %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Fatalf("expected an empty array, got %v", views)
	}
}

func TestGetNotificationsEmptyFeed(t *testing.T) {
	h, _ := newBrokenStoreHandler()
	c := newTestClient(uuid.New())

	h.dispatch(context.Background(), c, Frame{Event: EventGetNotifications})

	f := readFrame(t, c)
	if f.Event != EventNotificationsList {
		t.Fatalf("expected %q, got %q", EventNotificationsList, f.Event)
	}
	var views []httpdto.NotificationView
	if err := json.Unmarshal(f.Data, &views); err != nil {
		t.Fatalf("malformed payload: %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Fatalf("expected an empty array, got %v", views)
	}
}

func TestDispatchDropsMalformedSendMessage(t *testing.T) {
	h, _ := newBrokenStoreHandler()
	c := newTestClient(uuid.New())

	h.dispatch(context.Background(), c, Frame{Event: EventSendMessage, Data: json.RawMessage(`{"receiverId":"nope"}`)})

	select {
	case raw := <-c.Send:
		t.Fatalf("expected no reply frame, got %s", raw)
	default:
	}
}

func TestDispatchIgnoresUnknownEvent(t *testing.T) {
	h, _ := newBrokenStoreHandler()
	c := newTestClient(uuid.New())

	h.dispatch(context.Background(), c, Frame{Event: "typing"})

	select {
	case raw := <-c.Send:
		t.Fatalf("expected no reply frame, got %s", raw)
	default:
	}
}
