package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"kotoba-server/internal/transport/httpdto"
	"kotoba-server/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestHub() *Hub {
	return NewHub(NewRegistry(), &logger.Logger{Logger: zap.NewNop()})
}

// readFrame pops one queued frame off the client without blocking.
func readFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case raw := <-c.Send:
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("malformed frame: %v", err)
		}
		return f
	default:
		t.Fatal("expected a queued frame, got none")
		return Frame{}
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}

func onlineIDsFromFrame(t *testing.T, f Frame) []string {
	t.Helper()
	if f.Event != EventOnlineUsers {
		t.Fatalf("expected %q frame, got %q", EventOnlineUsers, f.Event)
	}
	var ids []string
	if err := json.Unmarshal(f.Data, &ids); err != nil {
		t.Fatalf("malformed onlineUsers payload: %v", err)
	}
	return ids
}

func TestRegisterBroadcastsPresence(t *testing.T) {
	h := newTestHub()
	a := newTestClient(uuid.New())
	b := newTestClient(uuid.New())

	h.Register(a)
	ids := onlineIDsFromFrame(t, readFrame(t, a))
	if len(ids) != 1 || ids[0] != a.UserID.String() {
		t.Fatalf("expected only %s online, got %v", a.UserID, ids)
	}

	h.Register(b)
	ids = onlineIDsFromFrame(t, readFrame(t, a))
	if len(ids) != 2 {
		t.Fatalf("expected 2 online users, got %v", ids)
	}
}

func TestDisconnectDropsFromPresence(t *testing.T) {
	h := newTestHub()
	a := newTestClient(uuid.New())
	b := newTestClient(uuid.New())
	h.Register(a)
	h.Register(b)
	drain(a)
	drain(b)

	h.Unregister(a)

	ids := onlineIDsFromFrame(t, readFrame(t, b))
	for _, id := range ids {
		if id == a.UserID.String() {
			t.Fatalf("disconnected user %s still listed online", a.UserID)
		}
	}
	if len(ids) != 1 {
		t.Errorf("expected 1 online user, got %v", ids)
	}
}

func TestUnregisterTwiceIsSafe(t *testing.T) {
	h := newTestHub()
	a := newTestClient(uuid.New())
	h.Register(a)

	h.Unregister(a)
	h.Unregister(a) // must not panic on the closed Send channel
}

func TestDeliverMessageReachesRoomAndLateParticipant(t *testing.T) {
	h := newTestHub()
	sender := newTestClient(uuid.New())
	receiver := newTestClient(uuid.New())
	h.Register(sender)
	h.Register(receiver)

	chatID := uuid.New()
	// Only the sender joined the room at connect time; the chat was just
	// created, so the receiver is reached through the registry.
	h.JoinRoom(sender, chatID)
	drain(sender)
	drain(receiver)

	msg := httpdto.MessageView{ID: uuid.NewString(), ChatID: chatID.String(), Message: "Hello"}
	h.DeliverMessage(chatID, []uuid.UUID{sender.UserID, receiver.UserID}, msg)

	for _, c := range []*Client{sender, receiver} {
		f := readFrame(t, c)
		if f.Event != EventNewMessage {
			t.Fatalf("expected %q, got %q", EventNewMessage, f.Event)
		}
		var got httpdto.MessageView
		if err := json.Unmarshal(f.Data, &got); err != nil {
			t.Fatalf("malformed message payload: %v", err)
		}
		if got.Message != "Hello" {
			t.Errorf("expected body %q, got %q", "Hello", got.Message)
		}
		// Exactly once per recipient.
		select {
		case <-c.Send:
			t.Fatal("recipient received a duplicate frame")
		default:
		}
	}

	// The late participant is now a room subscriber.
	h.DeliverMessage(chatID, nil, msg)
	if f := readFrame(t, receiver); f.Event != EventNewMessage {
		t.Fatalf("late joiner did not receive room fan-out, got %q", f.Event)
	}
}

func TestDeliverMessageSkipsOfflineParticipant(t *testing.T) {
	h := newTestHub()
	sender := newTestClient(uuid.New())
	h.Register(sender)
	drain(sender)

	chatID := uuid.New()
	offline := uuid.New()
	h.DeliverMessage(chatID, []uuid.UUID{sender.UserID, offline}, httpdto.MessageView{Message: "hi"})

	if f := readFrame(t, sender); f.Event != EventNewMessage {
		t.Fatalf("expected sender delivery, got %q", f.Event)
	}
}

func TestPushRacingDisconnectDoesNotPanic(t *testing.T) {
	h := newTestHub()
	userID := uuid.New()

	// The push must hold the hub lock across lookup and send; otherwise a
	// disconnect between the two closes the channel under the sender.
	for i := 0; i < 200; i++ {
		c := newTestClient(userID)
		h.Register(c)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.PushRecentChats(userID, []httpdto.RecentChatView{})
			h.PushNotification(userID, httpdto.NotificationView{Title: "x"})
		}()
		h.Unregister(c)
		wg.Wait()
	}

	if h.PushRecentChats(userID, nil) {
		t.Fatal("push after disconnect reported success")
	}
}

func TestPushToOfflineUserReturnsFalse(t *testing.T) {
	h := newTestHub()
	if h.PushNotification(uuid.New(), httpdto.NotificationView{Title: "x"}) {
		t.Fatal("push to an offline user reported success")
	}
	if h.IsOnline(uuid.New()) {
		t.Fatal("unknown user reported online")
	}
}
