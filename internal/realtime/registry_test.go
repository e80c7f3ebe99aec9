package realtime

import (
	"testing"

	"github.com/google/uuid"
)

func newTestClient(userID uuid.UUID) *Client {
	return NewClient(nil, userID)
}

func TestRegistryPutAndGet(t *testing.T) {
	r := NewRegistry()
	userID := uuid.New()
	c := newTestClient(userID)

	if prev := r.Put(c); prev != nil {
		t.Fatalf("expected no evicted client, got %v", prev.ID)
	}

	got, ok := r.Get(userID)
	if !ok || got != c {
		t.Fatal("expected to find the registered client")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.Len())
	}
}

func TestRegistrySecondLoginEvictsFirst(t *testing.T) {
	r := NewRegistry()
	userID := uuid.New()
	first := newTestClient(userID)
	second := newTestClient(userID)

	r.Put(first)
	evicted := r.Put(second)

	if evicted != first {
		t.Fatal("expected the first connection to be evicted")
	}
	got, _ := r.Get(userID)
	if got != second {
		t.Fatal("expected the second connection to be tracked")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.Len())
	}
}

func TestRegistryStaleRemoveKeepsSuccessor(t *testing.T) {
	r := NewRegistry()
	userID := uuid.New()
	first := newTestClient(userID)
	second := newTestClient(userID)

	r.Put(first)
	r.Put(second)

	// The replaced connection disconnects late; the newer entry must stay.
	if removed := r.Remove(first); removed {
		t.Fatal("stale remove should be a no-op")
	}
	if _, ok := r.Get(userID); !ok {
		t.Fatal("successor connection was evicted by a stale remove")
	}

	if removed := r.Remove(second); !removed {
		t.Fatal("expected the current connection to be removed")
	}
	if _, ok := r.Get(userID); ok {
		t.Fatal("expected no entry after removal")
	}
}

func TestRegistryOnlineIDsSorted(t *testing.T) {
	r := NewRegistry()
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	r.Put(newTestClient(a))
	r.Put(newTestClient(b))

	ids := r.OnlineIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	if ids[0] != b.String() || ids[1] != a.String() {
		t.Errorf("ids not sorted: %v", ids)
	}
}

func TestRegistryOnlineIDsEmpty(t *testing.T) {
	r := NewRegistry()
	ids := r.OnlineIDs()
	if ids == nil || len(ids) != 0 {
		t.Fatalf("expected non-nil empty slice, got %v", ids)
	}
}
