package realtime

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks which users currently have a live connection. It is a
// process-local cache of reachability, never a source of truth for chat
// membership, and is not shared across server instances.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Client
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]*Client)}
}

// Put records the client as the user's active connection, overwriting any
// prior entry. At most one connection per user is tracked; the evicted
// client, if any, is returned but not closed.
func (r *Registry) Put(c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.entries[c.UserID]
	if prev == c {
		return nil
	}
	r.entries[c.UserID] = c
	return prev
}

// Remove drops the user's entry only when it still points at this client, so
// a replaced connection's late disconnect cannot evict its successor.
func (r *Registry) Remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[c.UserID] != c {
		return false
	}
	delete(r.entries, c.UserID)
	return true
}

func (r *Registry) Get(userID uuid.UUID) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.entries[userID]
	return c, ok
}

// OnlineIDs returns a sorted snapshot of user ids with a tracked connection.
func (r *Registry) OnlineIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id.String())
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
