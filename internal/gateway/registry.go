package gateway

import "sync"

// Registry is the process-wide presence map: user id to the id of the
// most recently registered connection. Registering twice for the same
// user overwrites the entry (last connection wins) and unregistering
// removes it unconditionally.
//
// Known race, kept deliberately: a user with two live connections (e.g.
// two browser tabs) holds a single entry, so the disconnect of the
// superseded connection evicts the newer one's entry. See DESIGN.md
// before changing this.
type Registry struct {
	mu      sync.RWMutex
	entries map[int64]string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]string)}
}

func (r *Registry) Register(userID int64, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = connID
}

// Unregister removes the entry for userID. Removing an absent user is a
// no-op.
func (r *Registry) Unregister(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}

// ListUserIDs returns a snapshot of the currently registered user ids in
// no particular order.
func (r *Registry) ListUserIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[userID]
	return ok
}

// connID returns the connection currently on record for userID.
func (r *Registry) connID(userID int64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.entries[userID]
	return id, ok
}
