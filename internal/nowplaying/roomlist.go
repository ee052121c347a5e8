package nowplaying

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"
)

// RoomList is the "last rendered list" cell. Writes come from a single poll
// loop; reads may come from HTTP handlers, hence the lock.
type RoomList struct {
	mu         sync.RWMutex
	rooms      []Room
	serialized []byte
	loaded     bool
	updatedAt  time.Time
	changedAt  time.Time
}

// NewRoomList creates an empty, not yet loaded cell.
func NewRoomList() *RoomList {
	return &RoomList{serialized: []byte("[]")}
}

// Replace stores rooms if their serialized form differs from the stored list
// and reports whether it did. The loaded flag is set either way.
// A caller seeing false can skip any redraw.
func (l *RoomList) Replace(rooms []Room) bool {
	if rooms == nil {
		rooms = []Room{}
	}
	encoded, err := json.Marshal(rooms)
	if err != nil {
		// Room only holds strings; Marshal cannot fail.
		encoded = nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	wasLoaded := l.loaded
	l.loaded = true
	l.updatedAt = now
	// The first load always counts as a change so renderers leave the loading state.
	if wasLoaded && encoded != nil && bytes.Equal(encoded, l.serialized) {
		return false
	}

	l.rooms = append([]Room(nil), rooms...)
	l.serialized = encoded
	l.changedAt = now
	return true
}

// Rooms returns a copy of the stored list.
func (l *RoomList) Rooms() []Room {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Room{}, l.rooms...)
}

// Loaded reports whether at least one payload has been normalized.
func (l *RoomList) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Snapshot is a consistent view of the cell.
type Snapshot struct {
	Rooms     []Room    `json:"rooms"`
	Loaded    bool      `json:"loaded"`
	UpdatedAt time.Time `json:"updated_at"`
	ChangedAt time.Time `json:"changed_at"`
}

// Snapshot returns rooms and flags under one lock.
func (l *RoomList) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{
		Rooms:     append([]Room{}, l.rooms...),
		Loaded:    l.loaded,
		UpdatedAt: l.updatedAt,
		ChangedAt: l.changedAt,
	}
}
