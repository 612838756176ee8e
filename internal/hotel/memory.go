package hotel

import (
	"context"
	"sync"
)

// MemoryInventory keeps rooms in a map. Safe for concurrent use.
type MemoryInventory struct {
	mu    sync.RWMutex
	rooms map[Room]struct{}
}

var _ Store = (*MemoryInventory)(nil)

// NewMemoryInventory creates an inventory holding rooms, or DefaultRooms if none are given.
func NewMemoryInventory(rooms ...Room) *MemoryInventory {
	if len(rooms) == 0 {
		rooms = DefaultRooms
	}
	m := &MemoryInventory{rooms: make(map[Room]struct{}, len(rooms))}
	for _, r := range rooms {
		m.rooms[r.key()] = struct{}{}
	}
	return m
}

// Available implements Inventory.
func (m *MemoryInventory) Available(ctx context.Context, city, roomType string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[Room{City: city, RoomType: roomType}.key()]
	return ok, nil
}

// Add makes a room available.
func (m *MemoryInventory) Add(_ context.Context, room Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.key()] = struct{}{}
	return nil
}

// HealthCheck only reports context cancellation.
func (m *MemoryInventory) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (m *MemoryInventory) Close() error {
	return nil
}
