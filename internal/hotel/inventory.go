// Package hotel provides room availability lookups for the booking workflow.
package hotel

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("hotel: store closed")

// Inventory answers whether a room type can be booked in a city.
// Matching is case-insensitive and ignores surrounding whitespace.
type Inventory interface {
	Available(ctx context.Context, city, roomType string) (bool, error)
}

// Store is an Inventory backed by a resource that must be released.
type Store interface {
	Inventory
	Add(ctx context.Context, room Room) error
	// HealthCheck reports whether the backing resource is reachable.
	HealthCheck(ctx context.Context) error
	Close() error
}

// Room is a bookable room type in a city.
type Room struct {
	City     string
	RoomType string
}

// DefaultRooms is the catalogue every store is seeded with.
var DefaultRooms = []Room{
	{City: "Mumbai", RoomType: "deluxe"},
}

// key returns the normalized lookup key for a room.
func (r Room) key() Room {
	return Room{City: normalize(r.City), RoomType: normalize(r.RoomType)}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the store for driver, seeded with DefaultRooms.
// dsn is ignored for the memory driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch normalize(driver) {
	case "", DriverMemory:
		return NewMemoryInventory(), nil
	case DriverSQLite:
		s, err := NewSQLiteStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("hotel: unknown inventory driver %q", driver)
	}
}
