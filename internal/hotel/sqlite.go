package hotel

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore keeps rooms in a SQLite table.
// It is suitable for single-process use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens path (a file path or ":memory:"), creates the rooms
// table if needed and seeds DefaultRooms.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS rooms (
			city TEXT NOT NULL,
			room_type TEXT NOT NULL,
			PRIMARY KEY (city, room_type)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	s := &SQLiteStore{db: db}
	for _, r := range DefaultRooms {
		if err := s.Add(ctx, r); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Add implements Store. Adding an existing room is a no-op.
func (s *SQLiteStore) Add(ctx context.Context, room Room) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	k := room.key()
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO rooms (city, room_type) VALUES (?, ?)
	`, k.City, k.RoomType); err != nil {
		return fmt.Errorf("add room: %w", err)
	}
	return nil
}

// Available implements Inventory.
func (s *SQLiteStore) Available(ctx context.Context, city, roomType string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrClosed
	}

	k := Room{City: city, RoomType: roomType}.key()
	var n int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rooms WHERE city = ? AND room_type = ?
	`, k.City, k.RoomType).Scan(&n); err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return n > 0, nil
}

// HealthCheck pings the database.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
