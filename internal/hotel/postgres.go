package hotel

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps rooms in a PostgreSQL table through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to databaseURL, creates the rooms table if
// needed and seeds DefaultRooms.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rooms (
			city TEXT NOT NULL,
			room_type TEXT NOT NULL,
			PRIMARY KEY (city, room_type)
		)
	`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	s := &PostgresStore{pool: pool}
	for _, r := range DefaultRooms {
		if err := s.Add(ctx, r); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

// Add implements Store. Adding an existing room is a no-op.
func (s *PostgresStore) Add(ctx context.Context, room Room) error {
	k := room.key()
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO rooms (city, room_type) VALUES ($1, $2)
		ON CONFLICT (city, room_type) DO NOTHING
	`, k.City, k.RoomType); err != nil {
		return fmt.Errorf("add room: %w", err)
	}
	return nil
}

// Available implements Inventory.
func (s *PostgresStore) Available(ctx context.Context, city, roomType string) (bool, error) {
	k := Room{City: city, RoomType: roomType}.key()
	var exists bool
	if err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM rooms WHERE city = $1 AND room_type = $2)
	`, k.City, k.RoomType).Scan(&exists); err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return exists, nil
}

// HealthCheck implements Store.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
