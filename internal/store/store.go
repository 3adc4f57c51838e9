// Package store is the catalog's persistence layer over sqlx. The same SQL
// runs on postgres and sqlite: placeholders go through Rebind and times are
// stored as unix milliseconds.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/internal/domain"
)

// Store implements every storage operation the bot needs.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New wraps an open connection. The schema is managed by core/database migrations.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock replaces time.Now for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// DB exposes the underlying handle for seeders.
func (s *Store) DB() *sqlx.DB { return s.db }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	err := s.db.Close()
	logger.DB.Info("db closed", slog.String("event", "db.close"))
	return err
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (s *Store) nowMillis() int64 { return s.now().UnixMilli() }

func (s *Store) exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	return res, nil
}

func (s *Store) get(ctx context.Context, op string, dst any, query string, args ...any) error {
	err := s.db.GetContext(ctx, dst, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return s.fail(ctx, op, err)
	}
	return nil
}

func (s *Store) selectAll(ctx context.Context, op string, dst any, query string, args ...any) error {
	if err := s.db.SelectContext(ctx, dst, s.db.Rebind(query), args...); err != nil {
		return s.fail(ctx, op, err)
	}
	return nil
}

func (s *Store) fail(ctx context.Context, op string, err error) error {
	logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.query",
		slog.String("status", "fail"),
		slog.String("op", op),
		slog.String("err", err.Error()),
	)
	return fmt.Errorf("store.%s: %w", op, err)
}

func affected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
