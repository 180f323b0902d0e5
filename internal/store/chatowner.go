// Package store provides the data-access collaborators the hub consumes.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-booking-realtime/internal/infrastructure/config"
	"go-booking-realtime/internal/infrastructure/logger"
)

const ownerCacheTTL = 5 * time.Minute

// rowQuerier is the slice of pgxpool.Pool the store needs.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ChatOwners resolves which identity owns a chat. Lookups hit an in-process
// cache first; chat ownership never changes after creation, so a short TTL
// only bounds memory, not staleness.
type ChatOwners struct {
	db    rowQuerier
	cache *ristretto.Cache[string, string]

	logger logger.Logger
}

func NewChatOwners(db rowQuerier, log logger.Logger) (*ChatOwners, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create owner cache: %w", err)
	}

	return &ChatOwners{
		db:     db,
		cache:  cache,
		logger: log.WithField("component", "chat_owners"),
	}, nil
}

// OwnerIdentity returns the identity owning chatID, or "" when the chat is
// unknown. The empty result is not cached so a chat created moments later
// resolves on the next message.
func (s *ChatOwners) OwnerIdentity(ctx context.Context, chatID string) (string, error) {
	if owner, ok := s.cache.Get(chatID); ok {
		return owner, nil
	}

	var owner string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM chats WHERE id = $1`, chatID).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("query chat owner: %w", err)
	}

	s.cache.SetWithTTL(chatID, owner, 1, ownerCacheTTL)
	return owner, nil
}

func (s *ChatOwners) Close() {
	s.cache.Close()
}

// NewPool creates the pgx connection pool for the booking database.
func NewPool(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}
