package store

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-booking-realtime/internal/infrastructure/logger"
)

type fakeRow struct {
	owner string
	err   error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.owner
	return nil
}

type fakeDB struct {
	row     *fakeRow
	queries int
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	db.queries++
	return db.row
}

func testLogger() logger.Logger {
	log := logger.NewLogrusLogger(logger.NewDefaultConfig())
	log.SetOutput(io.Discard)
	return log
}

func TestChatOwners_OwnerIdentity(t *testing.T) {
	db := &fakeDB{row: &fakeRow{owner: "u1"}}
	s, err := NewChatOwners(db, testLogger())
	require.NoError(t, err)
	defer s.Close()

	owner, err := s.OwnerIdentity(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)
	assert.Equal(t, 1, db.queries)
}

func TestChatOwners_CachesLookups(t *testing.T) {
	db := &fakeDB{row: &fakeRow{owner: "u1"}}
	s, err := NewChatOwners(db, testLogger())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.OwnerIdentity(context.Background(), "c1")
	require.NoError(t, err)
	s.cache.Wait()

	owner, err := s.OwnerIdentity(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)
	assert.Equal(t, 1, db.queries, "second lookup must come from cache")
}

func TestChatOwners_UnknownChat(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: pgx.ErrNoRows}}
	s, err := NewChatOwners(db, testLogger())
	require.NoError(t, err)
	defer s.Close()

	owner, err := s.OwnerIdentity(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, owner)

	// Unknown chats are not cached; a later message retries the lookup.
	_, err = s.OwnerIdentity(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, 2, db.queries)
}

func TestChatOwners_QueryError(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: fmt.Errorf("connection refused")}}
	s, err := NewChatOwners(db, testLogger())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.OwnerIdentity(context.Background(), "c1")
	assert.Error(t, err)
}
