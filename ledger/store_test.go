package ledger

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func newTestUser(t *testing.T, s *Store, cash string) User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), "alice", "x", decimal.RequireFromString(cash))
	require.NoError(t, err)
	return u
}

func TestSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)
	assert.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('users','holdings','history')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["users"])
	assert.True(t, found["holdings"])
	assert.True(t, found["history"])
}

func TestCreateUserDuplicate(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "bob", "h1", decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "10000", u.Cash.String())

	_, err = s.CreateUser(ctx, "bob", "h2", decimal.NewFromInt(10000))
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "10000")

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.Cash.Equal(decimal.NewFromInt(10000)))

	byName, err := s.GetUserByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = s.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = s.GetUserByName(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListHoldingsEmpty(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	u := newTestUser(t, s, "1000")

	hs, err := s.ListHoldings(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, hs)
}
