package store

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/yamaphone/internal/client/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newStore(t *testing.T) (*SQLiteStore, *clock, *sql.DB) {
	t.Helper()
	db := setupDB(t)
	c := &clock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	return NewSQLiteStore(db, WithClock(c.now)), c, db
}

func TestLoad_EmptyStore_ReturnsEmpty(t *testing.T) {
	s, _, _ := newStore(t)

	v, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSaveAndLoad(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok123", time.Hour))

	v, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok123", v)
}

func TestSave_OverwritesPreviousCredential(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "old", time.Hour))
	require.NoError(t, s.Save(ctx, "new", time.Hour))

	v, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestSave_RecordsCookieAttributes(t *testing.T) {
	s, c, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok", 0))

	cookie, err := s.Cookie(ctx)
	require.NoError(t, err)
	require.NotNil(t, cookie)
	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.True(t, cookie.Expires.Equal(c.t.Add(DefaultTTL)), "zero ttl must default to one day")
}

func TestLoad_ExpiredCredentialIsAbsent(t *testing.T) {
	s, c, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok", time.Hour))

	c.t = c.t.Add(time.Hour)
	v, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSave_PurgesExpiredRecords(t *testing.T) {
	db := setupDB(t)
	c := &clock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	other := NewSQLiteStore(db, WithClock(c.now), WithCookieName("stale"))
	s := NewSQLiteStore(db, WithClock(c.now))
	ctx := context.Background()

	require.NoError(t, other.Save(ctx, "stale-tok", time.Minute))
	c.t = c.t.Add(2 * time.Minute)
	require.NoError(t, s.Save(ctx, "fresh", time.Hour))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM cookies`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSave_EmptyCredentialRejected(t *testing.T) {
	s, _, _ := newStore(t)
	require.ErrorIs(t, s.Save(context.Background(), "", time.Hour), ErrEmptyCredential)
}

func TestClear_RemovesAndIsIdempotent(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok", time.Hour))
	require.NoError(t, s.Clear(ctx))

	v, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Clear(ctx))
}

func TestDBErrorsWrapped(t *testing.T) {
	s, _, db := newStore(t)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := s.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load cookie[yamaphone_token]")

	err = s.Clear(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear cookie[yamaphone_token]")

	require.Error(t, s.Save(ctx, "tok", time.Hour))
}
