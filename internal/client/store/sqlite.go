package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/yamaphone/internal/dbx"
)

type SQLiteStore struct {
	db   *sql.DB
	name string
	now  func() time.Time
}

type Option func(*SQLiteStore)

// WithClock overrides time.Now, used for expiry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCookieName stores the credential under a different record name.
func WithCookieName(name string) Option {
	return func(s *SQLiteStore) {
		if name != "" {
			s.name = name
		}
	}
}

// NewSQLiteStore returns a Store over db. The cookies table must exist
// (see migrations.Up).
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{db: db, name: CookieName, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the credential with expiry now+ttl, Secure and SameSite=Strict.
// Expired records left by earlier runs are purged in the same transaction.
func (s *SQLiteStore) Save(ctx context.Context, credential string, ttl time.Duration) error {
	if credential == "" {
		return ErrEmptyCredential
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := s.now()
	c := &http.Cookie{
		Name:     s.name,
		Value:    credential,
		Expires:  now.Add(ttl),
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cookies WHERE expires_at <= ?`, now.Unix()); err != nil {
			return fmt.Errorf("failed to purge expired cookies: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cookies (name, value, expires_at, secure, same_site) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				value = excluded.value,
				expires_at = excluded.expires_at,
				secure = excluded.secure,
				same_site = excluded.same_site
		`, c.Name, c.Value, c.Expires.Unix(), c.Secure, sameSiteString(c.SameSite))
		if err != nil {
			return fmt.Errorf("failed to save cookie[%s]: %w", c.Name, err)
		}
		return nil
	})
}

// Load returns the stored credential, or "" if none is stored or it expired.
func (s *SQLiteStore) Load(ctx context.Context) (string, error) {
	c, err := s.Cookie(ctx)
	if err != nil || c == nil {
		return "", err
	}
	return c.Value, nil
}

// Cookie returns the full live record, or nil if there is none.
func (s *SQLiteStore) Cookie(ctx context.Context) (*http.Cookie, error) {
	var (
		value     string
		expiresAt int64
		secure    bool
		sameSite  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at, secure, same_site FROM cookies WHERE name = ?`, s.name,
	).Scan(&value, &expiresAt, &secure, &sameSite)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cookie[%s]: %w", s.name, err)
	}

	expires := time.Unix(expiresAt, 0)
	if !s.now().Before(expires) {
		return nil, nil
	}

	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Expires:  expires,
		Secure:   secure,
		SameSite: parseSameSite(sameSite),
	}, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, s.name); err != nil {
		return fmt.Errorf("failed to clear cookie[%s]: %w", s.name, err)
	}
	return nil
}

func sameSiteString(m http.SameSite) string {
	switch m {
	case http.SameSiteLaxMode:
		return "Lax"
	case http.SameSiteNoneMode:
		return "None"
	default:
		return "Strict"
	}
}

func parseSameSite(s string) http.SameSite {
	switch s {
	case "Lax":
		return http.SameSiteLaxMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}
