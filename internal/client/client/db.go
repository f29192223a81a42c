package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/yamaphone/internal/client/migrations"
	"github.com/dmitrijs2005/yamaphone/internal/filex"
	_ "modernc.org/sqlite"
)

// InitDatabase opens the local SQLite database at dsn and brings its schema
// up to date. Missing parent directories of dsn are created.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	dsn, err := filex.EnsureParentDir(dsn)
	if err != nil {
		return nil, fmt.Errorf("prepare local database: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
