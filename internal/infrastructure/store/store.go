package store

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	_ "modernc.org/sqlite"

	"github.com/lite-lake/technisync/internal/domain"
	"github.com/lite-lake/technisync/internal/infrastructure/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the local SQLite state database. It remembers the record
// set last observed on every server, so a record that disappears from
// its origin can be told apart from one that was never there.
type Store struct {
	db    *sqlx.DB
	flock *flock.Flock
	path  string
}

// Open creates the database directory if needed, takes an exclusive
// lock next to the database file and applies pending migrations. A
// second process opening the same path fails with ErrStoreLocked
// instead of corrupting shared state.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", domain.ErrStoreOpenFailed, dir, err)
		}
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreOpenFailed, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoreLocked, path)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreOpenFailed, err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent statements.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		lock.Unlock()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreOpenFailed, err)
	}

	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
	n, err := migrate.Exec(db.DB, "sqlite3", migrations, migrate.Up)
	if err != nil {
		db.Close()
		lock.Unlock()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreMigrateFailed, err)
	}
	if n > 0 {
		logger.Info("applied state database migrations", "count", n, "path", path)
	}

	return &Store{db: db, flock: lock, path: path}, nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	if unlockErr := s.flock.Unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result int
	if err := s.db.QueryRowxContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("state database ping failed: %w", err)
	}
	return nil
}
