package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"arrimeta/internal/logging"
	"arrimeta/internal/metadata"
)

// Store persists decoded clip metadata in SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	lockRetryDelay          = 25 * time.Millisecond
	lockTimeout             = 10 * time.Second
)

// ErrLocked is returned when another writer holds the catalog lock for
// longer than the lock timeout.
var ErrLocked = errors.New("catalog is locked by another writer")

// Open creates or connects to the catalog at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lock: flock.New(path + ".lock")}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// withWriteLock serializes writers across processes through <db>.lock.
func (s *Store) withWriteLock(ctx context.Context, op func() error) error {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	ok, err := s.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrLocked, s.lock.Path())
		}
		return fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, s.lock.Path())
	}
	defer func() { _ = s.lock.Unlock() }()
	return retryOnBusy(ctx, op)
}

// Put stores m for path, replacing any earlier entry. The run id in ctx, if
// any, is recorded with it.
func (s *Store) Put(ctx context.Context, path string, m *metadata.Metadata) error {
	if m == nil {
		return errors.New("metadata is nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	payload, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	var reel string
	if v, ok := m.Get("Reel"); ok {
		reel, _ = v.Str()
	}
	runID, _ := logging.RunIDFromContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	return s.withWriteLock(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO clips (path, clip, reel, fields_json, field_count, run_id, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT(path) DO UPDATE SET
                 clip = excluded.clip,
                 reel = excluded.reel,
                 fields_json = excluded.fields_json,
                 field_count = excluded.field_count,
                 run_id = excluded.run_id,
                 updated_at = excluded.updated_at`,
			abs,
			clipName(abs),
			nullableString(reel),
			string(payload),
			m.Len(),
			nullableString(runID),
			now,
		)
		if err != nil {
			return fmt.Errorf("put clip: %w", err)
		}
		return nil
	})
}

// Get returns the entry for path, or nil when it is not cataloged.
func (s *Store) Get(ctx context.Context, path string) (*Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM clips WHERE path = ?`, abs)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clip: %w", err)
	}
	return entry, nil
}

// FindByClip returns entries whose clip name matches, ordered by path.
func (s *Store) FindByClip(ctx context.Context, clip string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM clips WHERE clip = ? ORDER BY path`, clip)
	if err != nil {
		return nil, fmt.Errorf("find clip: %w", err)
	}
	return collect(rows)
}

// FindByReel returns entries recorded with the given reel, ordered by path.
func (s *Store) FindByReel(ctx context.Context, reel string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM clips WHERE reel = ? ORDER BY path`, reel)
	if err != nil {
		return nil, fmt.Errorf("find reel: %w", err)
	}
	return collect(rows)
}

// List returns every entry ordered by path.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM clips ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	return collect(rows)
}

// Remove deletes the entry for path and reports whether one existed.
func (s *Store) Remove(ctx context.Context, path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", path, err)
	}
	var removed int64
	err = s.withWriteLock(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM clips WHERE path = ?`, abs)
		if err != nil {
			return fmt.Errorf("remove clip: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed > 0, err
}

// Count returns the number of cataloged clips.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM clips`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clips: %w", err)
	}
	return n, nil
}

func collect(rows *sql.Rows) ([]*Entry, error) {
	defer rows.Close()
	var out []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clips: %w", err)
	}
	return out, nil
}

func nullableString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func clipName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
