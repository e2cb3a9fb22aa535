package dupindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"flickbridge/internal/config"
	"flickbridge/internal/services"
)

// DatabaseFile is the index filename inside the configured index directory.
const DatabaseFile = "duplicates.db"

// Store manages duplicate index persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the index database under the configured
// index directory and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.IndexDir, DatabaseFile))
}

// OpenPath opens an index database at an explicit path.
func OpenPath(path string) (*Store, error) {
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

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// upsertSQL resolves key conflicts newest-scan-wins: an incoming row only
// replaces an existing one when its scanned_at is not older.
const upsertSQL = `INSERT INTO flickr_photos_on_commons (
        flickr_photo_id, commons_title, commons_page_id, scanned_at
    ) VALUES (?, ?, ?, ?)
    ON CONFLICT(flickr_photo_id) DO UPDATE SET
        commons_title = excluded.commons_title,
        commons_page_id = excluded.commons_page_id,
        scanned_at = excluded.scanned_at
    WHERE excluded.scanned_at >= flickr_photos_on_commons.scanned_at`

// Put upserts entries in a single transaction.
func (s *Store) Put(ctx context.Context, entries ...IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if entry.PhotoID == "" {
			return errors.New("index entry missing photo id")
		}
		if _, err := stmt.ExecContext(ctx,
			entry.PhotoID,
			entry.Title,
			entry.PageID,
			entry.ScannedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("upsert photo %s: %w", entry.PhotoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put: %w", err)
	}
	return nil
}

const entryColumns = "flickr_photo_id, commons_title, commons_page_id, scanned_at"

// Lookup returns the entry for a photo id, or services.ErrNotFound.
func (s *Store) Lookup(ctx context.Context, photoID string) (*IndexEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM flickr_photos_on_commons WHERE flickr_photo_id = ?`,
		photoID,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("photo %s: %w", photoID, services.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup photo: %w", err)
	}
	return entry, nil
}

// LookupMany returns the entries found for the given photo ids, preserving
// the input order. Missing ids are skipped, not errors.
func (s *Store) LookupMany(ctx context.Context, photoIDs []string) ([]IndexEntry, error) {
	found := make([]IndexEntry, 0, len(photoIDs))
	for _, photoID := range photoIDs {
		entry, err := s.Lookup(ctx, photoID)
		if errors.Is(err, services.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		found = append(found, *entry)
	}
	return found, nil
}

// Merge folds another index database into this one under the newest-wins
// policy.
func (s *Store) Merge(ctx context.Context, otherPath string) (int64, error) {
	if _, err := os.Stat(otherPath); err != nil {
		return 0, fmt.Errorf("merge source: %w", err)
	}
	other, err := OpenPath(otherPath)
	if err != nil {
		return 0, fmt.Errorf("open merge source: %w", err)
	}
	defer other.Close()

	rows, err := other.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM flickr_photos_on_commons ORDER BY flickr_photo_id`)
	if err != nil {
		return 0, fmt.Errorf("read merge source: %w", err)
	}
	defer rows.Close()

	var merged int64
	batch := make([]IndexEntry, 0, 1000)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.Put(ctx, batch...); err != nil {
			return err
		}
		merged += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return merged, fmt.Errorf("scan merge row: %w", err)
		}
		batch = append(batch, *entry)
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return merged, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return merged, fmt.Errorf("iterate merge source: %w", err)
	}
	if err := flush(); err != nil {
		return merged, err
	}
	return merged, nil
}

// Prune removes the given photo ids and reports how many rows were deleted.
func (s *Store) Prune(ctx context.Context, photoIDs ...string) (int64, error) {
	if len(photoIDs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var removed int64
	for _, photoID := range photoIDs {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM flickr_photos_on_commons WHERE flickr_photo_id = ?`, photoID)
		if err != nil {
			return 0, fmt.Errorf("prune photo %s: %w", photoID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		removed += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return removed, nil
}

// Count returns the number of indexed photos.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flickr_photos_on_commons`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*IndexEntry, error) {
	var (
		photoID    string
		title      string
		pageID     string
		scannedRaw string
	)
	if err := scanner.Scan(&photoID, &title, &pageID, &scannedRaw); err != nil {
		return nil, err
	}

	entry := &IndexEntry{PhotoID: photoID, Title: title, PageID: pageID}
	if scanned, err := time.Parse(time.RFC3339Nano, scannedRaw); err == nil {
		entry.ScannedAt = scanned
	}
	return entry, nil
}
