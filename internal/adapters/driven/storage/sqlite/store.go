// Package sqlite persists index snapshots in a SQLite database, one
// database file per vault identity.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/vaultika/vaultika-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/vaultika/vaultika-cli/internal/core/domain"
	"github.com/vaultika/vaultika-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// formatVersion is the persisted snapshot format. Bumped on any change
// to the schema semantics; older stores then load as incompatible and
// force a rebuild.
const formatVersion = 1

// Store is a SQLite-backed index snapshot store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a snapshot store inside the given data directory.
// If dataDir is empty, defaults to ~/.vaultika/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vaultika", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode for better concurrency between writer and readers.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save replaces the persisted snapshot in one transaction, so a crash
// mid-write can never leave a partial snapshot visible to Load.
func (s *Store) Save(ctx context.Context, snapshot driven.IndexSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO index_header (id, format_version, model_id, dimensions, saved_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			format_version = excluded.format_version,
			model_id = excluded.model_id,
			dimensions = excluded.dimensions,
			saved_at = excluded.saved_at
	`, formatVersion, snapshot.ModelID, snapshot.Dimensions)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM index_entries"); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_entries
			(chunk_id, path, chunk_index, content, start_offset, end_offset, doc_modified_at, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range snapshot.Entries {
		_, err := stmt.ExecContext(ctx,
			entry.Chunk.ID,
			entry.Chunk.Path,
			entry.Chunk.Index,
			entry.Chunk.Text,
			entry.Chunk.Start,
			entry.Chunk.End,
			entry.DocumentModifiedAt.UnixNano(),
			float32SliceToBytes(entry.Embedding),
		)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", entry.Chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot. An empty store returns
// domain.ErrNotFound; a store written with an unknown format version or
// whose vectors do not match the declared dimension returns
// domain.ErrIndexIncompatible.
func (s *Store) Load(ctx context.Context) (*driven.IndexSnapshot, error) {
	var snapshot driven.IndexSnapshot
	var version int

	row := s.db.QueryRowContext(ctx,
		"SELECT format_version, model_id, dimensions FROM index_header WHERE id = 1")
	if err := row.Scan(&version, &snapshot.ModelID, &snapshot.Dimensions); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("store format version %d, expected %d: %w",
			version, formatVersion, domain.ErrIndexIncompatible)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, path, chunk_index, content, start_offset, end_offset, doc_modified_at, embedding
		FROM index_entries
		ORDER BY path, chunk_index
	`)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.IndexEntry
		var modifiedNanos int64
		var blob []byte

		err := rows.Scan(
			&entry.Chunk.ID,
			&entry.Chunk.Path,
			&entry.Chunk.Index,
			&entry.Chunk.Text,
			&entry.Chunk.Start,
			&entry.Chunk.End,
			&modifiedNanos,
			&blob,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		if len(blob) != snapshot.Dimensions*4 {
			return nil, fmt.Errorf("entry %s has %d-byte vector, header declares dimension %d: %w",
				entry.Chunk.ID, len(blob), snapshot.Dimensions, domain.ErrIndexIncompatible)
		}

		entry.DocumentModifiedAt = time.Unix(0, modifiedNanos)
		entry.Embedding = bytesToFloat32Slice(blob)
		snapshot.Entries = append(snapshot.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return &snapshot, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes encodes a vector as little-endian float32 bytes.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
