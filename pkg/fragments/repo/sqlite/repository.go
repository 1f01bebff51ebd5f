package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tendant/simple-fragments/pkg/fragments"
)

// timeFormat is fixed width so created_at sorts as text
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// Repository implements fragments.MetadataStore on an embedded SQLite file
type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Repository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection serializes writers and keeps :memory: shared
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *Repository) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS fragments (
	owner_id TEXT NOT NULL,
	id TEXT NOT NULL,
	type TEXT NOT NULL,
	size INTEGER NOT NULL CHECK (size >= 0),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (owner_id, id)
);

CREATE INDEX IF NOT EXISTS fragments_owner_created ON fragments(owner_id, created_at);
`)
	if err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

// Close releases the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}

func iso(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func (r *Repository) PutMetadata(ctx context.Context, fragment *fragments.Fragment) error {
	if fragment == nil || fragment.OwnerID == "" || fragment.ID == "" {
		return fmt.Errorf("%w: owner id and id are required", fragments.ErrValidation)
	}
	if fragment.Size < 0 {
		return fmt.Errorf("%w: negative size", fragments.ErrValidation)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO fragments(owner_id, id, type, size, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(owner_id, id) DO UPDATE SET
	type = excluded.type,
	size = excluded.size,
	updated_at = excluded.updated_at
`,
		fragment.OwnerID,
		fragment.ID,
		fragment.Type,
		fragment.Size,
		iso(fragment.Created),
		iso(fragment.Updated),
	)
	if err != nil {
		return fmt.Errorf("sqlite put metadata: %w", err)
	}
	return nil
}

func (r *Repository) GetMetadata(ctx context.Context, ownerID, id string) (*fragments.Fragment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT owner_id, id, type, size, created_at, updated_at
FROM fragments
WHERE owner_id = ? AND id = ?
`, ownerID, id)

	fragment, err := scanFragment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fragments.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get metadata: %w", err)
	}
	return fragment, nil
}

func (r *Repository) ListMetadataIDs(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id FROM fragments
WHERE owner_id = ?
ORDER BY created_at, id
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite list metadata ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite list metadata ids: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) ListMetadata(ctx context.Context, ownerID string) ([]*fragments.Fragment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT owner_id, id, type, size, created_at, updated_at
FROM fragments
WHERE owner_id = ?
ORDER BY created_at, id
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite list metadata: %w", err)
	}
	defer rows.Close()

	result := []*fragments.Fragment{}
	for rows.Next() {
		fragment, err := scanFragment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite list metadata: %w", err)
		}
		result = append(result, fragment)
	}
	return result, rows.Err()
}

func (r *Repository) DeleteMetadata(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fragments WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return false, fmt.Errorf("sqlite delete metadata: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite delete metadata: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFragment(row scanner) (*fragments.Fragment, error) {
	var f fragments.Fragment
	var created, updated string
	if err := row.Scan(&f.OwnerID, &f.ID, &f.Type, &f.Size, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if f.Created, err = time.Parse(timeFormat, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if f.Updated, err = time.Parse(timeFormat, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &f, nil
}
