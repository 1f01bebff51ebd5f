package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-fragments/pkg/fragments"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements fragments.MetadataStore using PostgreSQL
type Repository struct {
	db    DBTX
	table string
}

// New creates a new PostgreSQL repository. An empty schema uses the
// connection's search_path.
func New(db DBTX, schema string) *Repository {
	ident := pgx.Identifier{"fragments"}
	if schema != "" {
		ident = pgx.Identifier{schema, "fragments"}
	}
	return &Repository{db: db, table: ident.Sanitize()}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool, schema string) *Repository {
	return New(pool, schema)
}

// Migrate creates the schema objects the repository needs
func (r *Repository) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			owner_id   TEXT        NOT NULL,
			id         TEXT        NOT NULL,
			type       TEXT        NOT NULL,
			size       BIGINT      NOT NULL CHECK (size >= 0),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (owner_id, id)
		)`, r.table)
	if _, err := r.db.Exec(ctx, query); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fragments.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502": // not_null_violation
			return fmt.Errorf("%w: required field %s is missing", fragments.ErrValidation, pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("%w: %s", fragments.ErrValidation, pgErr.Message)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) PutMetadata(ctx context.Context, fragment *fragments.Fragment) error {
	if fragment == nil || fragment.OwnerID == "" || fragment.ID == "" {
		return fmt.Errorf("%w: owner id and id are required", fragments.ErrValidation)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, id, type, size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id, id) DO UPDATE SET
			type = EXCLUDED.type,
			size = EXCLUDED.size,
			updated_at = EXCLUDED.updated_at`, r.table)

	_, err := r.db.Exec(ctx, query,
		fragment.OwnerID, fragment.ID, fragment.Type, fragment.Size,
		fragment.Created, fragment.Updated)
	if err != nil {
		return r.handlePostgresError("put metadata", err)
	}
	return nil
}

func (r *Repository) GetMetadata(ctx context.Context, ownerID, id string) (*fragments.Fragment, error) {
	query := fmt.Sprintf(`
		SELECT owner_id, id, type, size, created_at, updated_at
		FROM %s
		WHERE owner_id = $1 AND id = $2`, r.table)

	fragment, err := scanFragment(r.db.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		return nil, r.handlePostgresError("get metadata", err)
	}
	return fragment, nil
}

func (r *Repository) ListMetadataIDs(ctx context.Context, ownerID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE owner_id = $1
		ORDER BY created_at, id`, r.table)

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, r.handlePostgresError("list metadata ids", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, r.handlePostgresError("scan metadata id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list metadata ids", err)
	}
	return ids, nil
}

func (r *Repository) ListMetadata(ctx context.Context, ownerID string) ([]*fragments.Fragment, error) {
	query := fmt.Sprintf(`
		SELECT owner_id, id, type, size, created_at, updated_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at, id`, r.table)

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, r.handlePostgresError("list metadata", err)
	}
	defer rows.Close()

	result := []*fragments.Fragment{}
	for rows.Next() {
		fragment, err := scanFragment(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan metadata", err)
		}
		result = append(result, fragment)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list metadata", err)
	}
	return result, nil
}

func (r *Repository) DeleteMetadata(ctx context.Context, ownerID, id string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE owner_id = $1 AND id = $2`, r.table)

	tag, err := r.db.Exec(ctx, query, ownerID, id)
	if err != nil {
		return false, r.handlePostgresError("delete metadata", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanFragment(row pgx.Row) (*fragments.Fragment, error) {
	var f fragments.Fragment
	var created, updated time.Time
	if err := row.Scan(&f.OwnerID, &f.ID, &f.Type, &f.Size, &created, &updated); err != nil {
		return nil, err
	}
	f.Created = created.UTC()
	f.Updated = updated.UTC()
	return &f, nil
}
