package file

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordColumns = `id, uid, user_storage_id, bucket, object_key, original_name, mime_type, size, created_at`

// Repository stores file metadata records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a metadata repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a record with a server-assigned id and creation time.
func (r *Repository) Create(ctx context.Context, in NewRecord) (Record, error) {
	query := `
INSERT INTO file_metadata (id, uid, user_storage_id, bucket, object_key, original_name, mime_type, size)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + recordColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		in.UID,
		in.UserStorageID,
		in.Bucket,
		in.ObjectKey,
		in.OriginalName,
		in.MimeType,
		in.Size,
	)

	stored, err := scanRecord(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Record{}, ErrObjectKeyExists
		}
		return Record{}, fmt.Errorf("create file metadata: %w: %w", ErrStoreUnavailable, err)
	}
	return stored, nil
}

// ListByOwner returns every record owned by uid in no particular order.
func (r *Repository) ListByOwner(ctx context.Context, uid string) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM file_metadata WHERE uid = $1;`

	records, err := r.collect(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return records, nil
}

// ListAll returns every record in the store.
func (r *Repository) ListAll(ctx context.Context) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM file_metadata ORDER BY created_at;`

	records, err := r.collect(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all files: %w", err)
	}
	return records, nil
}

// FindByOwnerAndKey looks up a record by owner and object key.
func (r *Repository) FindByOwnerAndKey(ctx context.Context, uid, objectKey string) (Record, error) {
	query := `SELECT ` + recordColumns + ` FROM file_metadata WHERE uid = $1 AND object_key = $2 LIMIT 1;`

	record, err := scanRecord(r.pool.QueryRow(ctx, query, uid, objectKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("find file metadata: %w: %w", ErrStoreUnavailable, err)
	}
	return record, nil
}

// GetByID looks up a record regardless of owner.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	query := `SELECT ` + recordColumns + ` FROM file_metadata WHERE id = $1;`

	record, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("get file metadata: %w: %w", ErrStoreUnavailable, err)
	}
	return record, nil
}

// Delete removes a record. Deleting a record that is already gone is not an error.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM file_metadata WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("delete file metadata: %w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// WriteProbe inserts a throwaway document to prove the store accepts writes.
func (r *Repository) WriteProbe(ctx context.Context) (string, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `INSERT INTO metadata_probes (id) VALUES ($1) RETURNING id;`, uuid.New()).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("write probe: %w: %w", ErrStoreUnavailable, err)
	}
	return id.String(), nil
}

func (r *Repository) collect(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file metadata: %w: %w", ErrStoreUnavailable, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w: %w", ErrStoreUnavailable, err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.UID,
		&rec.UserStorageID,
		&rec.Bucket,
		&rec.ObjectKey,
		&rec.OriginalName,
		&rec.MimeType,
		&rec.Size,
		&rec.CreatedAt,
	)
	return rec, err
}

// SortNewestFirst orders records by creation time, newest first.
func SortNewestFirst(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
