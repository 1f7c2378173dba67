package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"insurance-claims-backend/internal/claim"
)

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*Document, error)
	CountByClaim(ctx context.Context, claimID uuid.UUID) (int, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func wrapStorage(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", claim.ErrStorageUnavailable, op, err)
}

func (r *postgresRepo) Create(ctx context.Context, d *Document) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, claim_id, file_name, content_type, size_bytes, data, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.ClaimID, d.FileName, d.ContentType, d.SizeBytes, d.Data, d.UploadedBy, d.CreatedAt,
	)
	if err != nil {
		return wrapStorage("insert document", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	var d Document
	err := r.db.QueryRowContext(ctx, `
		SELECT id, claim_id, file_name, content_type, size_bytes, data, uploaded_by, created_at
		FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.ClaimID, &d.FileName, &d.ContentType, &d.SizeBytes, &d.Data, &d.UploadedBy, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, claim.ErrNotFound)
	}
	if err != nil {
		return nil, wrapStorage("get document", err)
	}
	return &d, nil
}

func (r *postgresRepo) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, claim_id, file_name, content_type, size_bytes, uploaded_by, created_at
		FROM documents WHERE claim_id = $1 ORDER BY created_at ASC`, claimID)
	if err != nil {
		return nil, wrapStorage("list documents", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.ClaimID, &d.FileName, &d.ContentType, &d.SizeBytes, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, wrapStorage("scan document", err)
		}
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("list documents", err)
	}
	return docs, nil
}

func (r *postgresRepo) CountByClaim(ctx context.Context, claimID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE claim_id = $1`, claimID).Scan(&count)
	if err != nil {
		return 0, wrapStorage("count documents", err)
	}
	return count, nil
}

var _ claim.DocumentCounter = (*postgresRepo)(nil)
