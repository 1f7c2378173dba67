package inforequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"insurance-claims-backend/internal/claim"
)

// Repository persists info requests. The two mutations also carry the claim
// side of the handshake: creating a request moves the claim to
// INFO_REQUESTED, completing one moves it to INFO_SUBMITTED, and both run in
// a single transaction compare-and-swapped on the claim status so the
// one-pending-request invariant survives races. A partial unique index on
// (claim_id) WHERE status = 'PENDING' backs the invariant in the schema.
type Repository interface {
	// CreateWithClaimTransition inserts a PENDING request and transitions the
	// claim from expectedPrior to INFO_REQUESTED atomically.
	CreateWithClaimTransition(ctx context.Context, req *InfoRequest, expectedPrior claim.Status) error
	GetByID(ctx context.Context, id uuid.UUID) (*InfoRequest, error)
	HasPending(ctx context.Context, claimID uuid.UUID) (bool, error)
	ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*InfoRequest, error)
	// Complete stores the response, marks the request COMPLETED, and
	// transitions the claim from INFO_REQUESTED to INFO_SUBMITTED atomically.
	Complete(ctx context.Context, id uuid.UUID, claimID uuid.UUID, responseData map[string]string) error
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

func (r *postgresRepo) CreateWithClaimTransition(ctx context.Context, req *InfoRequest, expectedPrior claim.Status) error {
	schemaJSON, err := json.Marshal(req.FormSchema)
	if err != nil {
		return wrapStorage("encode form schema", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStorage("create info request", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE claims SET status = $2, stage = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`,
		req.ClaimID, claim.StatusInfoRequested, claim.StagePendingAgentReview, expectedPrior,
	)
	if err != nil {
		return wrapStorage("transition claim", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("claim %s status changed since read: %w", req.ClaimID, claim.ErrConcurrentModification)
	}

	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	req.UpdatedAt = time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO info_requests (id, claim_id, status, form_schema, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.ClaimID, StatusPending, schemaJSON, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		// The partial unique index fires when a pending request slipped in
		// between the claim read and this insert.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("claim %s already has a pending info request: %w", req.ClaimID, claim.ErrConcurrentModification)
		}
		return wrapStorage("insert info request", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapStorage("create info request", err)
	}
	return nil
}

const requestCols = `id, claim_id, status, form_schema, response_data, created_at, updated_at, responded_at`

func scanRequest(row interface{ Scan(...any) error }) (*InfoRequest, error) {
	var (
		req          InfoRequest
		schemaJSON   []byte
		responseJSON []byte
		respondedAt  sql.NullTime
	)
	err := row.Scan(&req.ID, &req.ClaimID, &req.Status, &schemaJSON, &responseJSON, &req.CreatedAt, &req.UpdatedAt, &respondedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(schemaJSON, &req.FormSchema); err != nil {
		return nil, fmt.Errorf("decode form schema: %w", err)
	}
	if len(responseJSON) > 0 {
		if err := json.Unmarshal(responseJSON, &req.ResponseData); err != nil {
			return nil, fmt.Errorf("decode response data: %w", err)
		}
	}
	if respondedAt.Valid {
		t := respondedAt.Time
		req.RespondedAt = &t
	}
	return &req, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*InfoRequest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+requestCols+` FROM info_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("info request %s: %w", id, claim.ErrNotFound)
	}
	if err != nil {
		return nil, wrapStorage("get info request", err)
	}
	return req, nil
}

// HasPending is the approval-gate predicate. It hits the partial index on
// pending requests; no history scan.
func (r *postgresRepo) HasPending(ctx context.Context, claimID uuid.UUID) (bool, error) {
	var pending bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM info_requests WHERE claim_id = $1 AND status = $2)`,
		claimID, StatusPending,
	).Scan(&pending)
	if err != nil {
		return false, wrapStorage("check pending info request", err)
	}
	return pending, nil
}

func (r *postgresRepo) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*InfoRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+requestCols+` FROM info_requests WHERE claim_id = $1 ORDER BY created_at DESC`,
		claimID,
	)
	if err != nil {
		return nil, wrapStorage("list info requests", err)
	}
	defer rows.Close()

	var requests []*InfoRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, wrapStorage("scan info request", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("list info requests", err)
	}
	return requests, nil
}

func (r *postgresRepo) Complete(ctx context.Context, id uuid.UUID, claimID uuid.UUID, responseData map[string]string) error {
	responseJSON, err := json.Marshal(responseData)
	if err != nil {
		return wrapStorage("encode response data", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStorage("complete info request", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE info_requests
		SET status = $2, response_data = $3, responded_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4`,
		id, StatusCompleted, responseJSON, StatusPending,
	)
	if err != nil {
		return wrapStorage("complete info request", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM info_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
			return wrapStorage("complete info request", err)
		}
		if !exists {
			return fmt.Errorf("info request %s: %w", id, claim.ErrNotFound)
		}
		return fmt.Errorf("%w: info request %s is already completed", claim.ErrInvalidTransition, id)
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE claims SET status = $2, stage = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`,
		claimID, claim.StatusInfoSubmitted, claim.StagePendingHospital, claim.StatusInfoRequested,
	)
	if err != nil {
		return wrapStorage("transition claim", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("claim %s status changed since read: %w", claimID, claim.ErrConcurrentModification)
	}

	if err := tx.Commit(); err != nil {
		return wrapStorage("complete info request", err)
	}
	return nil
}
