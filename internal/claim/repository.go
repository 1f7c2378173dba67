package claim

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the claim record store contract consumed by the workflow
// engine. Every mutation validates against the row as it exists at write
// time; see UpdateStatus and Approve for the concurrency rules.
type Repository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*Claim, error)
	ListForHospital(ctx context.Context, hospitalID uuid.UUID) ([]*Claim, error)
	// UpdateStatus writes status and stage together, compare-and-swapped on
	// the expected prior status. A stale expectation yields
	// ErrConcurrentModification.
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status, newStage Stage, expectedPrior Status) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields EditFields) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Approve evaluates the gate and applies the terminal write inside one
	// transaction with the claim row locked, so two concurrent approvals
	// serialize and the loser observes the already-approved status.
	Approve(ctx context.Context, id uuid.UUID, gate func(c *Claim, documentCount int, hasPendingInfoRequest bool) error) (*Claim, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

const claimCols = `id, status, stage, total_amount, notes, claim_date,
	created_by_user_id, client_id, hospital_id, disease_id, created_at, updated_at`

func scanClaim(row interface{ Scan(...any) error }) (*Claim, error) {
	var (
		c          Claim
		notesBlob  string
		claimDate  sql.NullTime
		hospitalID uuid.NullUUID
		diseaseID  uuid.NullUUID
	)
	err := row.Scan(
		&c.ID, &c.Status, &c.Stage, &c.TotalAmount, &notesBlob, &claimDate,
		&c.CreatedByUserID, &c.ClientID, &hospitalID, &diseaseID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Notes = ExtractNotes(notesBlob)
	if claimDate.Valid {
		t := claimDate.Time
		c.ClaimDate = &t
	}
	if hospitalID.Valid {
		id := hospitalID.UUID
		c.HospitalID = &id
	}
	if diseaseID.Valid {
		id := diseaseID.UUID
		c.DiseaseID = &id
	}
	return &c, nil
}

func (r *postgresRepo) Create(ctx context.Context, c *Claim) error {
	blob, err := ComposeNotes(c.Notes)
	if err != nil {
		return wrapStorage("encode notes", err)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO claims (id, status, stage, total_amount, notes, claim_date,
			created_by_user_id, client_id, hospital_id, disease_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Status, c.Stage, c.TotalAmount, blob, c.ClaimDate,
		c.CreatedByUserID, c.ClientID, c.HospitalID, c.DiseaseID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return wrapStorage("insert claim", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+claimCols+` FROM claims WHERE id = $1`, id)
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapStorage("get claim", err)
	}
	return c, nil
}

func (r *postgresRepo) list(ctx context.Context, query string, args ...any) ([]*Claim, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStorage("list claims", err)
	}
	defer rows.Close()

	var claims []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, wrapStorage("scan claim", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("list claims", err)
	}
	return claims, nil
}

func (r *postgresRepo) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*Claim, error) {
	return r.list(ctx,
		`SELECT `+claimCols+` FROM claims WHERE created_by_user_id = $1 ORDER BY created_at DESC`,
		agentID)
}

// ListForHospital returns the in-flight claims visible to a hospital: drafts
// stay private to the agent, and claims assigned to another hospital are
// filtered out.
func (r *postgresRepo) ListForHospital(ctx context.Context, hospitalID uuid.UUID) ([]*Claim, error) {
	return r.list(ctx,
		`SELECT `+claimCols+` FROM claims
		WHERE status <> $1 AND (hospital_id IS NULL OR hospital_id = $2)
		ORDER BY created_at DESC`,
		StatusDraft, hospitalID)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status, newStage Stage, expectedPrior Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE claims SET status = $2, stage = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`,
		id, newStatus, newStage, expectedPrior,
	)
	if err != nil {
		return wrapStorage("update claim status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapStorage("update claim status", err)
	}
	if n == 1 {
		return nil
	}

	// No row matched: either the claim is gone or the status moved between
	// our read and this write.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM claims WHERE id = $1)`, id).Scan(&exists); err != nil {
		return wrapStorage("update claim status", err)
	}
	if !exists {
		return fmt.Errorf("claim %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("claim %s status changed since read: %w", id, ErrConcurrentModification)
}

func (r *postgresRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields EditFields) error {
	query := "UPDATE claims SET updated_at = NOW()"
	args := []any{id}

	if fields.TotalAmount != nil {
		args = append(args, *fields.TotalAmount)
		query += fmt.Sprintf(", total_amount = $%d", len(args))
	}
	if fields.Notes != nil {
		blob, err := ComposeNotes(*fields.Notes)
		if err != nil {
			return wrapStorage("encode notes", err)
		}
		args = append(args, blob)
		query += fmt.Sprintf(", notes = $%d", len(args))
	}
	if fields.ClaimDate != nil {
		args = append(args, *fields.ClaimDate)
		query += fmt.Sprintf(", claim_date = $%d", len(args))
	}
	query += " WHERE id = $1"

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapStorage("update claim fields", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("claim %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the claim together with its documents and request history.
func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStorage("delete claim", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE claim_id = $1`, id); err != nil {
		return wrapStorage("delete claim documents", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM info_requests WHERE claim_id = $1`, id); err != nil {
		return wrapStorage("delete claim info requests", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return wrapStorage("delete claim", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("claim %s: %w", id, ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return wrapStorage("delete claim", err)
	}
	return nil
}

func (r *postgresRepo) Approve(ctx context.Context, id uuid.UUID, gate func(c *Claim, documentCount int, hasPendingInfoRequest bool) error) (*Claim, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapStorage("approve claim", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+claimCols+` FROM claims WHERE id = $1 FOR UPDATE`, id)
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapStorage("approve claim", err)
	}

	var documentCount int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE claim_id = $1`, id).Scan(&documentCount); err != nil {
		return nil, wrapStorage("count documents", err)
	}
	var hasPending bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM info_requests WHERE claim_id = $1 AND status = 'PENDING')`, id,
	).Scan(&hasPending); err != nil {
		return nil, wrapStorage("check pending info request", err)
	}

	if err := gate(c, documentCount, hasPending); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE claims SET status = $2, stage = $3, updated_at = NOW() WHERE id = $1`,
		id, StatusApproved, StageApprovedByAgency,
	); err != nil {
		return nil, wrapStorage("approve claim", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrapStorage("approve claim", err)
	}

	c.Status = StatusApproved
	c.Stage = StageApprovedByAgency
	c.UpdatedAt = time.Now()
	return c, nil
}
