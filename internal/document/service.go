package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"insurance-claims-backend/internal/actor"
	"insurance-claims-backend/internal/claim"
)

// maxDocumentSize caps a single upload at 10MB, same as the request body
// limit in the handler.
const maxDocumentSize = 10 << 20

type Service interface {
	Upload(ctx context.Context, a actor.Actor, claimID uuid.UUID, fileName, contentType string, data []byte) (*Document, error)
	Download(ctx context.Context, a actor.Actor, id uuid.UUID) (*Document, error)
	ListByClaim(ctx context.Context, a actor.Actor, claimID uuid.UUID) ([]*Document, error)
}

type service struct {
	repo   Repository
	claims claim.Repository
	cache  claim.Invalidator
}

func NewService(repo Repository, claims claim.Repository, cache claim.Invalidator) Service {
	return &service{repo: repo, claims: claims, cache: cache}
}

func (s *service) Upload(ctx context.Context, a actor.Actor, claimID uuid.UUID, fileName, contentType string, data []byte) (*Document, error) {
	c, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !a.Owns(c.CreatedByUserID) {
		return nil, fmt.Errorf("%w: only the owning agent may upload documents", claim.ErrForbidden)
	}
	if c.Status.Terminal() {
		return nil, fmt.Errorf("%w: claim %s is already resolved", claim.ErrInvalidTransition, claimID)
	}
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", claim.ErrValidationFailed)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", claim.ErrValidationFailed)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%w: uploaded file exceeds the size limit", claim.ErrValidationFailed)
	}

	d := &Document{
		ID:          uuid.New(),
		ClaimID:     claimID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Data:        data,
		UploadedBy:  a.ID,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	// The document count feeds the submit precondition and approval gate, so
	// cached views of the claim are stale now.
	if s.cache != nil {
		s.cache.InvalidateClaim(c.ID, c.CreatedByUserID)
	}
	return d, nil
}

func (s *service) Download(ctx context.Context, a actor.Actor, id uuid.UUID) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkClaimAccess(ctx, a, d.ClaimID); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) ListByClaim(ctx context.Context, a actor.Actor, claimID uuid.UUID) ([]*Document, error) {
	if err := s.checkClaimAccess(ctx, a, claimID); err != nil {
		return nil, err
	}
	return s.repo.ListByClaim(ctx, claimID)
}

func (s *service) checkClaimAccess(ctx context.Context, a actor.Actor, claimID uuid.UUID) error {
	c, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return err
	}
	if a.Role == actor.RoleAgent && !a.Owns(c.CreatedByUserID) {
		return fmt.Errorf("%w: claim %s belongs to another agent", claim.ErrForbidden, claimID)
	}
	return nil
}

var _ Service = (*service)(nil)
