package inforequest

import (
	"context"

	"github.com/google/uuid"

	"insurance-claims-backend/internal/actor"
	"insurance-claims-backend/internal/claim"
)

// Service runs the info request protocol. Claim-side legality is decided by
// the workflow rules in the claim package against a freshly read claim; the
// repository enforces atomicity of the request/claim handshake.
type Service interface {
	Create(ctx context.Context, a actor.Actor, claimID uuid.UUID, schema []FormField) (*InfoRequest, error)
	Respond(ctx context.Context, a actor.Actor, requestID uuid.UUID, responseData map[string]string) (*InfoRequest, error)
	ListByClaim(ctx context.Context, a actor.Actor, claimID uuid.UUID) ([]*InfoRequest, error)
}

type service struct {
	repo   Repository
	claims claim.Repository
	cache  claim.Invalidator
}

func NewService(repo Repository, claims claim.Repository, cache claim.Invalidator) Service {
	return &service{repo: repo, claims: claims, cache: cache}
}

func (s *service) Create(ctx context.Context, a actor.Actor, claimID uuid.UUID, schema []FormField) (*InfoRequest, error) {
	if err := ValidateSchema(schema); err != nil {
		return nil, err
	}

	c, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err := claim.CanRequestInfo(c, a); err != nil {
		return nil, err
	}

	req := &InfoRequest{
		ID:         uuid.New(),
		ClaimID:    claimID,
		Status:     StatusPending,
		FormSchema: schema,
	}
	if err := s.repo.CreateWithClaimTransition(ctx, req, c.Status); err != nil {
		return nil, err
	}

	s.invalidate(c)
	return req, nil
}

func (s *service) Respond(ctx context.Context, a actor.Actor, requestID uuid.UUID, responseData map[string]string) (*InfoRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	c, err := s.claims.GetByID(ctx, req.ClaimID)
	if err != nil {
		return nil, err
	}
	if err := claim.CanRespondInfo(c, a); err != nil {
		return nil, err
	}

	// Validation runs before any write; a rejected response leaves the
	// request PENDING and the claim untouched.
	if err := ValidateResponse(req.FormSchema, responseData); err != nil {
		return nil, err
	}

	if err := s.repo.Complete(ctx, requestID, req.ClaimID, responseData); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.invalidate(c)
	return updated, nil
}

func (s *service) ListByClaim(ctx context.Context, a actor.Actor, claimID uuid.UUID) ([]*InfoRequest, error) {
	c, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if a.Role == actor.RoleAgent && !a.Owns(c.CreatedByUserID) {
		return nil, claim.ErrForbidden
	}
	return s.repo.ListByClaim(ctx, claimID)
}

func (s *service) invalidate(c *claim.Claim) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateClaim(c.ID, c.CreatedByUserID)
}

var _ Service = (*service)(nil)
