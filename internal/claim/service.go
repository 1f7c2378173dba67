package claim

import (
	"context"
	"time"

	"github.com/google/uuid"

	"insurance-claims-backend/internal/actor"
)

// DocumentCounter is the slice of the document ledger the engine needs: the
// submit precondition only cares that at least one document exists.
type DocumentCounter interface {
	CountByClaim(ctx context.Context, claimID uuid.UUID) (int, error)
}

// InfoRequestChecker answers the single predicate the approval gate depends
// on. Implementations back it with an indexed lookup, not a history scan.
type InfoRequestChecker interface {
	HasPending(ctx context.Context, claimID uuid.UUID) (bool, error)
}

// Invalidator drops cached views after a successful mutation. Its failures
// never propagate into the workflow action.
type Invalidator interface {
	InvalidateClaim(claimID, agentID uuid.UUID)
}

// Notifier announces terminal transitions. Fire-and-forget.
type Notifier interface {
	ClaimResolved(ctx context.Context, c *Claim)
}

// CreateInput carries the fields an agent provides for a new draft.
type CreateInput struct {
	ClientID    uuid.UUID  `json:"client_id"`
	HospitalID  *uuid.UUID `json:"hospital_id,omitempty"`
	DiseaseID   *uuid.UUID `json:"disease_id,omitempty"`
	TotalAmount float64    `json:"total_amount"`
	Notes       ClaimNotes `json:"notes"`
	ClaimDate   *time.Time `json:"claim_date,omitempty"`
}

// Service is the claim workflow engine. Every operation loads fresh state,
// validates the transition through the pure rules in workflow.go, applies it,
// and invalidates cached views after the write commits.
type Service interface {
	Create(ctx context.Context, a actor.Actor, input CreateInput) (*Claim, error)
	Get(ctx context.Context, a actor.Actor, id uuid.UUID) (*Claim, error)
	List(ctx context.Context, a actor.Actor) ([]*Claim, error)
	Submit(ctx context.Context, a actor.Actor, id uuid.UUID) (*Claim, error)
	Approve(ctx context.Context, a actor.Actor, id uuid.UUID) (*Claim, error)
	Reject(ctx context.Context, a actor.Actor, id uuid.UUID) (*Claim, error)
	Edit(ctx context.Context, a actor.Actor, id uuid.UUID, fields EditFields) (*Claim, error)
	Delete(ctx context.Context, a actor.Actor, id uuid.UUID) error
}

type service struct {
	repo      Repository
	documents DocumentCounter
	infoReqs  InfoRequestChecker
	cache     Invalidator
	notifier  Notifier
}

func NewService(repo Repository, documents DocumentCounter, infoReqs InfoRequestChecker, cache Invalidator, notifier Notifier) Service {
	return &service{
		repo:      repo,
		documents: documents,
		infoReqs:  infoReqs,
		cache:     cache,
		notifier:  notifier,
	}
}

func (s *service) Create(ctx context.Context, a actor.Actor, input CreateInput) (*Claim, error) {
	if a.Role != actor.RoleAgent {
		return nil, forbiddenf("only an agent may create claims")
	}
	if input.ClientID == uuid.Nil {
		return nil, validationf("client_id is required")
	}
	if input.TotalAmount < 0 {
		return nil, validationf("total_amount must not be negative")
	}

	c := &Claim{
		ID:              uuid.New(),
		Status:          StatusDraft,
		Stage:           StageDraftAgent,
		TotalAmount:     input.TotalAmount,
		Notes:           input.Notes,
		ClaimDate:       input.ClaimDate,
		CreatedByUserID: a.ID,
		ClientID:        input.ClientID,
		HospitalID:      input.HospitalID,
		DiseaseID:       input.DiseaseID,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(c)
	return c, nil
}

func (s *service) Get(ctx context.Context, a actor.Actor, id uuid.UUID) (*Claim, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, s.checkVisibility(c, a)
}

// checkVisibility scopes reads: agents see their own claims, other parties
// never see drafts.
func (s *service) checkVisibility(c *Claim, a actor.Actor) error {
	if a.Role == actor.RoleAgent && !a.Owns(c.CreatedByUserID) {
		return forbiddenf("claim %s belongs to another agent", c.ID)
	}
	if a.Role != actor.RoleAgent && c.Status == StatusDraft {
		return forbiddenf("claim %s has not been submitted yet", c.ID)
	}
	return nil
}

func (s *service) List(ctx context.Context, a actor.Actor) ([]*Claim, error) {
	switch a.Role {
	case actor.RoleAgent:
		return s.repo.ListByAgent(ctx, a.ID)
	case actor.RoleHospital, actor.RoleAgency:
		return s.repo.ListForHospital(ctx, a.ID)
	}
	return nil, forbiddenf("unknown role %q", a.Role)
}

func (s *service) Submit(ctx context.Context, a actor.Actor, id uuid.UUID) (*Claim, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The document check must run before any state mutation.
	count, err := s.documents.CountByClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanSubmit(c, a, count); err != nil {
		return nil, err
	}

	newStatus, newStage := SubmitTarget(c.Stage)
	if err := s.repo.UpdateStatus(ctx, id, newStatus, newStage, StatusDraft); err != nil {
		return nil, err
	}

	c.Status = newStatus
	c.Stage = newStage
	s.invalidate(c)
	return c, nil
}

func (s *service) Approve(ctx context.Context, a actor.Actor, id uuid.UUID) (*Claim, error) {
	// Gate evaluation and the terminal write happen inside one transaction
	// with the claim row locked; see Repository.Approve.
	c, err := s.repo.Approve(ctx, id, func(c *Claim, documentCount int, hasPending bool) error {
		return CanApprove(c, a, documentCount, hasPending)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(c)
	s.notify(ctx, c)
	return c, nil
}

func (s *service) Reject(ctx context.Context, a actor.Actor, id uuid.UUID) (*Claim, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanReject(c, a); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusRejected, StageRejectedByAgency, c.Status); err != nil {
		return nil, err
	}

	c.Status = StatusRejected
	c.Stage = StageRejectedByAgency
	s.invalidate(c)
	s.notify(ctx, c)
	return c, nil
}

func (s *service) Edit(ctx context.Context, a actor.Actor, id uuid.UUID, fields EditFields) (*Claim, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanEdit(c, a); err != nil {
		return nil, err
	}
	if fields.TotalAmount != nil && *fields.TotalAmount < 0 {
		return nil, validationf("total_amount must not be negative")
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	if fields.TotalAmount != nil {
		c.TotalAmount = *fields.TotalAmount
	}
	if fields.Notes != nil {
		c.Notes = *fields.Notes
	}
	if fields.ClaimDate != nil {
		c.ClaimDate = fields.ClaimDate
	}
	s.invalidate(c)
	return c, nil
}

func (s *service) Delete(ctx context.Context, a actor.Actor, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := CanDelete(c, a); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(c)
	return nil
}

func (s *service) invalidate(c *Claim) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateClaim(c.ID, c.CreatedByUserID)
}

func (s *service) notify(ctx context.Context, c *Claim) {
	if s.notifier == nil {
		return
	}
	s.notifier.ClaimResolved(ctx, c)
}

var _ Service = (*service)(nil)
