package claim

import "insurance-claims-backend/internal/actor"

// Pure transition rules for the claim state machine. Every function here
// evaluates against a freshly loaded claim and returns a typed domain error
// when the action is not allowed; none of them touch storage.

// SubmitTarget resolves the submit branch. A draft already staged at
// PENDING_AGENT goes onward to the agency; any other draft stage is first
// submitted within the agent pipeline. The status transition is the same
// shape either way.
func SubmitTarget(current Stage) (Status, Stage) {
	if current == StagePendingAgent {
		return StatusSubmitted, StageSubmittedToAgency
	}
	return StatusSubmitted, StagePendingAgent
}

// CanSubmit checks the agent submit action: ownership, draft status, and the
// documents precondition. The document check runs before any state mutation.
func CanSubmit(c *Claim, a actor.Actor, documentCount int) error {
	if !a.Owns(c.CreatedByUserID) {
		return forbiddenf("only the owning agent may submit claim %s", c.ID)
	}
	if c.Status != StatusDraft {
		return invalidTransitionf("claim %s cannot be submitted from status %s", c.ID, c.Status)
	}
	if documentCount < 1 {
		return &PreconditionError{Unmet: []Condition{ConditionDocumentsRequired}}
	}
	return nil
}

// CanApprove checks the hospital approval action. The gate requires both at
// least one document and no pending info request; when it fails, every unmet
// condition is reported so the caller can surface each one.
func CanApprove(c *Claim, a actor.Actor, documentCount int, hasPendingInfoRequest bool) error {
	if a.Role != actor.RoleHospital {
		return forbiddenf("only a hospital may approve claims")
	}
	if c.Status != StatusSubmitted && c.Status != StatusInfoSubmitted {
		return invalidTransitionf("claim %s cannot be approved from status %s", c.ID, c.Status)
	}
	var unmet []Condition
	if documentCount < 1 {
		unmet = append(unmet, ConditionDocumentsRequired)
	}
	if hasPendingInfoRequest {
		unmet = append(unmet, ConditionInfoRequestPending)
	}
	if len(unmet) > 0 {
		return &PreconditionError{Unmet: unmet}
	}
	return nil
}

// CanReject checks the hospital reject action. Rejection has no gate and is
// additionally legal while an info request is still open.
func CanReject(c *Claim, a actor.Actor) error {
	if a.Role != actor.RoleHospital {
		return forbiddenf("only a hospital may reject claims")
	}
	switch c.Status {
	case StatusSubmitted, StatusInfoSubmitted, StatusInfoRequested:
		return nil
	}
	return invalidTransitionf("claim %s cannot be rejected from status %s", c.ID, c.Status)
}

// CanRequestInfo checks whether a hospital may open an info request. A claim
// at INFO_REQUESTED already has a pending request, so a second concurrent one
// is rejected here.
func CanRequestInfo(c *Claim, a actor.Actor) error {
	if a.Role != actor.RoleHospital {
		return forbiddenf("only a hospital may request additional information")
	}
	switch c.Status {
	case StatusSubmitted, StatusInfoSubmitted:
		return nil
	case StatusInfoRequested:
		return &PreconditionError{Unmet: []Condition{ConditionInfoRequestPending}}
	}
	return invalidTransitionf("information cannot be requested for claim %s in status %s", c.ID, c.Status)
}

// CanRespondInfo checks whether the owning agent may answer the open request.
func CanRespondInfo(c *Claim, a actor.Actor) error {
	if !a.Owns(c.CreatedByUserID) {
		return forbiddenf("only the owning agent may respond to an information request")
	}
	if c.Status != StatusInfoRequested {
		return invalidTransitionf("claim %s has no open information request (status %s)", c.ID, c.Status)
	}
	return nil
}

// CanEdit checks the agent edit action. Only drafts are editable.
func CanEdit(c *Claim, a actor.Actor) error {
	if !a.Owns(c.CreatedByUserID) {
		return forbiddenf("only the owning agent may edit claim %s", c.ID)
	}
	if c.Status != StatusDraft {
		return invalidTransitionf("claim %s can no longer be edited (status %s)", c.ID, c.Status)
	}
	return nil
}

// CanDelete checks the agent delete action. Only drafts are deletable.
func CanDelete(c *Claim, a actor.Actor) error {
	if !a.Owns(c.CreatedByUserID) {
		return forbiddenf("only the owning agent may delete claim %s", c.ID)
	}
	if c.Status != StatusDraft {
		return invalidTransitionf("claim %s can no longer be deleted (status %s)", c.ID, c.Status)
	}
	return nil
}
