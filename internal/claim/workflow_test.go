package claim

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"insurance-claims-backend/internal/actor"
)

var (
	agentID    = uuid.MustParse("6f9619ff-8b86-4d01-b42d-00cf4fc964ff")
	otherAgent = uuid.MustParse("16fd2706-8baf-433b-82eb-8c7fada847da")
	hospitalID = uuid.MustParse("91461c99-f89d-49d2-af96-d8e2e14e9b58")
)

func testClaim(status Status, stage Stage) *Claim {
	return &Claim{
		ID:              uuid.MustParse("a8098c1a-f86e-4f7a-b4f8-6e7a3f5f3e1a"),
		Status:          status,
		Stage:           stage,
		CreatedByUserID: agentID,
	}
}

func asAgent(id uuid.UUID) actor.Actor    { return actor.Actor{ID: id, Role: actor.RoleAgent} }
func asHospital(id uuid.UUID) actor.Actor { return actor.Actor{ID: id, Role: actor.RoleHospital} }

func TestSubmitTarget(t *testing.T) {
	tests := []struct {
		name       string
		stage      Stage
		wantStatus Status
		wantStage  Stage
	}{
		{"fresh draft goes to agent pipeline", StageDraftAgent, StatusSubmitted, StagePendingAgent},
		{"agent-staged draft goes onward to agency", StagePendingAgent, StatusSubmitted, StageSubmittedToAgency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStatus, gotStage := SubmitTarget(tt.stage)
			if gotStatus != tt.wantStatus || gotStage != tt.wantStage {
				t.Errorf("SubmitTarget(%s) = (%s, %s), want (%s, %s)", tt.stage, gotStatus, gotStage, tt.wantStatus, tt.wantStage)
			}
		})
	}
}

func TestCanSubmit(t *testing.T) {
	tests := []struct {
		name     string
		claim    *Claim
		actor    actor.Actor
		docCount int
		wantErr  error
		wantGate []Condition
	}{
		{
			name:     "owner submits draft with document",
			claim:    testClaim(StatusDraft, StageDraftAgent),
			actor:    asAgent(agentID),
			docCount: 1,
		},
		{
			name:     "zero documents is a hard precondition failure",
			claim:    testClaim(StatusDraft, StageDraftAgent),
			actor:    asAgent(agentID),
			docCount: 0,
			wantGate: []Condition{ConditionDocumentsRequired},
		},
		{
			name:     "non-owner agent is forbidden",
			claim:    testClaim(StatusDraft, StageDraftAgent),
			actor:    asAgent(otherAgent),
			docCount: 1,
			wantErr:  ErrForbidden,
		},
		{
			name:     "hospital cannot submit",
			claim:    testClaim(StatusDraft, StageDraftAgent),
			actor:    asHospital(hospitalID),
			docCount: 1,
			wantErr:  ErrForbidden,
		},
		{
			name:     "already submitted claim",
			claim:    testClaim(StatusSubmitted, StagePendingAgent),
			actor:    asAgent(agentID),
			docCount: 1,
			wantErr:  ErrInvalidTransition,
		},
		{
			name:     "approved claim is immutable",
			claim:    testClaim(StatusApproved, StageApprovedByAgency),
			actor:    asAgent(agentID),
			docCount: 1,
			wantErr:  ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanSubmit(tt.claim, tt.actor, tt.docCount)
			checkRuleError(t, err, tt.wantErr, tt.wantGate)
		})
	}
}

func TestCanApprove(t *testing.T) {
	tests := []struct {
		name       string
		claim      *Claim
		actor      actor.Actor
		docCount   int
		hasPending bool
		wantErr    error
		wantGate   []Condition
	}{
		{
			name:     "gate passes from SUBMITTED",
			claim:    testClaim(StatusSubmitted, StageSubmittedToAgency),
			actor:    asHospital(hospitalID),
			docCount: 2,
		},
		{
			name:     "gate passes from INFO_SUBMITTED",
			claim:    testClaim(StatusInfoSubmitted, StagePendingHospital),
			actor:    asHospital(hospitalID),
			docCount: 1,
		},
		{
			name:     "missing documents alone",
			claim:    testClaim(StatusSubmitted, StageSubmittedToAgency),
			actor:    asHospital(hospitalID),
			docCount: 0,
			wantGate: []Condition{ConditionDocumentsRequired},
		},
		{
			name:       "pending info request alone",
			claim:      testClaim(StatusSubmitted, StageSubmittedToAgency),
			actor:      asHospital(hospitalID),
			docCount:   3,
			hasPending: true,
			wantGate:   []Condition{ConditionInfoRequestPending},
		},
		{
			name:       "both conditions unmet are both reported",
			claim:      testClaim(StatusSubmitted, StageSubmittedToAgency),
			actor:      asHospital(hospitalID),
			docCount:   0,
			hasPending: true,
			wantGate:   []Condition{ConditionDocumentsRequired, ConditionInfoRequestPending},
		},
		{
			name:     "agent cannot approve",
			claim:    testClaim(StatusSubmitted, StageSubmittedToAgency),
			actor:    asAgent(agentID),
			docCount: 1,
			wantErr:  ErrForbidden,
		},
		{
			name:     "cannot approve while info is requested",
			claim:    testClaim(StatusInfoRequested, StagePendingAgentReview),
			actor:    asHospital(hospitalID),
			docCount: 1,
			wantErr:  ErrInvalidTransition,
		},
		{
			name:     "cannot approve a draft",
			claim:    testClaim(StatusDraft, StageDraftAgent),
			actor:    asHospital(hospitalID),
			docCount: 1,
			wantErr:  ErrInvalidTransition,
		},
		{
			name:     "terminal APPROVED is immutable",
			claim:    testClaim(StatusApproved, StageApprovedByAgency),
			actor:    asHospital(hospitalID),
			docCount: 1,
			wantErr:  ErrInvalidTransition,
		},
		{
			name:     "terminal PAID is immutable",
			claim:    testClaim(StatusPaid, StageApprovedByAgency),
			actor:    asHospital(hospitalID),
			docCount: 1,
			wantErr:  ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanApprove(tt.claim, tt.actor, tt.docCount, tt.hasPending)
			checkRuleError(t, err, tt.wantErr, tt.wantGate)
		})
	}
}

func TestCanReject(t *testing.T) {
	tests := []struct {
		name    string
		claim   *Claim
		actor   actor.Actor
		wantErr error
	}{
		{"from SUBMITTED", testClaim(StatusSubmitted, StageSubmittedToAgency), asHospital(hospitalID), nil},
		{"from INFO_SUBMITTED", testClaim(StatusInfoSubmitted, StagePendingHospital), asHospital(hospitalID), nil},
		{"from INFO_REQUESTED without gate", testClaim(StatusInfoRequested, StagePendingAgentReview), asHospital(hospitalID), nil},
		{"agent cannot reject", testClaim(StatusSubmitted, StageSubmittedToAgency), asAgent(agentID), ErrForbidden},
		{"draft cannot be rejected", testClaim(StatusDraft, StageDraftAgent), asHospital(hospitalID), ErrInvalidTransition},
		{"terminal REJECTED is immutable", testClaim(StatusRejected, StageRejectedByAgency), asHospital(hospitalID), ErrInvalidTransition},
		{"terminal PAID is immutable", testClaim(StatusPaid, StageApprovedByAgency), asHospital(hospitalID), ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkRuleError(t, CanReject(tt.claim, tt.actor), tt.wantErr, nil)
		})
	}
}

func TestCanRequestInfo(t *testing.T) {
	tests := []struct {
		name     string
		claim    *Claim
		actor    actor.Actor
		wantErr  error
		wantGate []Condition
	}{
		{name: "from SUBMITTED", claim: testClaim(StatusSubmitted, StageSubmittedToAgency), actor: asHospital(hospitalID)},
		{name: "from INFO_SUBMITTED", claim: testClaim(StatusInfoSubmitted, StagePendingHospital), actor: asHospital(hospitalID)},
		{
			name:     "second concurrent request is rejected",
			claim:    testClaim(StatusInfoRequested, StagePendingAgentReview),
			actor:    asHospital(hospitalID),
			wantGate: []Condition{ConditionInfoRequestPending},
		},
		{name: "agent cannot request info", claim: testClaim(StatusSubmitted, StageSubmittedToAgency), actor: asAgent(agentID), wantErr: ErrForbidden},
		{name: "draft has no hospital visibility", claim: testClaim(StatusDraft, StageDraftAgent), actor: asHospital(hospitalID), wantErr: ErrInvalidTransition},
		{name: "terminal APPROVED is immutable", claim: testClaim(StatusApproved, StageApprovedByAgency), actor: asHospital(hospitalID), wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkRuleError(t, CanRequestInfo(tt.claim, tt.actor), tt.wantErr, tt.wantGate)
		})
	}
}

func TestCanRespondInfo(t *testing.T) {
	tests := []struct {
		name    string
		claim   *Claim
		actor   actor.Actor
		wantErr error
	}{
		{"owner responds while info requested", testClaim(StatusInfoRequested, StagePendingAgentReview), asAgent(agentID), nil},
		{"non-owner agent forbidden", testClaim(StatusInfoRequested, StagePendingAgentReview), asAgent(otherAgent), ErrForbidden},
		{"hospital forbidden", testClaim(StatusInfoRequested, StagePendingAgentReview), asHospital(hospitalID), ErrForbidden},
		{"no open request", testClaim(StatusSubmitted, StageSubmittedToAgency), asAgent(agentID), ErrInvalidTransition},
		{"terminal REJECTED is immutable", testClaim(StatusRejected, StageRejectedByAgency), asAgent(agentID), ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkRuleError(t, CanRespondInfo(tt.claim, tt.actor), tt.wantErr, nil)
		})
	}
}

func TestCanEditAndDelete(t *testing.T) {
	tests := []struct {
		name    string
		claim   *Claim
		actor   actor.Actor
		wantErr error
	}{
		{"owner edits draft", testClaim(StatusDraft, StageDraftAgent), asAgent(agentID), nil},
		{"non-owner forbidden", testClaim(StatusDraft, StageDraftAgent), asAgent(otherAgent), ErrForbidden},
		{"hospital forbidden", testClaim(StatusDraft, StageDraftAgent), asHospital(hospitalID), ErrForbidden},
		{"submitted claim locked", testClaim(StatusSubmitted, StagePendingAgent), asAgent(agentID), ErrInvalidTransition},
		{"terminal PAID locked", testClaim(StatusPaid, StageApprovedByAgency), asAgent(agentID), ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run("edit "+tt.name, func(t *testing.T) {
			checkRuleError(t, CanEdit(tt.claim, tt.actor), tt.wantErr, nil)
		})
		t.Run("delete "+tt.name, func(t *testing.T) {
			checkRuleError(t, CanDelete(tt.claim, tt.actor), tt.wantErr, nil)
		})
	}
}

// checkRuleError asserts either a sentinel match, an exact set of unmet gate
// conditions, or no error at all.
func checkRuleError(t *testing.T, err, wantErr error, wantGate []Condition) {
	t.Helper()

	if wantErr == nil && wantGate == nil {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if wantErr != nil && !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if wantGate != nil {
		pe, ok := IsPrecondition(err)
		if !ok {
			t.Fatalf("error = %v, want PreconditionError", err)
		}
		if len(pe.Unmet) != len(wantGate) {
			t.Fatalf("unmet = %v, want %v", pe.Unmet, wantGate)
		}
		for i, c := range wantGate {
			if pe.Unmet[i] != c {
				t.Errorf("unmet[%d] = %s, want %s", i, pe.Unmet[i], c)
			}
		}
	}
}
