package claim

import (
	"time"

	"github.com/google/uuid"
)

// Status is the outcome-facing state of a claim as seen by the hospital and
// the insurer.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSubmitted     Status = "SUBMITTED"
	StatusInfoRequested Status = "INFO_REQUESTED"
	StatusInfoSubmitted Status = "INFO_SUBMITTED"
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
	StatusPaid          Status = "PAID"
)

// Terminal reports whether no further transition is legal from the status.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusPaid:
		return true
	}
	return false
}

// Stage is the pipeline position of a claim across the agent -> agency ->
// hospital handoff. Status and stage are related but not redundant: status is
// the outcome axis, stage is the custody axis. Both are always written
// together by the workflow engine.
type Stage string

const (
	StageDraftAgent          Stage = "DRAFT_AGENT"
	StagePendingAgent        Stage = "PENDING_AGENT"
	StagePendingLog          Stage = "PENDING_LOG"
	StageLogIssued           Stage = "LOG_ISSUED"
	StageLogSentToHospital   Stage = "LOG_SENT_TO_HOSPITAL"
	StagePendingHospital     Stage = "PENDING_HOSPITAL_INPUT"
	StagePendingAgentReview  Stage = "PENDING_AGENT_REVIEW"
	StageSubmittedToAgency   Stage = "SUBMITTED_TO_AGENCY"
	StageApprovedByAgency    Stage = "APPROVED_BY_AGENCY"
	StageRejectedByAgency    Stage = "REJECTED_BY_AGENCY"
)

// Claim is the aggregate the workflow engine operates on. Notes holds the
// decoded form; the raw blob only exists inside the repository.
type Claim struct {
	ID              uuid.UUID  `json:"id"`
	Status          Status     `json:"status"`
	Stage           Stage      `json:"stage"`
	TotalAmount     float64    `json:"total_amount"`
	Notes           ClaimNotes `json:"notes"`
	ClaimDate       *time.Time `json:"claim_date,omitempty"`
	CreatedByUserID uuid.UUID  `json:"created_by_user_id"`
	ClientID        uuid.UUID  `json:"client_id"`
	HospitalID      *uuid.UUID `json:"hospital_id,omitempty"`
	DiseaseID       *uuid.UUID `json:"disease_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EditFields carries the mutable draft fields. Nil pointers mean "leave
// unchanged".
type EditFields struct {
	TotalAmount *float64
	Notes       *ClaimNotes
	ClaimDate   *time.Time
}
