// Package inforequest implements the side channel a hospital uses to ask the
// agent structured questions about a claim: an ad-hoc form schema, a single
// structured answer set, and the status handshake with the claim workflow.
package inforequest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"insurance-claims-backend/internal/claim"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldSelect FieldType = "select"
)

// FormField is one question in the hospital's form schema. ID keys the
// agent's answer in the response map.
type FormField struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required"`
}

// InfoRequest is one issued questionnaire. ResponseData is populated exactly
// once, when the request completes.
type InfoRequest struct {
	ID           uuid.UUID         `json:"id"`
	ClaimID      uuid.UUID         `json:"claim_id"`
	Status       Status            `json:"status"`
	FormSchema   []FormField       `json:"form_schema"`
	ResponseData map[string]string `json:"response_data,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	RespondedAt  *time.Time        `json:"responded_at,omitempty"`
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", claim.ErrValidationFailed, fmt.Sprintf(format, args...))
}

func validFieldType(t FieldType) bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldSelect:
		return true
	}
	return false
}

// ValidateSchema checks a form schema before a request is created: at least
// one field, unique non-blank ids, non-blank labels, known types, and
// options present exactly when the type is select.
func ValidateSchema(fields []FormField) error {
	if len(fields) == 0 {
		return validationf("form schema must contain at least one field")
	}
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f.ID) == "" {
			return validationf("field %d has no id", i)
		}
		if seen[f.ID] {
			return validationf("duplicate field id %q", f.ID)
		}
		seen[f.ID] = true
		if strings.TrimSpace(f.Label) == "" {
			return validationf("field %q has a blank label", f.ID)
		}
		if !validFieldType(f.Type) {
			return validationf("field %q has unknown type %q", f.ID, f.Type)
		}
		if f.Type == FieldSelect && len(f.Options) == 0 {
			return validationf("select field %q has no options", f.ID)
		}
		if f.Type != FieldSelect && len(f.Options) > 0 {
			return validationf("field %q of type %s must not define options", f.ID, f.Type)
		}
	}
	return nil
}

// ValidateResponse checks the agent's answers against the schema: every
// required field answered non-empty, no answers for unknown fields, and
// select answers drawn from the field's options.
func ValidateResponse(schema []FormField, data map[string]string) error {
	byID := make(map[string]FormField, len(schema))
	for _, f := range schema {
		byID[f.ID] = f
	}

	for id := range data {
		if _, ok := byID[id]; !ok {
			return validationf("answer for unknown field %q", id)
		}
	}
	for _, f := range schema {
		answer, ok := data[f.ID]
		if f.Required && (!ok || strings.TrimSpace(answer) == "") {
			return validationf("required field %q has no answer", f.ID)
		}
		if ok && f.Type == FieldSelect && strings.TrimSpace(answer) != "" {
			valid := false
			for _, opt := range f.Options {
				if answer == opt {
					valid = true
					break
				}
			}
			if !valid {
				return validationf("answer for field %q is not one of its options", f.ID)
			}
		}
	}
	return nil
}
