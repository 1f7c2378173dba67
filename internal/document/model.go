// Package document is the append-only ledger of supporting files per claim.
// The workflow engine only ever consumes the per-claim count; upload, list
// and download are plain CRUD around it.
package document

import (
	"time"

	"github.com/google/uuid"
)

// Document is one uploaded supporting file. Data is only loaded for
// downloads; list responses carry metadata alone.
type Document struct {
	ID          uuid.UUID `json:"id"`
	ClaimID     uuid.UUID `json:"claim_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Data        []byte    `json:"-"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
