package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"insurance-claims-backend/internal/actor"
	"insurance-claims-backend/internal/claim"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())
	claimID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		claim.WriteError(w, fmt.Errorf("%w: invalid claim id", claim.ErrValidationFailed))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		claim.WriteError(w, fmt.Errorf("%w: invalid multipart body", claim.ErrValidationFailed))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		claim.WriteError(w, fmt.Errorf("%w: missing file field", claim.ErrValidationFailed))
		return
	}
	defer file.Close()

	// Supporting documents are small scans; reading into memory is fine.
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		claim.WriteError(w, fmt.Errorf("%w: failed to read uploaded file", claim.ErrValidationFailed))
		return
	}

	d, err := h.svc.Upload(r.Context(), a, claimID, header.Filename, header.Header.Get("Content-Type"), buf.Bytes())
	if err != nil {
		claim.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) ListByClaim(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())
	claimID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		claim.WriteError(w, fmt.Errorf("%w: invalid claim id", claim.ErrValidationFailed))
		return
	}

	docs, err := h.svc.ListByClaim(r.Context(), a, claimID)
	if err != nil {
		claim.WriteError(w, err)
		return
	}
	if docs == nil {
		docs = []*Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		claim.WriteError(w, fmt.Errorf("%w: invalid document id", claim.ErrValidationFailed))
		return
	}

	d, err := h.svc.Download(r.Context(), a, id)
	if err != nil {
		claim.WriteError(w, err)
		return
	}

	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(d.SizeBytes, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+d.FileName+`"`)
	w.Write(d.Data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/claims/{id}/documents", h.Upload)
	r.Get("/claims/{id}/documents", h.ListByClaim)
	r.Get("/documents/{id}", h.Download)
}
