package report

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"insurance-claims-backend/internal/actor"
	"insurance-claims-backend/internal/claim"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ClaimSummary(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())
	claimID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		claim.WriteError(w, claim.ErrValidationFailed)
		return
	}

	pdfBytes, err := h.svc.ClaimSummary(r.Context(), a, claimID)
	if err != nil {
		claim.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="claim_`+claimID.String()+`.pdf"`)
	w.Write(pdfBytes)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/claims/{id}/report", h.ClaimSummary)
}
