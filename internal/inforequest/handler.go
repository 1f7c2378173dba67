package inforequest

import (
	"encoding/json"
	"net/http"

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

type createRequest struct {
	FormSchema []FormField `json:"form_schema"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())
	claimID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		claim.WriteError(w, validationf("invalid claim id"))
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		claim.WriteError(w, validationf("invalid request body"))
		return
	}

	created, err := h.svc.Create(r.Context(), a, claimID, req.FormSchema)
	if err != nil {
		claim.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListByClaim(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())
	claimID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		claim.WriteError(w, validationf("invalid claim id"))
		return
	}

	requests, err := h.svc.ListByClaim(r.Context(), a, claimID)
	if err != nil {
		claim.WriteError(w, err)
		return
	}
	if requests == nil {
		requests = []*InfoRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

type respondRequest struct {
	ResponseData map[string]string `json:"response_data"`
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		claim.WriteError(w, validationf("invalid info request id"))
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		claim.WriteError(w, validationf("invalid request body"))
		return
	}

	updated, err := h.svc.Respond(r.Context(), a, requestID, req.ResponseData)
	if err != nil {
		claim.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Templates())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/claims/{id}/info-requests", h.Create)
	r.Get("/claims/{id}/info-requests", h.ListByClaim)
	r.Post("/info-requests/{id}/response", h.Respond)
	r.Get("/info-request-templates", h.Templates)
}
