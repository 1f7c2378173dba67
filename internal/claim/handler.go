package claim

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"insurance-claims-backend/internal/actor"
	"insurance-claims-backend/internal/platform/cache"
)

type Handler struct {
	svc   Service
	views *cache.Store
}

func NewHandler(svc Service, views *cache.Store) *Handler {
	return &Handler{svc: svc, views: views}
}

// ErrorResponse is the uniform error body. Kind lets clients branch without
// string matching; unmet_conditions enumerates failed gating rules so each
// can be rendered individually.
type ErrorResponse struct {
	Error           string   `json:"error"`
	Kind            string   `json:"kind"`
	UnmetConditions []string `json:"unmet_conditions,omitempty"`
	Retryable       bool     `json:"retryable,omitempty"`
}

// WriteError maps a domain error onto the HTTP surface. Storage failures are
// collapsed into a generic retry-later message, errors outside the taxonomy
// into a generic 500; both are logged server-side with the real cause. Every
// other kind carries an actionable message.
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var pe *PreconditionError
	switch {
	case errors.As(err, &pe):
		status = http.StatusUnprocessableEntity
		resp.Kind = "precondition_failed"
		for _, c := range pe.Unmet {
			resp.UnmetConditions = append(resp.UnmetConditions, string(c))
		}
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
		resp.Kind = "not_found"
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
		resp.Kind = "forbidden"
	case errors.Is(err, ErrInvalidTransition):
		status = http.StatusConflict
		resp.Kind = "invalid_transition"
	case errors.Is(err, ErrValidationFailed):
		status = http.StatusBadRequest
		resp.Kind = "validation_failed"
	case errors.Is(err, ErrConcurrentModification):
		status = http.StatusConflict
		resp.Kind = "concurrent_modification"
		resp.Retryable = true
	case errors.Is(err, ErrStorageUnavailable):
		log.Printf("storage error: %v", err)
		status = http.StatusServiceUnavailable
		resp.Kind = "storage_unavailable"
		resp.Error = "temporary storage problem, please retry later"
	default:
		log.Printf("internal error: %v", err)
		resp.Kind = "internal_error"
		resp.Error = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func claimIDFromURL(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, validationf("invalid claim id")
	}
	return id, nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())

	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, validationf("invalid request body"))
		return
	}

	c, err := h.svc.Create(r.Context(), a, input)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())
	id, err := claimIDFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	key := cache.ClaimDetailKey(id, a.ID)
	if h.views != nil {
		if body, ok := h.views.Get(key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}
	}

	c, err := h.svc.Get(r.Context(), a, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	body, err := json.Marshal(c)
	if err != nil {
		WriteError(w, err)
		return
	}
	if h.views != nil {
		h.views.Set(key, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())

	var key string
	switch a.Role {
	case actor.RoleAgent:
		key = cache.AgentListKey(a.ID)
	default:
		key = cache.HospitalListKey(a.ID)
	}
	if h.views != nil {
		if body, ok := h.views.Get(key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}
	}

	claims, err := h.svc.List(r.Context(), a)
	if err != nil {
		WriteError(w, err)
		return
	}
	if claims == nil {
		claims = []*Claim{}
	}

	body, err := json.Marshal(claims)
	if err != nil {
		WriteError(w, err)
		return
	}
	if h.views != nil {
		h.views.Set(key, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

type editRequest struct {
	TotalAmount *float64    `json:"total_amount,omitempty"`
	Notes       *ClaimNotes `json:"notes,omitempty"`
	ClaimDate   *time.Time  `json:"claim_date,omitempty"`
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())
	id, err := claimIDFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, validationf("invalid request body"))
		return
	}

	fields := EditFields{TotalAmount: req.TotalAmount, Notes: req.Notes, ClaimDate: req.ClaimDate}

	c, err := h.svc.Edit(r.Context(), a, id, fields)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	a, _ := actor.FromContext(r.Context())
	id, err := claimIDFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), a, id); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Submit)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Reject)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, a actor.Actor, id uuid.UUID) (*Claim, error)) {
	a, _ := actor.FromContext(r.Context())
	id, err := claimIDFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	c, err := op(r.Context(), a, id)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/claims", h.Create)
	r.Get("/claims", h.List)
	r.Get("/claims/{id}", h.Get)
	r.Patch("/claims/{id}", h.Edit)
	r.Delete("/claims/{id}", h.Delete)
	r.Post("/claims/{id}/submit", h.Submit)
	r.Post("/claims/{id}/approve", h.Approve)
	r.Post("/claims/{id}/reject", h.Reject)
}
