package claim

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"insurance-claims-backend/internal/actor"
	"insurance-claims-backend/internal/platform/cache"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantKind      string
		wantRetryable bool
		wantUnmet     []string
	}{
		{"not found", fmt.Errorf("claim x: %w", ErrNotFound), http.StatusNotFound, "not_found", false, nil},
		{"forbidden", forbiddenf("not yours"), http.StatusForbidden, "forbidden", false, nil},
		{"invalid transition", invalidTransitionf("nope"), http.StatusConflict, "invalid_transition", false, nil},
		{"validation", validationf("bad input"), http.StatusBadRequest, "validation_failed", false, nil},
		{"concurrent modification", fmt.Errorf("stale: %w", ErrConcurrentModification), http.StatusConflict, "concurrent_modification", true, nil},
		{
			"precondition",
			&PreconditionError{Unmet: []Condition{ConditionDocumentsRequired, ConditionInfoRequestPending}},
			http.StatusUnprocessableEntity, "precondition_failed", false,
			[]string{"documents_required", "info_request_pending"},
		},
		{"storage", wrapStorage("get claim", fmt.Errorf("connection refused")), http.StatusServiceUnavailable, "storage_unavailable", false, nil},
		{"outside the taxonomy", fmt.Errorf("failed to load PDF font"), http.StatusInternalServerError, "internal_error", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.wantKind)
			}
			if resp.Retryable != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", resp.Retryable, tt.wantRetryable)
			}
			if len(resp.UnmetConditions) != len(tt.wantUnmet) {
				t.Fatalf("unmet_conditions = %v, want %v", resp.UnmetConditions, tt.wantUnmet)
			}
			for i, c := range tt.wantUnmet {
				if resp.UnmetConditions[i] != c {
					t.Errorf("unmet_conditions[%d] = %q, want %q", i, resp.UnmetConditions[i], c)
				}
			}
		})
	}
}

func TestWriteErrorHidesServerDetail(t *testing.T) {
	t.Run("storage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, wrapStorage("get claim", fmt.Errorf("password=hunter2 auth failed")))

		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("body is not JSON: %v", err)
		}
		if resp.Error != "temporary storage problem, please retry later" {
			t.Errorf("error = %q, storage detail must not leak to clients", resp.Error)
		}
	})

	t.Run("internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, fmt.Errorf("font file /etc/secret missing"))

		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("body is not JSON: %v", err)
		}
		if resp.Error != "internal server error" {
			t.Errorf("error = %q, internal detail must not leak to clients", resp.Error)
		}
	})
}

func TestHandlerDetailCaching(t *testing.T) {
	store := newFakeStore()
	views := cache.New(time.Minute)
	svc := NewService(store, store, store, views, nil)
	h := NewHandler(svc, views)

	r := chi.NewRouter()
	r.Use(actor.Middleware)
	RegisterRoutes(r, h)

	c := seedClaim(store, StatusSubmitted, StagePendingAgent)

	get := func(actorID, role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/claims/"+c.ID.String(), nil)
		req.Header.Set("X-Actor-ID", actorID)
		req.Header.Set("X-Actor-Role", role)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := get(agentID.String(), "agent"); rec.Code != http.StatusOK {
		t.Fatalf("first read status = %d, body %s", rec.Code, rec.Body)
	}
	if _, ok := views.Get(cache.ClaimDetailKey(c.ID, agentID)); !ok {
		t.Fatal("detail view not cached after first read")
	}

	// Cached view must be scoped to the reading actor.
	if _, ok := views.Get(cache.ClaimDetailKey(c.ID, hospitalID)); ok {
		t.Fatal("cache holds a view for an actor that never read")
	}

	// Mutate the claim; stale cached detail must be gone.
	approve := httptest.NewRequest(http.MethodPost, "/claims/"+c.ID.String()+"/approve", nil)
	approve.Header.Set("X-Actor-ID", hospitalID.String())
	approve.Header.Set("X-Actor-Role", "hospital")
	store.docCount[c.ID] = 1
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, approve)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", rec.Code, rec.Body)
	}
	if _, ok := views.Get(cache.ClaimDetailKey(c.ID, agentID)); ok {
		t.Fatal("stale detail view survived the approval")
	}

	rec = get(agentID.String(), "agent")
	if rec.Code != http.StatusOK {
		t.Fatalf("re-read status = %d", rec.Code)
	}
	var got Claim
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("body is not a claim: %v", err)
	}
	if got.Status != StatusApproved {
		t.Errorf("status = %s, re-read must see the approval", got.Status)
	}
}

func TestHandlerRejectsGarbageClaimID(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)
	h := NewHandler(svc, nil)

	r := chi.NewRouter()
	r.Use(actor.Middleware)
	RegisterRoutes(r, h)

	req := httptest.NewRequest(http.MethodPost, "/claims/not-a-uuid/submit", nil)
	req.Header.Set("X-Actor-ID", agentID.String())
	req.Header.Set("X-Actor-Role", "agent")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
