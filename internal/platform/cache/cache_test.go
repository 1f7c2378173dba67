package cache

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGetSet(t *testing.T) {
	s := New(time.Minute)
	key := AgentListKey(uuid.New())

	if _, ok := s.Get(key); ok {
		t.Fatal("empty cache returned a hit")
	}

	s.Set(key, []byte(`[{"id":"x"}]`))
	got, ok := s.Get(key)
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if string(got) != `[{"id":"x"}]` {
		t.Errorf("value = %q", got)
	}
}

func TestInvalidateClaim(t *testing.T) {
	s := New(time.Minute)

	claimID := uuid.New()
	agentID := uuid.New()
	otherAgent := uuid.New()
	hospitalA := uuid.New()
	hospitalB := uuid.New()
	otherClaim := uuid.New()

	s.Set(AgentListKey(agentID), []byte("owner list"))
	s.Set(AgentListKey(otherAgent), []byte("other agent list"))
	s.Set(HospitalListKey(hospitalA), []byte("hospital a list"))
	s.Set(HospitalListKey(hospitalB), []byte("hospital b list"))
	s.Set(ClaimDetailKey(claimID, agentID), []byte("detail for agent"))
	s.Set(ClaimDetailKey(claimID, hospitalA), []byte("detail for hospital"))
	s.Set(ClaimDetailKey(otherClaim, agentID), []byte("unrelated detail"))

	s.InvalidateClaim(claimID, agentID)

	gone := []string{
		AgentListKey(agentID),
		HospitalListKey(hospitalA),
		HospitalListKey(hospitalB),
		ClaimDetailKey(claimID, agentID),
		ClaimDetailKey(claimID, hospitalA),
	}
	for _, key := range gone {
		if _, ok := s.Get(key); ok {
			t.Errorf("key %q survived invalidation", key)
		}
	}

	kept := []string{
		AgentListKey(otherAgent),
		ClaimDetailKey(otherClaim, agentID),
	}
	for _, key := range kept {
		if _, ok := s.Get(key); !ok {
			t.Errorf("key %q was dropped but belongs to an unrelated view", key)
		}
	}
}

func TestKeyFamiliesDoNotCollide(t *testing.T) {
	id := uuid.New()
	keys := map[string]bool{
		AgentListKey(id):       true,
		HospitalListKey(id):    true,
		ClaimDetailKey(id, id): true,
	}
	if len(keys) != 3 {
		t.Errorf("key families collide for the same uuid: %v", keys)
	}
}
