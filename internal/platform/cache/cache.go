// Package cache holds rendered list/detail views so repeated reads skip the
// database. Keys belong to a fixed set of families; invalidation after a
// workflow mutation is expressed against those families rather than ad-hoc
// pattern matching.
package cache

import (
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	familyAgentList    = "agent-list:"
	familyHospitalList = "hospital-list:"
	familyClaimDetail  = "claim-detail:"
)

func AgentListKey(agentID uuid.UUID) string {
	return familyAgentList + agentID.String()
}

func HospitalListKey(hospitalID uuid.UUID) string {
	return familyHospitalList + hospitalID.String()
}

// ClaimDetailKey keys a rendered detail view by claim and viewing actor, so
// visibility-scoped responses are never served across actors.
func ClaimDetailKey(claimID, actorID uuid.UUID) string {
	return familyClaimDetail + claimID.String() + ":" + actorID.String()
}

// Store is a TTL view cache. Entries expire on their own; invalidation only
// has to keep mutations from serving stale views within the TTL window.
type Store struct {
	c *gocache.Cache
}

func New(ttl time.Duration) *Store {
	return &Store{c: gocache.New(ttl, 2*ttl)}
}

func (s *Store) Get(key string) ([]byte, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (s *Store) Set(key string, val []byte) {
	s.c.Set(key, val, gocache.DefaultExpiration)
}

// InvalidateClaim drops every cached view a claim mutation can stale: the
// owning agent's list, every actor's detail view of the claim, and all
// hospital-facing lists (any hospital may be watching the claim).
func (s *Store) InvalidateClaim(claimID, agentID uuid.UUID) {
	s.c.Delete(AgentListKey(agentID))
	detailPrefix := familyClaimDetail + claimID.String() + ":"
	for key := range s.c.Items() {
		if strings.HasPrefix(key, familyHospitalList) || strings.HasPrefix(key, detailPrefix) {
			s.c.Delete(key)
		}
	}
}
