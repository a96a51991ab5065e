package access

import (
	"context"
	"errors"
	"sync"
)

// ErrProfileNotFound is returned by a ProfileBackend when no profile record
// exists for the identity. This is a valid state for a freshly registered
// user whose record has not been created yet, not a failure.
var ErrProfileNotFound = errors.New("profile record not found")

// ProfileBackend is the external collaborator that owns profile persistence.
// A single-row lookup keyed by identity id.
type ProfileBackend interface {
	FetchProfile(ctx context.Context, identityID string) (*Profile, error)
}

// ProfileCache holds the most recently fetched Profile for one identity and
// mediates refreshes. Policy on refresh failure is availability over
// freshness: the prior value stays usable and a fetch-error flag is raised.
type ProfileCache struct {
	mu         sync.Mutex
	backend    ProfileBackend
	identityID string
	profile    *Profile
	fetchErr   bool
	staleDrops uint64
}

// NewProfileCache creates an empty cache bound to no identity.
func NewProfileCache(backend ProfileBackend) *ProfileCache {
	return &ProfileCache{backend: backend}
}

// Refresh fetches the profile for identityID and replaces the cached value.
//
// The fetch runs without the lock. Before the result is applied it is
// validated against the identity the cache is bound to at completion time: a
// result arriving after Clear, or after a Refresh for a different identity,
// is silently discarded. This stale-response guard substitutes for a
// cancellation token.
//
// A fetch error leaves the prior cached value untouched and sets the
// fetch-error flag; the error is returned so direct user actions can surface
// it. A not-found result is stored as a confirmed profile with status none.
func (c *ProfileCache) Refresh(ctx context.Context, identityID string) error {
	c.mu.Lock()
	c.identityID = identityID
	c.mu.Unlock()

	profile, err := c.backend.FetchProfile(ctx, identityID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identityID != identityID {
		// Identity moved on while the fetch was in flight.
		c.staleDrops++
		return nil
	}
	switch {
	case errors.Is(err, ErrProfileNotFound):
		c.profile = &Profile{SubscriptionStatus: StatusNone}
		c.fetchErr = false
		return nil
	case err != nil:
		c.fetchErr = true
		return err
	default:
		c.profile = profile
		c.fetchErr = false
		return nil
	}
}

// Clear drops the cached profile and unbinds the identity. Any refresh still
// in flight will have its result ignored.
func (c *ProfileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identityID = ""
	c.profile = nil
	c.fetchErr = false
}

// Snapshot returns the cache view for the decision engine.
func (c *ProfileCache) Snapshot() ProfileState {
	c.mu.Lock()
	defer c.mu.Unlock()
	var p *Profile
	if c.profile != nil {
		copied := *c.profile
		p = &copied
	}
	return ProfileState{Profile: p, FetchErr: c.fetchErr}
}

// StaleDrops reports how many in-flight results were discarded by the
// stale-response guard.
func (c *ProfileCache) StaleDrops() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staleDrops
}

// CacheSet keys one ProfileCache per identity for the multi-user server.
// Each per-identity cache keeps the single-identity semantics above.
type CacheSet struct {
	mu      sync.Mutex
	backend ProfileBackend
	caches  map[string]*ProfileCache
}

// NewCacheSet creates an empty set backed by the given profile backend.
func NewCacheSet(backend ProfileBackend) *CacheSet {
	return &CacheSet{backend: backend, caches: make(map[string]*ProfileCache)}
}

// For returns the cache for identityID, creating it on first use.
func (s *CacheSet) For(identityID string) *ProfileCache {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[identityID]
	if !ok {
		c = NewProfileCache(s.backend)
		s.caches[identityID] = c
	}
	return c
}

// EnsureFetched refreshes the identity's cache only when nothing has been
// fetched yet, so steady-state reads stay synchronous and cheap.
func (s *CacheSet) EnsureFetched(ctx context.Context, identityID string) error {
	c := s.For(identityID)
	if st := c.Snapshot(); st.Profile != nil {
		return nil
	}
	return c.Refresh(ctx, identityID)
}

// Refresh forces a refetch for identityID, e.g. after a payment flow or a
// provider webhook changed the backend record.
func (s *CacheSet) Refresh(ctx context.Context, identityID string) error {
	return s.For(identityID).Refresh(ctx, identityID)
}

// Snapshot returns the profile view for identityID without fetching.
func (s *CacheSet) Snapshot(identityID string) ProfileState {
	s.mu.Lock()
	c, ok := s.caches[identityID]
	s.mu.Unlock()
	if !ok {
		return ProfileState{}
	}
	return c.Snapshot()
}

// Drop clears and removes the identity's cache, used on sign-out.
func (s *CacheSet) Drop(identityID string) {
	s.mu.Lock()
	c, ok := s.caches[identityID]
	if ok {
		delete(s.caches, identityID)
	}
	s.mu.Unlock()
	if ok {
		c.Clear()
	}
}
