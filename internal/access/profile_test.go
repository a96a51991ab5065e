package access

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBackend returns canned results per identity and can block a fetch
// until released, to simulate a slow in-flight request.
type scriptedBackend struct {
	mu       sync.Mutex
	profiles map[string]*Profile
	errs     map[string]error
	gate     chan struct{}
	entered  chan struct{}
	calls    int
}

func newScriptedBackend() *scriptedBackend {
	return &scriptedBackend{
		profiles: map[string]*Profile{},
		errs:     map[string]error{},
	}
}

func (b *scriptedBackend) FetchProfile(ctx context.Context, identityID string) (*Profile, error) {
	b.mu.Lock()
	b.calls++
	gate := b.gate
	entered := b.entered
	profile := b.profiles[identityID]
	err := b.errs[identityID]
	b.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func TestProfileCacheRefreshStoresFetchedValue(t *testing.T) {
	backend := newScriptedBackend()
	backend.profiles["U1"] = &Profile{SubscriptionStatus: StatusActive, StripeCustomerID: "cus_1"}
	cache := NewProfileCache(backend)

	require.NoError(t, cache.Refresh(context.Background(), "U1"))

	state := cache.Snapshot()
	require.NotNil(t, state.Profile)
	assert.Equal(t, StatusActive, state.Profile.SubscriptionStatus)
	assert.Equal(t, "cus_1", state.Profile.StripeCustomerID)
	assert.False(t, state.FetchErr)
}

func TestProfileCacheNotFoundBecomesConfirmedNone(t *testing.T) {
	backend := newScriptedBackend()
	cache := NewProfileCache(backend)

	// Not-found is a valid state, not an error: the record simply has not
	// been created yet.
	require.NoError(t, cache.Refresh(context.Background(), "U1"))

	state := cache.Snapshot()
	require.NotNil(t, state.Profile)
	assert.Equal(t, StatusNone, state.Profile.SubscriptionStatus)
	assert.False(t, state.FetchErr)
}

func TestProfileCacheKeepsStaleValueOnFetchError(t *testing.T) {
	backend := newScriptedBackend()
	backend.profiles["U1"] = &Profile{SubscriptionStatus: StatusActive}
	cache := NewProfileCache(backend)
	require.NoError(t, cache.Refresh(context.Background(), "U1"))

	backend.mu.Lock()
	backend.errs["U1"] = errors.New("backend unavailable")
	backend.mu.Unlock()

	err := cache.Refresh(context.Background(), "U1")
	require.Error(t, err)

	// Availability over freshness: the old value survives, flagged.
	state := cache.Snapshot()
	require.NotNil(t, state.Profile)
	assert.Equal(t, StatusActive, state.Profile.SubscriptionStatus)
	assert.True(t, state.FetchErr)

	// A later successful refresh clears the flag.
	backend.mu.Lock()
	delete(backend.errs, "U1")
	backend.mu.Unlock()
	require.NoError(t, cache.Refresh(context.Background(), "U1"))
	assert.False(t, cache.Snapshot().FetchErr)
}

func TestProfileCacheDiscardsStaleResponse(t *testing.T) {
	backend := newScriptedBackend()
	backend.profiles["A"] = &Profile{SubscriptionStatus: StatusCanceled}
	backend.profiles["B"] = &Profile{SubscriptionStatus: StatusActive}
	cache := NewProfileCache(backend)

	// Block the fetch for A so it is still in flight when B's completes.
	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	backend.mu.Lock()
	backend.gate = gate
	backend.entered = entered
	backend.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- cache.Refresh(context.Background(), "A")
	}()
	<-entered // A's fetch is in flight

	// B's refresh runs to completion first.
	backend.mu.Lock()
	backend.gate = nil
	backend.entered = nil
	backend.mu.Unlock()
	require.NoError(t, cache.Refresh(context.Background(), "B"))
	before := cache.Snapshot()

	// Now let A's stale result land. It must be dropped.
	close(gate)
	require.NoError(t, <-done)

	after := cache.Snapshot()
	assert.Equal(t, before, after, "stale result must not change the cache")
	require.NotNil(t, after.Profile)
	assert.Equal(t, StatusActive, after.Profile.SubscriptionStatus)
	assert.Equal(t, uint64(1), cache.StaleDrops())
}

func TestProfileCacheClearDiscardsInFlightResult(t *testing.T) {
	backend := newScriptedBackend()
	backend.profiles["U1"] = &Profile{SubscriptionStatus: StatusActive}
	cache := NewProfileCache(backend)

	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	backend.mu.Lock()
	backend.gate = gate
	backend.entered = entered
	backend.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- cache.Refresh(context.Background(), "U1")
	}()
	<-entered // fetch is in flight

	cache.Clear()
	close(gate)
	require.NoError(t, <-done)

	state := cache.Snapshot()
	assert.Nil(t, state.Profile, "result arriving after Clear must be ignored")
	assert.Equal(t, uint64(1), cache.StaleDrops())
}

func TestProfileCacheSnapshotCopies(t *testing.T) {
	backend := newScriptedBackend()
	backend.profiles["U1"] = &Profile{SubscriptionStatus: StatusActive}
	cache := NewProfileCache(backend)
	require.NoError(t, cache.Refresh(context.Background(), "U1"))

	first := cache.Snapshot()
	first.Profile.SubscriptionStatus = StatusCanceled

	second := cache.Snapshot()
	assert.Equal(t, StatusActive, second.Profile.SubscriptionStatus)
}

func TestCacheSetEnsureFetchedFetchesOnce(t *testing.T) {
	backend := newScriptedBackend()
	backend.profiles["U1"] = &Profile{SubscriptionStatus: StatusActive}
	set := NewCacheSet(backend)

	require.NoError(t, set.EnsureFetched(context.Background(), "U1"))
	require.NoError(t, set.EnsureFetched(context.Background(), "U1"))
	require.NoError(t, set.EnsureFetched(context.Background(), "U1"))

	backend.mu.Lock()
	calls := backend.calls
	backend.mu.Unlock()
	assert.Equal(t, 1, calls, "steady-state reads must not refetch")
}

func TestCacheSetIsolatesIdentities(t *testing.T) {
	backend := newScriptedBackend()
	backend.profiles["A"] = &Profile{SubscriptionStatus: StatusActive}
	backend.profiles["B"] = &Profile{SubscriptionStatus: StatusCanceled}
	set := NewCacheSet(backend)

	require.NoError(t, set.EnsureFetched(context.Background(), "A"))
	require.NoError(t, set.EnsureFetched(context.Background(), "B"))

	assert.Equal(t, StatusActive, set.Snapshot("A").Profile.SubscriptionStatus)
	assert.Equal(t, StatusCanceled, set.Snapshot("B").Profile.SubscriptionStatus)
}

func TestCacheSetDrop(t *testing.T) {
	backend := newScriptedBackend()
	backend.profiles["U1"] = &Profile{SubscriptionStatus: StatusActive}
	set := NewCacheSet(backend)
	require.NoError(t, set.EnsureFetched(context.Background(), "U1"))

	set.Drop("U1")
	assert.Nil(t, set.Snapshot("U1").Profile)

	// A fresh fetch works after the drop.
	require.NoError(t, set.EnsureFetched(context.Background(), "U1"))
	require.NotNil(t, set.Snapshot("U1").Profile)
}
