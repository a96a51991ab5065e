package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	err   error
	calls int
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.calls++
	return p.err
}

type fakeNavigator struct {
	zone    Zone
	replace bool
	calls   int
}

func (n *fakeNavigator) NavigateTo(zone Zone, replaceHistory bool) {
	n.zone = zone
	n.replace = replaceHistory
	n.calls++
}

func TestSessionStorePhases(t *testing.T) {
	store := NewSessionStore(&fakeProvider{}, &fakeNavigator{}, nil)
	assert.Equal(t, PhaseUninitialized, store.Snapshot().Phase)

	store.BeginInit()
	assert.Equal(t, PhaseInitializing, store.Snapshot().Phase)

	// The first provider event completes the bootstrap, whatever it is.
	store.OnAuthEvent(AuthEvent{Kind: EventSignedOut})
	snap := store.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Nil(t, snap.Identity)
}

func TestSessionStoreAuthEvents(t *testing.T) {
	store := NewSessionStore(&fakeProvider{}, &fakeNavigator{}, nil)
	store.BeginInit()

	u1 := &Identity{ID: "U1", Email: "u1@example.com", EmailVerified: false}
	store.OnAuthEvent(AuthEvent{Kind: EventSignedIn, Identity: u1})
	snap := store.Snapshot()
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "U1", snap.Identity.ID)

	// Token refresh can change the identity view, e.g. verification flipping.
	u1v := &Identity{ID: "U1", Email: "u1@example.com", EmailVerified: true}
	store.OnAuthEvent(AuthEvent{Kind: EventTokenRefreshed, Identity: u1v})
	snap = store.Snapshot()
	require.NotNil(t, snap.Identity)
	assert.True(t, snap.Identity.EmailVerified)

	store.OnAuthEvent(AuthEvent{Kind: EventSignedOut})
	assert.Nil(t, store.Snapshot().Identity)
}

func TestSessionStoreSnapshotCopiesIdentity(t *testing.T) {
	store := NewSessionStore(&fakeProvider{}, &fakeNavigator{}, nil)
	store.OnAuthEvent(AuthEvent{Kind: EventSignedIn, Identity: &Identity{ID: "U1"}})

	snap := store.Snapshot()
	snap.Identity.ID = "mutated"

	assert.Equal(t, "U1", store.Snapshot().Identity.ID)
}

func TestSessionStoreSignOutSuccess(t *testing.T) {
	provider := &fakeProvider{}
	navigator := &fakeNavigator{}
	store := NewSessionStore(provider, navigator, nil)
	store.OnAuthEvent(AuthEvent{Kind: EventSignedIn, Identity: &Identity{ID: "U1"}})

	require.NoError(t, store.SignOut(context.Background()))

	snap := store.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Nil(t, snap.Identity)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, 1, navigator.calls)
	assert.Equal(t, ZoneWelcome, navigator.zone)
	assert.True(t, navigator.replace, "sign-out redirect must replace history")
}

func TestSessionStoreSignOutFailureLeavesStateUntouched(t *testing.T) {
	provider := &fakeProvider{err: errors.New("network down")}
	navigator := &fakeNavigator{}
	store := NewSessionStore(provider, navigator, nil)
	store.OnAuthEvent(AuthEvent{Kind: EventSignedIn, Identity: &Identity{ID: "U1", EmailVerified: true}})

	err := store.SignOut(context.Background())
	require.Error(t, err)

	// No partial sign-out is ever observable.
	snap := store.Snapshot()
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "U1", snap.Identity.ID)
	assert.Equal(t, 0, navigator.calls, "no navigation on failed sign-out")
}
