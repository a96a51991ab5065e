package access

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// AuthEventKind enumerates the events pushed by the auth provider.
type AuthEventKind int

const (
	EventSignedIn AuthEventKind = iota
	EventSignedOut
	EventTokenRefreshed
)

// AuthEvent is a provider-pushed session event. Identity is set for
// signed-in and token-refreshed events and ignored for signed-out.
type AuthEvent struct {
	Kind     AuthEventKind
	Identity *Identity
}

// AuthProvider is the external authentication collaborator. Its only
// imperative operation from this core's point of view is ending the session.
type AuthProvider interface {
	SignOut(ctx context.Context) error
}

// Navigator performs zone navigation. replaceHistory prevents the redirect
// from being reachable via back-navigation.
type Navigator interface {
	NavigateTo(zone Zone, replaceHistory bool)
}

// SessionStore tracks whether the auth bootstrap has completed and the
// current identity or its absence. It is the sole owner of the Identity;
// other components read it through Snapshot.
type SessionStore struct {
	mu        sync.Mutex
	phase     Phase
	identity  *Identity
	provider  AuthProvider
	navigator Navigator
	logger    *zap.Logger
}

// NewSessionStore creates a store in the uninitialized phase.
func NewSessionStore(provider AuthProvider, navigator Navigator, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		phase:     PhaseUninitialized,
		provider:  provider,
		navigator: navigator,
		logger:    logger,
	}
}

// BeginInit marks the auth handshake as started. Until the provider reports
// an event the store stays non-ready and guards defer instead of redirecting.
func (s *SessionStore) BeginInit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseUninitialized {
		s.phase = PhaseInitializing
	}
}

// OnAuthEvent applies a provider-pushed event. The first event after
// initialization moves the phase to ready. Events are applied in the order
// received; ordering across events is the provider's contract.
func (s *SessionStore) OnAuthEvent(ev AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseReady
	switch ev.Kind {
	case EventSignedIn, EventTokenRefreshed:
		s.identity = ev.Identity
	case EventSignedOut:
		s.identity = nil
	}
}

// SignOut asks the provider to end the session. On success the identity is
// cleared and the caller is navigated to the welcome zone (history replaced).
// On failure the state is left untouched — no partial sign-out is ever
// observable — and the error is returned for the caller to surface.
func (s *SessionStore) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		s.logger.Warn("sign-out failed, session unchanged", zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.identity = nil
	s.phase = PhaseReady
	s.mu.Unlock()
	if s.navigator != nil {
		s.navigator.NavigateTo(ZoneWelcome, true)
	}
	return nil
}

// Snapshot returns the current session view for the decision engine.
func (s *SessionStore) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	var id *Identity
	if s.identity != nil {
		copied := *s.identity
		id = &copied
	}
	return Session{Phase: s.phase, Identity: id}
}
