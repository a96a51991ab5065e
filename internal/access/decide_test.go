package access

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifiedIdentity() *Identity {
	return &Identity{ID: "U1", Email: "u1@example.com", EmailVerified: true}
}

func unverifiedIdentity() *Identity {
	return &Identity{ID: "U1", Email: "u1@example.com", EmailVerified: false}
}

func profileWith(status SubscriptionStatus, customerID string) ProfileState {
	return ProfileState{Profile: &Profile{SubscriptionStatus: status, StripeCustomerID: customerID}}
}

func TestDecideScenarios(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		profile ProfileState
		zone    Zone
		want    Verdict
	}{
		{
			name:    "signed-out visitor on a public page",
			session: Session{Phase: PhaseReady},
			zone:    ZoneWelcome,
			want:    Verdict{Kind: VerdictAllow},
		},
		{
			name:    "signed-out visitor on the dashboard",
			session: Session{Phase: PhaseReady},
			zone:    ZoneDashboard,
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneLogin},
		},
		{
			name:    "bootstrap in flight on a loading-tolerant zone",
			session: Session{Phase: PhaseInitializing},
			zone:    ZoneLogin,
			want:    Verdict{Kind: VerdictAllow},
		},
		{
			name:    "bootstrap in flight on the dashboard defers",
			session: Session{Phase: PhaseInitializing},
			zone:    ZoneDashboard,
			want:    Verdict{Kind: VerdictDefer},
		},
		{
			name:    "uninitialized session on a guarded zone defers",
			session: Session{Phase: PhaseUninitialized},
			zone:    ZoneShifts,
			want:    Verdict{Kind: VerdictDefer},
		},
		{
			name:    "new user with confirmed-missing profile row at dashboard",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: profileWith(StatusNone, ""),
			zone:    ZoneDashboard,
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneSubscriptionRequired},
		},
		{
			name:    "active subscriber parked on the paywall",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: profileWith(StatusActive, "cus_1"),
			zone:    ZoneSubscriptionRequired,
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneDashboard},
		},
		{
			name:    "abandoned checkout resumes billing instead of restarting",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: profileWith(StatusNone, "cus_1"),
			zone:    ZoneDashboard,
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneBilling},
		},
		{
			name:    "past-due with customer reference beats the plain paywall rule",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: profileWith(StatusPastDue, "cus_1"),
			zone:    ZoneDashboard,
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneBilling},
		},
		{
			name:    "canceled without customer reference goes to the paywall",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: profileWith(StatusCanceled, ""),
			zone:    ZoneDashboard,
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneSubscriptionRequired},
		},
		{
			name:    "trialing does not count as active",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: profileWith(StatusTrialing, ""),
			zone:    ZoneShifts,
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneSubscriptionRequired},
		},
		{
			name:    "active subscriber reaches the shifts zone",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: profileWith(StatusActive, "cus_1"),
			zone:    ZoneShifts,
			want:    Verdict{Kind: VerdictAllow},
		},
		{
			name:    "unverified user bounces to email verification before any subscription check",
			session: Session{Phase: PhaseReady, Identity: unverifiedIdentity()},
			profile: profileWith(StatusActive, "cus_1"),
			zone:    ZoneDashboard,
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneEmailVerification},
		},
		{
			name:    "profile never fetched on a verification-gated zone fails closed",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: ProfileState{},
			zone:    ZoneSettings,
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneEmailVerification},
		},
		{
			name:    "fetch error on a zone without subscription check cleans up to welcome",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: ProfileState{Profile: &Profile{SubscriptionStatus: StatusActive}, FetchErr: true},
			zone:    ZoneBilling,
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneWelcome},
		},
		{
			name:    "settings only needs verification, not a subscription",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: profileWith(StatusNone, ""),
			zone:    ZoneSettings,
			want:    Verdict{Kind: VerdictAllow},
		},
		{
			name:    "unknown zone gets the most restrictive treatment",
			session: Session{Phase: PhaseReady, Identity: verifiedIdentity()},
			profile: profileWith(StatusNone, ""),
			zone:    Zone("admin"),
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneSubscriptionRequired},
		},
		{
			name:    "unknown zone while signed out goes to login",
			session: Session{Phase: PhaseReady},
			zone:    Zone("admin"),
			want:    Verdict{Kind: VerdictRedirect, Target: ZoneLogin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.session, tt.profile, tt.zone)
			assert.Equal(t, tt.want, got)
		})
	}
}

// enumerateSessions covers phase x identity presence x verification.
func enumerateSessions() []Session {
	sessions := []Session{}
	for _, phase := range []Phase{PhaseUninitialized, PhaseInitializing, PhaseReady} {
		sessions = append(sessions, Session{Phase: phase})
		sessions = append(sessions, Session{Phase: phase, Identity: unverifiedIdentity()})
		sessions = append(sessions, Session{Phase: phase, Identity: verifiedIdentity()})
	}
	return sessions
}

// enumerateProfiles covers not-yet-fetched, every status x customer-id
// presence, each with and without a fetch error.
func enumerateProfiles() []ProfileState {
	states := []ProfileState{{}, {FetchErr: true}}
	for _, status := range SubscriptionStatuses() {
		for _, customerID := range []string{"", "cus_1"} {
			for _, fetchErr := range []bool{false, true} {
				states = append(states, ProfileState{
					Profile:  &Profile{SubscriptionStatus: status, StripeCustomerID: customerID},
					FetchErr: fetchErr,
				})
			}
		}
	}
	return states
}

func enumerateZones() []Zone {
	// Zones() is the closed set; "mystery" stands in for any zone name the
	// table does not know.
	return append(Zones(), Zone("mystery"))
}

// TestDecideTotality walks the full finite input space and checks that every
// combination yields a well-formed verdict: a known kind, and for redirects a
// known target that differs from the current zone.
func TestDecideTotality(t *testing.T) {
	known := map[Zone]bool{}
	for _, z := range Zones() {
		known[z] = true
	}

	for _, session := range enumerateSessions() {
		for _, profile := range enumerateProfiles() {
			for _, zone := range enumerateZones() {
				verdict := Decide(session, profile, zone)
				label := fmt.Sprintf("session=%+v profile=%+v zone=%s", session, profile, zone)

				switch verdict.Kind {
				case VerdictAllow, VerdictDefer:
					assert.Equal(t, Zone(""), verdict.Target, label)
				case VerdictRedirect:
					assert.NotEqual(t, zone, verdict.Target, label)
					assert.True(t, known[verdict.Target], "redirect target must be a known zone: %s", label)
				default:
					t.Fatalf("unknown verdict kind %v for %s", verdict.Kind, label)
				}
			}
		}
	}
}

// TestDecideLoopFreedom re-evaluates every redirect at its target with
// unchanged session/profile state and requires the chain to reach Allow
// within a handful of hops. A cycle would exhaust the hop budget.
func TestDecideLoopFreedom(t *testing.T) {
	for _, session := range enumerateSessions() {
		for _, profile := range enumerateProfiles() {
			for _, zone := range enumerateZones() {
				verdict := Decide(session, profile, zone)
				if verdict.Kind != VerdictRedirect {
					continue
				}

				current := zone
				seen := map[Zone]bool{current: true}
				for hop := 0; verdict.Kind == VerdictRedirect; hop++ {
					require.Less(t, hop, len(Zones()),
						"redirect chain from %s did not terminate (session=%+v profile=%+v)", zone, session, profile)
					require.NotEqual(t, current, verdict.Target, "self-redirect at %s", current)
					require.False(t, seen[verdict.Target],
						"redirect cycle from %s revisits %s (session=%+v profile=%+v)", zone, verdict.Target, session, profile)

					current = verdict.Target
					seen[current] = true
					verdict = Decide(session, profile, current)
				}
				require.NotEqual(t, VerdictDefer, verdict.Kind,
					"redirect chain from %s ended in defer at %s", zone, current)
			}
		}
	}
}

// TestDecideFailClosedVerification: whenever the identity is unverified and
// the zone demands verification, the verdict is the email-verification
// redirect no matter what the subscription fields say.
func TestDecideFailClosedVerification(t *testing.T) {
	session := Session{Phase: PhaseReady, Identity: unverifiedIdentity()}
	for _, profile := range enumerateProfiles() {
		for _, zone := range enumerateZones() {
			if !zone.Requirements().RequiresVerification {
				continue
			}
			verdict := Decide(session, profile, zone)
			assert.Equal(t, Verdict{Kind: VerdictRedirect, Target: ZoneEmailVerification}, verdict,
				"zone=%s profile=%+v", zone, profile)
		}
	}
}

// TestDecideIncompletePaymentPrecedence: a customer reference with any
// non-active status resumes billing, taking precedence over the plain
// paywall redirect.
func TestDecideIncompletePaymentPrecedence(t *testing.T) {
	session := Session{Phase: PhaseReady, Identity: verifiedIdentity()}
	for _, status := range SubscriptionStatuses() {
		if status.Active() {
			continue
		}
		profile := profileWith(status, "cus_1")
		for _, zone := range []Zone{ZoneDashboard, ZoneShifts, ZoneInvoices} {
			verdict := Decide(session, profile, zone)
			assert.Equal(t, Verdict{Kind: VerdictRedirect, Target: ZoneBilling}, verdict,
				"status=%s zone=%s", status, zone)
		}
	}
}

func TestParseSubscriptionStatus(t *testing.T) {
	assert.Equal(t, StatusActive, ParseSubscriptionStatus("active"))
	assert.Equal(t, StatusTrialing, ParseSubscriptionStatus("trialing"))
	assert.Equal(t, StatusPastDue, ParseSubscriptionStatus("past_due"))
	assert.Equal(t, StatusCanceled, ParseSubscriptionStatus("canceled"))

	// Unknown and empty values must never grant access.
	assert.Equal(t, StatusNone, ParseSubscriptionStatus(""))
	assert.Equal(t, StatusNone, ParseSubscriptionStatus("incomplete_expired"))
	assert.Equal(t, StatusNone, ParseSubscriptionStatus("ACTIVE"))
}

func TestZoneRequirements(t *testing.T) {
	// The public set is exactly these six zones.
	publicZones := []Zone{ZoneWelcome, ZoneRegister, ZoneLogin, ZoneEmailVerification, ZoneSubscriptionRequired, ZoneBilling}
	publicSet := map[Zone]bool{}
	for _, z := range publicZones {
		publicSet[z] = true
		assert.True(t, z.Requirements().Public, "zone %s should be public", z)
	}
	for _, z := range Zones() {
		if !publicSet[z] {
			assert.False(t, z.Requirements().Public, "zone %s should not be public", z)
		}
	}

	// Unknown zones are maximally restrictive.
	unknown := Zone("mystery").Requirements()
	assert.False(t, unknown.Public)
	assert.False(t, unknown.LoadingTolerant)
	assert.True(t, unknown.RequiresVerification)
	assert.True(t, unknown.RequiresSubscription)

	_, ok := ParseZone("mystery")
	assert.False(t, ok)
	parsed, ok := ParseZone("dashboard")
	assert.True(t, ok)
	assert.Equal(t, ZoneDashboard, parsed)
}
