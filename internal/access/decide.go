package access

// Identity is the authenticated principal as reported by the auth provider.
type Identity struct {
	ID            string
	Email         string
	EmailVerified bool
}

// Phase tracks the auth bootstrap. Until the provider has reported at least
// one event the session is not ready and most zones must not be served.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseReady
)

// Session is the decision engine's view of the session store: the bootstrap
// phase and the current identity, or nil when signed out.
type Session struct {
	Phase    Phase
	Identity *Identity
}

// Profile is the subscription/billing record associated with an identity.
// A non-empty StripeCustomerID means checkout was at least started.
type Profile struct {
	SubscriptionStatus SubscriptionStatus
	SubscriptionTier   string
	StripeCustomerID   string
}

// ProfileState is the decision engine's view of the profile cache.
// Profile == nil means no fetch has completed yet for the current identity,
// which is distinct from a fetched profile with StatusNone. FetchErr is set
// when the last refresh failed; the cached Profile then holds stale data.
type ProfileState struct {
	Profile  *Profile
	FetchErr bool
}

// VerdictKind enumerates the engine's outcomes.
type VerdictKind int

const (
	// VerdictAllow: serve the requested zone.
	VerdictAllow VerdictKind = iota
	// VerdictRedirect: navigate to Target instead, replacing history.
	VerdictRedirect
	// VerdictDefer: the auth bootstrap is still in flight; show a loading
	// state and re-evaluate later. Not a redirect.
	VerdictDefer
)

// Verdict is the engine's output. Target is set only for VerdictRedirect.
type Verdict struct {
	Kind   VerdictKind
	Target Zone
}

func allow() Verdict { return Verdict{Kind: VerdictAllow} }

// redirect builds a redirect verdict, degrading to Allow when the target is
// the zone the caller is already on. This single check is what makes every
// rule below loop-free: no verdict ever sends a caller to its current zone.
func redirect(current, target Zone) Verdict {
	if current == target {
		return allow()
	}
	return Verdict{Kind: VerdictRedirect, Target: target}
}

// Decide is the access control decision engine: a pure, total function from
// session state, profile state and the zone being entered to a verdict.
//
// The rules are evaluated in order and the first match wins. The order is
// significant — the inputs are not mutually exclusive — and must not be
// rearranged.
func Decide(session Session, profile ProfileState, current Zone) Verdict {
	req := current.Requirements()

	// 1. Auth bootstrap not finished: only loading-tolerant zones may be
	// served; everything else defers (no redirect is issued yet).
	if session.Phase != PhaseReady {
		if req.LoadingTolerant {
			return allow()
		}
		return Verdict{Kind: VerdictDefer}
	}

	// 2. No identity: public zones are open, everything else goes to login.
	if session.Identity == nil {
		if req.Public {
			return allow()
		}
		return redirect(current, ZoneLogin)
	}

	// 3. Verification-gated zone with no usable profile data: fail closed.
	// Missing or errored verification evidence is treated as "not verified"
	// rather than granting access.
	if req.RequiresVerification && (profile.Profile == nil || profile.FetchErr) {
		return redirect(current, ZoneEmailVerification)
	}

	// 4. Verification-gated zone, identity not verified.
	if req.RequiresVerification && !session.Identity.EmailVerified {
		return redirect(current, ZoneEmailVerification)
	}

	// 5. Profile refresh errored on a zone with no subscription check:
	// corrupted-profile cleanup path back to welcome.
	if profile.FetchErr && !req.RequiresSubscription {
		return redirect(current, ZoneWelcome)
	}

	// 6. Subscription-gated zone. A nil profile (record not yet created by
	// the backend) is read as status none with no customer reference.
	if req.RequiresSubscription {
		status := StatusNone
		customerID := ""
		if profile.Profile != nil {
			status = profile.Profile.SubscriptionStatus
			customerID = profile.Profile.StripeCustomerID
		}
		switch {
		case customerID != "" && !status.Active():
			// Checkout was started but never completed: resume it rather
			// than restarting from the paywall.
			return redirect(current, ZoneBilling)
		case status == StatusNone:
			return redirect(current, ZoneSubscriptionRequired)
		case status.Active():
			return allow()
		default:
			// Present but inactive (e.g. canceled) with no customer ref.
			return redirect(current, ZoneSubscriptionRequired)
		}
	}

	// 7. Active subscriber parked on the paywall: move them to the app.
	if current == ZoneSubscriptionRequired && profile.Profile != nil && profile.Profile.SubscriptionStatus.Active() {
		return redirect(current, ZoneDashboard)
	}

	// 8. Nothing withheld access.
	return allow()
}
