package access

// Zone is a named region of the application's route space. Every zone carries
// a fixed access requirement; the decision engine never inspects raw paths,
// only zones.
type Zone string

const (
	ZoneWelcome              Zone = "welcome"
	ZoneRegister             Zone = "register"
	ZoneLogin                Zone = "login"
	ZoneEmailVerification    Zone = "email-verification"
	ZoneSubscriptionRequired Zone = "subscription-required"
	ZoneBilling              Zone = "billing"
	ZoneDashboard            Zone = "dashboard"
	ZoneShifts               Zone = "shifts"
	ZoneInvoices             Zone = "invoices"
	ZoneSettings             Zone = "settings"
)

// Requirements describes what a zone demands from the caller before its
// content may be served.
type Requirements struct {
	// Public zones are reachable without an authenticated identity.
	Public bool
	// LoadingTolerant zones may be served while the auth bootstrap is still
	// in flight (session phase not yet ready).
	LoadingTolerant bool
	// RequiresVerification zones demand a verified email address.
	RequiresVerification bool
	// RequiresSubscription zones demand an active subscription.
	RequiresSubscription bool
}

// zoneTable is the closed set of zones. The public set is exactly
// {welcome, register, login, email-verification, subscription-required,
// billing}; anything else requires an identity.
var zoneTable = map[Zone]Requirements{
	ZoneWelcome:              {Public: true, LoadingTolerant: true},
	ZoneRegister:             {Public: true, LoadingTolerant: true},
	ZoneLogin:                {Public: true, LoadingTolerant: true},
	ZoneEmailVerification:    {Public: true},
	ZoneSubscriptionRequired: {Public: true},
	ZoneBilling:              {Public: true},
	ZoneDashboard:            {RequiresVerification: true, RequiresSubscription: true},
	ZoneShifts:               {RequiresVerification: true, RequiresSubscription: true},
	ZoneInvoices:             {RequiresVerification: true, RequiresSubscription: true},
	ZoneSettings:             {RequiresVerification: true},
}

// zonePaths maps each zone to the client route the guard redirects to.
var zonePaths = map[Zone]string{
	ZoneWelcome:              "/",
	ZoneRegister:             "/register",
	ZoneLogin:                "/login",
	ZoneEmailVerification:    "/verify-email",
	ZoneSubscriptionRequired: "/subscribe",
	ZoneBilling:              "/billing",
	ZoneDashboard:            "/dashboard",
	ZoneShifts:               "/shifts",
	ZoneInvoices:             "/invoices",
	ZoneSettings:             "/settings",
}

// ParseZone validates a zone name received from a client.
func ParseZone(raw string) (Zone, bool) {
	z := Zone(raw)
	_, ok := zoneTable[z]
	return z, ok
}

// Requirements returns the access requirements for the zone. Unknown zones
// report the most restrictive requirements so a typo can never widen access.
func (z Zone) Requirements() Requirements {
	req, ok := zoneTable[z]
	if !ok {
		return Requirements{RequiresVerification: true, RequiresSubscription: true}
	}
	return req
}

// Path returns the client route for the zone, used as the redirect target.
func (z Zone) Path() string {
	if p, ok := zonePaths[z]; ok {
		return p
	}
	return zonePaths[ZoneWelcome]
}

// Zones returns every known zone. Used by the exhaustive verdict enumeration.
func Zones() []Zone {
	return []Zone{
		ZoneWelcome, ZoneRegister, ZoneLogin, ZoneEmailVerification,
		ZoneSubscriptionRequired, ZoneBilling, ZoneDashboard, ZoneShifts,
		ZoneInvoices, ZoneSettings,
	}
}
