package access

// SubscriptionStatus is the closed set of subscription states the engine
// reasons about. The backend stores a free-form string (whatever the payment
// provider last reported); it is parsed into this set at the boundary.
type SubscriptionStatus string

const (
	StatusNone     SubscriptionStatus = "none"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusActive   SubscriptionStatus = "active"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
)

// ParseSubscriptionStatus maps a raw backend value into the closed set.
// Unknown or empty values map to StatusNone, the safe default: an
// unrecognised status must never grant access.
func ParseSubscriptionStatus(raw string) SubscriptionStatus {
	switch SubscriptionStatus(raw) {
	case StatusTrialing:
		return StatusTrialing
	case StatusActive:
		return StatusActive
	case StatusPastDue:
		return StatusPastDue
	case StatusCanceled:
		return StatusCanceled
	default:
		return StatusNone
	}
}

// Active reports whether the status grants access to subscription-gated zones.
func (s SubscriptionStatus) Active() bool {
	return s == StatusActive
}

// SubscriptionStatuses returns every member of the closed set, for the
// exhaustive verdict enumeration.
func SubscriptionStatuses() []SubscriptionStatus {
	return []SubscriptionStatus{StatusNone, StatusTrialing, StatusActive, StatusPastDue, StatusCanceled}
}
