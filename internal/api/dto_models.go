package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// VerdictResponse is the wire form of an access decision, used by the mobile
// client's router to mirror server-side guarding.
type VerdictResponse struct {
	Verdict    string `json:"verdict"`              // "allow", "redirect" or "defer"
	Zone       string `json:"zone"`                 // the zone that was asked about
	RedirectTo string `json:"redirectTo,omitempty"` // target zone, only for "redirect"
}

// SignOutResponse tells the client where to land after a completed sign-out.
type SignOutResponse struct {
	Message        string `json:"message"`
	RedirectTo     string `json:"redirectTo"`
	ReplaceHistory bool   `json:"replaceHistory"`
}

// ProfileStateResponse exposes the cached profile view for the caller,
// including whether the last fetch failed and a stale value is being served.
type ProfileStateResponse struct {
	SubscriptionStatus string `json:"subscriptionStatus"`
	SubscriptionTier   string `json:"subscriptionTier,omitempty"`
	StripeCustomerID   string `json:"stripeCustomerId,omitempty"`
	FetchFailed        bool   `json:"fetchFailed"`
	Loaded             bool   `json:"loaded"`
}
