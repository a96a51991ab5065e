package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shifttrack-backend-go/internal/access"
	"shifttrack-backend-go/internal/middleware"
)

// AccessHandler answers access decisions for the client-side router. The
// mobile app asks "may I show this zone?" before navigating, so its routing
// mirrors the server-side guards exactly.
type AccessHandler struct {
	caches *access.CacheSet
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(caches *access.CacheSet) *AccessHandler {
	return &AccessHandler{caches: caches}
}

// GetVerdict handles GET /api/v1/access/verdict?zone=<zone>.
// The zone parameter is required. Unknown zone names are still evaluated; the
// engine treats them with the most restrictive requirements, so a typo in the
// client can never open a door.
func (h *AccessHandler) GetVerdict(c *gin.Context) {
	raw := c.Query("zone")
	if raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "zone query parameter is required"})
		return
	}
	zone, _ := access.ParseZone(raw)

	session := middleware.SessionFromContext(c)
	var profile access.ProfileState
	if session.Identity != nil {
		profile = h.caches.Snapshot(session.Identity.ID)
	}

	verdict := access.Decide(session, profile, zone)
	resp := VerdictResponse{Zone: raw}
	switch verdict.Kind {
	case access.VerdictAllow:
		resp.Verdict = "allow"
	case access.VerdictRedirect:
		resp.Verdict = "redirect"
		resp.RedirectTo = string(verdict.Target)
	case access.VerdictDefer:
		resp.Verdict = "defer"
	}

	c.JSON(http.StatusOK, resp)
}

// GetProfileState handles GET /api/v1/access/profile-state.
// It exposes the caller's cached subscription view, including the fetch-failed
// flag, so the client can show a "billing state may be outdated" banner.
func (h *AccessHandler) GetProfileState(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	if session.Identity == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	state := h.caches.Snapshot(session.Identity.ID)
	resp := ProfileStateResponse{
		SubscriptionStatus: string(access.StatusNone),
		FetchFailed:        state.FetchErr,
	}
	if state.Profile != nil {
		resp.Loaded = true
		resp.SubscriptionStatus = string(state.Profile.SubscriptionStatus)
		resp.SubscriptionTier = state.Profile.SubscriptionTier
		resp.StripeCustomerID = state.Profile.StripeCustomerID
	}

	c.JSON(http.StatusOK, resp)
}
