package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shifttrack-backend-go/internal/access"
	"shifttrack-backend-go/internal/core"
	"shifttrack-backend-go/internal/models"
)

// UserHandler handles user-profile related API endpoints.
type UserHandler struct {
	userService core.UserService
	caches      *access.CacheSet
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, caches *access.CacheSet, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{userService: us, caches: caches, logger: logger}
}

// GetCurrentUserProfile handles the GET /api/v1/users/me endpoint.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}
		h.logger.Error("Failed to load user profile", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve user profile", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateSettings handles the PATCH /api/v1/users/me/settings endpoint.
// Only the fields present in the payload are changed; the business address and
// hourly rate configured here flow into new shifts and invoices.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	user, err := h.userService.UpdateSettings(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
		case errors.Is(err, core.ErrInvalidHourlyRate):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid hourly rate", Details: err.Error()})
		default:
			h.logger.Error("Failed to update settings", zap.String("userID", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update settings", Details: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// RefreshProfile handles the POST /api/v1/users/me/refresh-profile endpoint.
// Clients call it after returning from Stripe Checkout so the access cache
// picks up the new subscription state immediately instead of waiting for the
// webhook. A failed fetch is reported but the cached state survives: the
// response carries the last known view either way.
func (h *UserHandler) RefreshProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	refreshErr := h.caches.Refresh(c.Request.Context(), userID)
	state := h.caches.Snapshot(userID)

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

	if refreshErr != nil {
		h.logger.Warn("Profile refresh failed, serving cached state", zap.String("userID", userID), zap.Error(refreshErr))
		// 200 with fetchFailed=true: the stale value is still usable.
	}
	c.JSON(http.StatusOK, resp)
}
