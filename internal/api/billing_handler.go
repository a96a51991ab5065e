package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shifttrack-backend-go/internal/core"
)

// BillingHandler handles billing-related API endpoints.
type BillingHandler struct {
	billingService core.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService, logger *zap.Logger) *BillingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingHandler{billingService: bs, logger: logger}
}

// CreateCheckoutSessionRequest defines the structure for creating a Stripe
// Checkout session.
type CreateCheckoutSessionRequest struct {
	PriceID string `json:"priceId" binding:"required"`
}

// CreateCheckoutSessionResponse returns the URL of the created Stripe
// Checkout session for the client to open.
type CreateCheckoutSessionResponse struct {
	URL string `json:"url"`
}

// CreatePortalSessionResponse returns the URL for the Stripe Customer Portal.
type CreatePortalSessionResponse struct {
	URL string `json:"url"`
}

// mapBillingErrorToStatus maps errors from core.BillingService to HTTP status
// codes and an ErrorResponse body.
func (h *BillingHandler) mapBillingErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrStripeClient):
		// 503 points at the upstream payment provider, not this server.
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: "Payment provider error", Details: "Could not complete the operation with the payment provider."}
		h.logger.Error("Stripe client error", zap.Error(err))
	case errors.Is(err, core.ErrWebhookSignature):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Webhook signature verification failed"}
	case errors.Is(err, core.ErrWebhookProcessing):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Webhook processing error", Details: err.Error()}
	case errors.Is(err, core.ErrUserStripeNotLinked):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "User not linked to payment provider", Details: err.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "User profile not found"}
	default:
		h.logger.Error("Unexpected billing service error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// CreateCheckoutSession handles POST /api/v1/billing/create-checkout-session.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	checkoutURL, err := h.billingService.CreateCheckoutSession(c.Request.Context(), userID, req.PriceID)
	if err != nil {
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CreateCheckoutSessionResponse{URL: checkoutURL})
}

// CreatePortalSession handles POST /api/v1/billing/create-portal-session.
func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	portalURL, err := h.billingService.CreatePortalSession(c.Request.Context(), userID)
	if err != nil {
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CreatePortalSessionResponse{URL: portalURL})
}

// HandleStripeWebhook handles POST /api/v1/billing/webhooks/stripe.
// This endpoint is public: Stripe authenticates itself via the
// Stripe-Signature header, verified inside the billing service.
func (h *BillingHandler) HandleStripeWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing Stripe-Signature header"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read Stripe webhook payload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read webhook payload", Details: err.Error()})
		return
	}

	if err := h.billingService.HandleStripeWebhook(c.Request.Context(), signature, payload); err != nil {
		h.logger.Warn("Stripe webhook rejected", zap.Error(err))
		h.mapBillingErrorToStatus(c, err)
		return
	}

	// Stripe expects a 2xx to acknowledge receipt.
	c.JSON(http.StatusOK, SuccessResponse{Message: "Webhook received successfully"})
}
