package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shifttrack-backend-go/internal/access"
	"shifttrack-backend-go/internal/core"
	"shifttrack-backend-go/internal/db"
	"shifttrack-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (Logging, Recovery, CORS) are applied to the
// router instance before this function is called, typically in main.go.
//
// Route groups are mapped onto access zones: a group guarded with a zone gets
// exactly the decision the client-side router would get for that zone, so
// the server is the enforcement point and the client is a mirror.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	caches *access.CacheSet,
	userService core.UserService,
	shiftService core.ShiftService,
	invoiceService core.InvoiceService,
	billingService core.BillingService,
) {
	// Firebase Auth must be available after db.InitFirestore().
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("Firebase Auth client is not initialized; routes cannot be secured")
		panic("Firebase Auth client is nil during route setup")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient, caches, logger)
	guard := middleware.NewZoneGuard(caches, logger)

	authHandler := NewAuthHandler(userService, firebaseAuthClient, caches, logger)
	userHandler := NewUserHandler(userService, caches, logger)
	accessHandler := NewAccessHandler(caches)
	shiftHandler := NewShiftHandler(shiftService, logger)
	invoiceHandler := NewInvoiceHandler(invoiceService, logger)
	billingHandler := NewBillingHandler(billingService, logger)

	apiV1 := router.Group("/api/v1")
	{
		// --- Access decisions for the client-side router ---
		// Identify only, no guard: anonymous callers must be able to ask.
		accessGroup := apiV1.Group("/access", authMW.Identify())
		{
			accessGroup.GET("/verdict", accessHandler.GetVerdict)
			accessGroup.GET("/profile-state", accessHandler.GetProfileState)
		}

		// --- User and authentication endpoints ---
		userGroup := apiV1.Group("/users")
		{
			// Called after client-side Firebase login/signup to ensure the
			// backend profile exists.
			userGroup.POST("/initialize", authMW.VerifyToken(), authHandler.InitializeUserProfile)
			userGroup.GET("/me", authMW.VerifyToken(), userHandler.GetCurrentUserProfile)
			userGroup.POST("/me/refresh-profile", authMW.VerifyToken(), userHandler.RefreshProfile)

			// Settings require a verified email but no subscription.
			userGroup.PATCH("/me/settings",
				authMW.Identify(), guard.Require(access.ZoneSettings), userHandler.UpdateSettings)
		}

		apiV1.POST("/auth/signout", authMW.VerifyToken(), authHandler.SignOut)

		// --- Shift endpoints ---
		shiftsGroup := apiV1.Group("/shifts", authMW.Identify(), guard.Require(access.ZoneShifts))
		{
			shiftsGroup.POST("/start", shiftHandler.StartShift)
			shiftsGroup.GET("/active", shiftHandler.GetActiveShift)
			shiftsGroup.GET("/summary", shiftHandler.GetSummary)
			shiftsGroup.POST("/:shiftId/end", shiftHandler.EndShift)
			shiftsGroup.POST("/:shiftId/breaks/start", shiftHandler.StartBreak)
			shiftsGroup.POST("/:shiftId/breaks/end", shiftHandler.EndBreak)
			shiftsGroup.POST("", shiftHandler.CreateShift)
			shiftsGroup.GET("", shiftHandler.ListShifts)
			shiftsGroup.PATCH("/:shiftId", shiftHandler.UpdateShift)
			shiftsGroup.DELETE("/:shiftId", shiftHandler.DeleteShift)
		}

		// --- Invoice endpoints ---
		invoicesGroup := apiV1.Group("/invoices", authMW.Identify(), guard.Require(access.ZoneInvoices))
		{
			invoicesGroup.POST("", invoiceHandler.GenerateInvoice)
			invoicesGroup.GET("", invoiceHandler.ListInvoices)
			invoicesGroup.GET("/:invoiceId", invoiceHandler.GetInvoice)
			invoicesGroup.DELETE("/:invoiceId", invoiceHandler.DeleteInvoice)
			invoicesGroup.GET("/:invoiceId/pdf", invoiceHandler.DownloadInvoicePDF)
			invoicesGroup.GET("/:invoiceId/csv", invoiceHandler.DownloadInvoiceCSV)
		}

		// --- Billing endpoints ---
		// The billing zone is public so a user with an incomplete payment can
		// always reach it, but checkout/portal still need a caller identity.
		billingGroup := apiV1.Group("/billing")
		{
			billingGroup.POST("/create-checkout-session", authMW.VerifyToken(), billingHandler.CreateCheckoutSession)
			billingGroup.POST("/create-portal-session", authMW.VerifyToken(), billingHandler.CreatePortalSession)

			// Public webhook endpoint: Stripe authenticates via signature.
			billingGroup.POST("/webhooks/stripe", billingHandler.HandleStripeWebhook)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "ShiftTrack backend is healthy."})
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
