package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"shifttrack-backend-go/internal/access"
	"shifttrack-backend-go/internal/config"
	"shifttrack-backend-go/internal/db"
)

// Errors for billing operations.
var (
	ErrStripeClient        = errors.New("stripe client operation failed")
	ErrWebhookProcessing   = errors.New("stripe webhook processing failed")
	ErrWebhookSignature    = errors.New("stripe webhook signature verification failed")
	ErrUserStripeNotLinked = errors.New("user does not have a Stripe customer ID")
)

// billingService implements the BillingService interface against the Stripe
// API. Subscription state flows back in through the webhook handler, which
// persists it on the user profile and refreshes the access-control profile
// cache so verdicts pick it up without waiting for an explicit refresh.
type billingService struct {
	users     UserService
	userRepo  db.UserRepository
	caches    *access.CacheSet
	appConfig *config.Config
	logger    *zap.Logger
}

// NewBillingService creates a billing service and sets the global Stripe key.
// The raw UserRepository is needed alongside UserService for the
// customer-ID-to-user lookup webhooks depend on.
func NewBillingService(users UserService, userRepo db.UserRepository, caches *access.CacheSet, cfg *config.Config, logger *zap.Logger) BillingService {
	stripe.Key = cfg.StripeSecretKey
	if logger == nil {
		logger = zap.NewNop()
	}
	return &billingService{
		users:     users,
		userRepo:  userRepo,
		caches:    caches,
		appConfig: cfg,
		logger:    logger,
	}
}

// ensureCustomer returns the user's Stripe customer ID, creating the
// customer on first use. The ID is persisted immediately so an abandoned
// checkout is still observable as "checkout at least started".
func (s *billingService) ensureCustomer(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{Email: stripe.String(user.Email)}
	params.AddMetadata("userId", userID)
	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: creating customer for user '%s': %v", ErrStripeClient, userID, err)
	}

	custID := cust.ID
	if _, err := s.users.ApplySubscriptionUpdate(ctx, userID, SubscriptionUpdate{CustomerID: &custID}); err != nil {
		return "", err
	}
	if s.caches != nil {
		if err := s.caches.Refresh(ctx, userID); err != nil {
			s.logger.Warn("profile cache refresh after customer creation failed", zap.String("userId", userID), zap.Error(err))
		}
	}
	return custID, nil
}

// CreateCheckoutSession creates a Stripe Checkout session in subscription
// mode for the given price and returns its URL.
func (s *billingService) CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error) {
	custID, err := s.ensureCustomer(ctx, userID)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(custID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(s.appConfig.ClientURL + "/billing?checkout=success"),
		CancelURL:         stripe.String(s.appConfig.ClientURL + "/billing?checkout=canceled"),
	}
	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: creating checkout session for user '%s': %v", ErrStripeClient, userID, err)
	}
	return sess.URL, nil
}

// CreatePortalSession creates a Stripe Customer Portal session for a user
// that already has a Stripe customer, and returns its URL.
func (s *billingService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID == "" {
		return "", fmt.Errorf("%w for user %s", ErrUserStripeNotLinked, userID)
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(s.appConfig.ClientURL + "/billing"),
	}
	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: creating portal session for user '%s': %v", ErrStripeClient, userID, err)
	}
	return sess.URL, nil
}

// HandleStripeWebhook verifies the event signature and applies subscription
// state changes to the user profile. Unhandled event types are acknowledged
// without action.
func (s *billingService) HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error {
	event, err := webhook.ConstructEvent(payload, signature, s.appConfig.StripeWebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("%w: decoding checkout session: %v", ErrWebhookProcessing, err)
		}
		return s.applyCheckoutCompleted(ctx, &sess)

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%w: decoding subscription: %v", ErrWebhookProcessing, err)
		}
		return s.applySubscriptionEvent(ctx, string(event.Type), &sub)

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("%w: decoding invoice: %v", ErrWebhookProcessing, err)
		}
		return s.applyPaymentFailed(ctx, &inv)

	default:
		s.logger.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
		return nil
	}
}

// resolveUserID maps a Stripe customer reference to our user ID.
func (s *billingService) resolveUserID(ctx context.Context, customerID string) (string, error) {
	user, err := s.userRepo.GetByStripeCustomerID(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("%w: resolving customer '%s': %v", ErrWebhookProcessing, customerID, err)
	}
	return user.ID, nil
}

func (s *billingService) applyUpdate(ctx context.Context, userID string, upd SubscriptionUpdate) error {
	if _, err := s.users.ApplySubscriptionUpdate(ctx, userID, upd); err != nil {
		return fmt.Errorf("%w: persisting subscription state for user '%s': %v", ErrWebhookProcessing, userID, err)
	}
	if s.caches != nil {
		if err := s.caches.Refresh(ctx, userID); err != nil {
			// Stale cache is tolerated: the client's next explicit refresh
			// will converge. The webhook itself succeeded.
			s.logger.Warn("profile cache refresh after webhook failed", zap.String("userId", userID), zap.Error(err))
		}
	}
	return nil
}

func (s *billingService) applyCheckoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	userID := sess.ClientReferenceID
	if userID == "" && sess.Customer != nil {
		resolved, err := s.resolveUserID(ctx, sess.Customer.ID)
		if err != nil {
			return err
		}
		userID = resolved
	}
	if userID == "" {
		return fmt.Errorf("%w: checkout session without user reference", ErrWebhookProcessing)
	}

	upd := SubscriptionUpdate{}
	if sess.Customer != nil {
		upd.CustomerID = stripe.String(sess.Customer.ID)
	}
	if sess.Subscription != nil {
		upd.SubscriptionID = stripe.String(sess.Subscription.ID)
	}
	// The authoritative status arrives with customer.subscription.* events;
	// checkout completion only links the references.
	s.logger.Info("checkout completed", zap.String("userId", userID))
	return s.applyUpdate(ctx, userID, upd)
}

func (s *billingService) applySubscriptionEvent(ctx context.Context, eventType string, sub *stripe.Subscription) error {
	if sub.Customer == nil {
		return fmt.Errorf("%w: subscription event without customer", ErrWebhookProcessing)
	}
	userID, err := s.resolveUserID(ctx, sub.Customer.ID)
	if err != nil {
		return err
	}

	status := string(sub.Status)
	if eventType == "customer.subscription.deleted" {
		status = string(stripe.SubscriptionStatusCanceled)
	}

	upd := SubscriptionUpdate{
		Status:         stripe.String(status),
		SubscriptionID: stripe.String(sub.ID),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		tier := sub.Items.Data[0].Price.Nickname
		if tier == "" {
			tier = sub.Items.Data[0].Price.ID
		}
		upd.Tier = stripe.String(tier)
	}

	s.logger.Info("subscription state change",
		zap.String("userId", userID),
		zap.String("event", eventType),
		zap.String("status", status))
	return s.applyUpdate(ctx, userID, upd)
}

func (s *billingService) applyPaymentFailed(ctx context.Context, inv *stripe.Invoice) error {
	if inv.Customer == nil {
		return fmt.Errorf("%w: invoice event without customer", ErrWebhookProcessing)
	}
	userID, err := s.resolveUserID(ctx, inv.Customer.ID)
	if err != nil {
		return err
	}
	status := string(stripe.SubscriptionStatusPastDue)
	s.logger.Warn("payment failed", zap.String("userId", userID))
	return s.applyUpdate(ctx, userID, SubscriptionUpdate{Status: &status})
}
