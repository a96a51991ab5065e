package models

import "time"

// User represents a user profile in the system. It carries the subscription
// fields access control depends on and the sender details used when
// generating invoices.
type User struct {
	ID            string `json:"id" firestore:"-"` // Firebase Auth UID, will be the document ID
	Email         string `json:"email" firestore:"email"`
	DisplayName   string `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	EmailVerified bool   `json:"emailVerified" firestore:"emailVerified"` // mirrored from the ID token at initialize time

	// Work settings used for earnings computation. HourlyRateCents is in the
	// smallest currency unit per hour.
	HourlyRateCents int64  `json:"hourlyRateCents" firestore:"hourlyRateCents"`
	Currency        string `json:"currency" firestore:"currency"` // ISO 4217, e.g. "EUR"

	// Invoice sender details.
	BusinessName string `json:"businessName,omitempty" firestore:"businessName,omitempty"`
	Street       string `json:"street,omitempty" firestore:"street,omitempty"`
	City         string `json:"city,omitempty" firestore:"city,omitempty"`
	PostalCode   string `json:"postalCode,omitempty" firestore:"postalCode,omitempty"`
	Country      string `json:"country,omitempty" firestore:"country,omitempty"`
	TaxID        string `json:"taxId,omitempty" firestore:"taxId,omitempty"`

	// Subscription state, written by the billing webhook. SubscriptionStatus
	// is stored as the raw provider string and parsed into a closed set at
	// the access-control boundary.
	SubscriptionStatus   string `json:"subscriptionStatus,omitempty" firestore:"subscriptionStatus,omitempty"` // e.g., "active", "canceled"
	SubscriptionTier     string `json:"subscriptionTier,omitempty" firestore:"subscriptionTier,omitempty"`     // e.g., "monthly", "yearly"
	StripeCustomerID     string `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string `json:"stripeSubscriptionId,omitempty" firestore:"stripeSubscriptionId,omitempty"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
