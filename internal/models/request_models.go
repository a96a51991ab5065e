package models

import "time"

// StartShiftRequest represents the request body for starting a shift.
// An empty body is valid; the shift starts "now" with the user's current rate.
type StartShiftRequest struct {
	Note string `json:"note,omitempty"`
}

// CreateShiftRequest represents the request body for a manual shift entry
// (e.g. a shift the user forgot to track live). Breaks are optional and must
// fall inside the shift window.
type CreateShiftRequest struct {
	StartTime time.Time  `json:"startTime" binding:"required"`
	EndTime   time.Time  `json:"endTime" binding:"required"`
	Note      string     `json:"note,omitempty"`
	Breaks    []Break    `json:"breaks,omitempty"`
	// RateCents overrides the user's current hourly rate when set.
	RateCents *int64 `json:"rateCents,omitempty"`
}

// UpdateShiftRequest represents the request body for editing a shift.
// Pointers distinguish "not provided" from an explicit zero value.
type UpdateShiftRequest struct {
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Note      *string    `json:"note,omitempty"`
	Breaks    *[]Break   `json:"breaks,omitempty"`
	RateCents *int64     `json:"rateCents,omitempty"`
}

// UpdateSettingsRequest represents the request body for updating the user's
// work settings and invoice sender details.
type UpdateSettingsRequest struct {
	HourlyRateCents *int64  `json:"hourlyRateCents,omitempty"`
	Currency        *string `json:"currency,omitempty"`
	BusinessName    *string `json:"businessName,omitempty"`
	Street          *string `json:"street,omitempty"`
	City            *string `json:"city,omitempty"`
	PostalCode      *string `json:"postalCode,omitempty"`
	Country         *string `json:"country,omitempty"`
	TaxID           *string `json:"taxId,omitempty"`
}

// GenerateInvoiceRequest represents the request body for generating an
// invoice from the caller's ended shifts within a period.
type GenerateInvoiceRequest struct {
	PeriodStart   time.Time `json:"periodStart" binding:"required"`
	PeriodEnd     time.Time `json:"periodEnd" binding:"required"`
	ClientName    string    `json:"clientName" binding:"required"`
	ClientAddress string    `json:"clientAddress,omitempty"`
	// TaxRatePct overrides the configured default tax rate when set.
	TaxRatePct *float64 `json:"taxRatePct,omitempty"`
}
