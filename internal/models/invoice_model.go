package models

import "time"

// InvoiceItem is one billed line on an invoice: the shifts of a single day
// collapsed into minutes, rate and amount.
type InvoiceItem struct {
	Date        time.Time `json:"date" firestore:"date"`
	Description string    `json:"description" firestore:"description"`
	Minutes     int64     `json:"minutes" firestore:"minutes"`
	RateCents   int64     `json:"rateCents" firestore:"rateCents"`
	AmountCents int64     `json:"amountCents" firestore:"amountCents"`
}

// Invoice is a generated invoice over a period of ended shifts. Amounts are
// in the smallest currency unit. Number is a per-user sequence in the form
// "INV-<year>-<seq>".
type Invoice struct {
	ID            string        `json:"id" firestore:"-"`
	UserID        string        `json:"userId" firestore:"userId"`
	Number        string        `json:"number" firestore:"number"`
	PeriodStart   time.Time     `json:"periodStart" firestore:"periodStart"`
	PeriodEnd     time.Time     `json:"periodEnd" firestore:"periodEnd"`
	ClientName    string        `json:"clientName" firestore:"clientName"`
	ClientAddress string        `json:"clientAddress,omitempty" firestore:"clientAddress,omitempty"`
	Items         []InvoiceItem `json:"items" firestore:"items"`
	SubtotalCents int64         `json:"subtotalCents" firestore:"subtotalCents"`
	TaxRatePct    float64       `json:"taxRatePct" firestore:"taxRatePct"`
	TaxCents      int64         `json:"taxCents" firestore:"taxCents"`
	TotalCents    int64         `json:"totalCents" firestore:"totalCents"`
	Currency      string        `json:"currency" firestore:"currency"`
	IssuedAt      time.Time     `json:"issuedAt" firestore:"issuedAt"`
	CreatedAt     time.Time     `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
