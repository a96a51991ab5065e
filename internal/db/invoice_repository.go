package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"shifttrack-backend-go/internal/models"
)

const (
	invoicesCollection = "invoices"
	countersCollection = "invoiceCounters"
)

// firestoreInvoiceRepository implements the InvoiceRepository interface using Firestore.
type firestoreInvoiceRepository struct {
	client *firestore.Client
}

// NewFirestoreInvoiceRepository creates a new instance of firestoreInvoiceRepository.
func NewFirestoreInvoiceRepository(client *firestore.Client) InvoiceRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for InvoiceRepository.")
	}
	return &firestoreInvoiceRepository{client: client}
}

// Create adds a new invoice document to Firestore with an auto-generated ID.
func (r *firestoreInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) (string, error) {
	docRef := r.client.Collection(invoicesCollection).NewDoc()
	invoice.ID = docRef.ID

	_, err := docRef.Create(ctx, invoice)
	if err != nil {
		return "", fmt.Errorf("failed to create invoice: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves an invoice document from Firestore by its ID.
func (r *firestoreInvoiceRepository) GetByID(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	if invoiceID == "" {
		return nil, errors.New("invoiceID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(invoicesCollection).Doc(invoiceID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("invoice with ID '%s' not found: %w", invoiceID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invoice with ID '%s': %w", invoiceID, err)
	}

	var invoice models.Invoice
	if err := docSnap.DataTo(&invoice); err != nil {
		return nil, fmt.Errorf("failed to decode invoice data for ID '%s': %w", invoiceID, err)
	}
	invoice.ID = docSnap.Ref.ID

	return &invoice, nil
}

// GetByUserID retrieves all invoices for a user, newest first.
// Pagination is basic: supports "limit" and "startAfter" (document ID).
func (r *firestoreInvoiceRepository) GetByUserID(ctx context.Context, userID string, paginationParams map[string]string) ([]*models.Invoice, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByUserID operation")
	}

	query := r.client.Collection(invoicesCollection).
		Where("userId", "==", userID).
		OrderBy("issuedAt", firestore.Desc)

	if limitStr, ok := paginationParams["limit"]; ok {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			query = query.Limit(limit)
		}
	}
	if startAfterDocID, ok := paginationParams["startAfter"]; ok && startAfterDocID != "" {
		startAfterSnap, err := r.client.Collection(invoicesCollection).Doc(startAfterDocID).Get(ctx)
		if err == nil {
			query = query.StartAfter(startAfterSnap)
		} else {
			log.Printf("Warning: Could not fetch startAfter document '%s': %v. Pagination may be affected.", startAfterDocID, err)
		}
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var invoices []*models.Invoice
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate invoices for user '%s': %w", userID, err)
		}

		var invoice models.Invoice
		if err := doc.DataTo(&invoice); err != nil {
			log.Printf("Error decoding invoice data (ID: %s) for user '%s': %v. Skipping.", doc.Ref.ID, userID, err)
			continue
		}
		invoice.ID = doc.Ref.ID
		invoices = append(invoices, &invoice)
	}

	return invoices, nil
}

// Delete removes an invoice document by its ID.
func (r *firestoreInvoiceRepository) Delete(ctx context.Context, invoiceID string) error {
	if invoiceID == "" {
		return errors.New("invoiceID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(invoicesCollection).Doc(invoiceID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete invoice with ID '%s': %w", invoiceID, err)
	}
	return nil
}

// NextNumber atomically advances the user's invoice sequence for a year
// inside a Firestore transaction, so two concurrent generations can never
// share a number. The counter document is keyed "<userID>-<year>".
func (r *firestoreInvoiceRepository) NextNumber(ctx context.Context, userID string, year int) (int64, error) {
	if userID == "" {
		return 0, errors.New("userID cannot be empty for NextNumber operation")
	}

	counterRef := r.client.Collection(countersCollection).Doc(fmt.Sprintf("%s-%d", userID, year))
	var next int64

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(counterRef)
		switch {
		case status.Code(err) == codes.NotFound:
			next = 1
		case err != nil:
			return err
		default:
			current, err := snap.DataAt("value")
			if err != nil {
				return err
			}
			v, ok := current.(int64)
			if !ok {
				return fmt.Errorf("invoice counter '%s' holds non-integer value", counterRef.ID)
			}
			next = v + 1
		}
		return tx.Set(counterRef, map[string]interface{}{"value": next})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance invoice counter for user '%s' year %d: %w", userID, year, err)
	}

	return next, nil
}
