package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"shifttrack-backend-go/internal/models"
)

const shiftsCollection = "shifts"

// firestoreShiftRepository implements the ShiftRepository interface using Firestore.
type firestoreShiftRepository struct {
	client *firestore.Client
}

// NewFirestoreShiftRepository creates a new instance of firestoreShiftRepository.
func NewFirestoreShiftRepository(client *firestore.Client) ShiftRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ShiftRepository.")
	}
	return &firestoreShiftRepository{client: client}
}

// Create adds a new shift document to Firestore with an auto-generated ID.
// It sets shift.ID with the new document ID before creation.
func (r *firestoreShiftRepository) Create(ctx context.Context, shift *models.Shift) (string, error) {
	docRef := r.client.Collection(shiftsCollection).NewDoc()
	shift.ID = docRef.ID

	_, err := docRef.Create(ctx, shift)
	if err != nil {
		return "", fmt.Errorf("failed to create shift: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a shift document from Firestore by its ID.
func (r *firestoreShiftRepository) GetByID(ctx context.Context, shiftID string) (*models.Shift, error) {
	if shiftID == "" {
		return nil, errors.New("shiftID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(shiftsCollection).Doc(shiftID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("shift with ID '%s' not found: %w", shiftID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get shift with ID '%s': %w", shiftID, err)
	}

	var shift models.Shift
	if err := docSnap.DataTo(&shift); err != nil {
		return nil, fmt.Errorf("failed to decode shift data for ID '%s': %w", shiftID, err)
	}
	shift.ID = docSnap.Ref.ID

	return &shift, nil
}

// GetByUserPeriod retrieves the user's shifts whose start time falls in
// [from, to), newest first.
func (r *firestoreShiftRepository) GetByUserPeriod(ctx context.Context, userID string, from, to time.Time) ([]*models.Shift, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByUserPeriod operation")
	}

	query := r.client.Collection(shiftsCollection).
		Where("userId", "==", userID).
		Where("startTime", ">=", from).
		Where("startTime", "<", to).
		OrderBy("startTime", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var shifts []*models.Shift
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate shifts for user '%s': %w", userID, err)
		}

		var shift models.Shift
		if err := doc.DataTo(&shift); err != nil {
			log.Printf("Error decoding shift data (ID: %s) for user '%s': %v. Skipping.", doc.Ref.ID, userID, err)
			continue
		}
		shift.ID = doc.Ref.ID
		shifts = append(shifts, &shift)
	}

	return shifts, nil
}

// GetRunning returns the user's currently running shift (endTime stored as
// null), or ErrNotFound when no shift is running.
func (r *firestoreShiftRepository) GetRunning(ctx context.Context, userID string) (*models.Shift, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetRunning operation")
	}

	iter := r.client.Collection(shiftsCollection).
		Where("userId", "==", userID).
		Where("endTime", "==", nil).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no running shift for user '%s': %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query running shift for user '%s': %w", userID, err)
	}

	var shift models.Shift
	if err := doc.DataTo(&shift); err != nil {
		return nil, fmt.Errorf("failed to decode running shift for user '%s': %w", userID, err)
	}
	shift.ID = doc.Ref.ID

	return &shift, nil
}

// Update overwrites an existing shift document. The service layer always
// writes the full shift struct after a GetByID, so a plain Set is safe.
func (r *firestoreShiftRepository) Update(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		return errors.New("shift ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(shiftsCollection).Doc(shift.ID).Set(ctx, shift)
	if err != nil {
		return fmt.Errorf("failed to update shift with ID '%s': %w", shift.ID, err)
	}
	return nil
}

// Delete removes a shift document by its ID.
func (r *firestoreShiftRepository) Delete(ctx context.Context, shiftID string) error {
	if shiftID == "" {
		return errors.New("shiftID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(shiftsCollection).Doc(shiftID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete shift with ID '%s': %w", shiftID, err)
	}
	return nil
}
