package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"license-admin-go/internal/models"
)

const pendingActivationsCollection = "pending_activations"

type firestorePendingActivationRepository struct {
	client *firestore.Client
}

// NewFirestorePendingActivationRepository creates a repository over pending_activations.
func NewFirestorePendingActivationRepository(client *firestore.Client) PendingActivationRepository {
	if client == nil {
		panic("Firestore client is not initialized for PendingActivationRepository")
	}
	return &firestorePendingActivationRepository{client: client}
}

// Create adds a pending activation with an auto-generated id.
func (r *firestorePendingActivationRepository) Create(ctx context.Context, pending *models.PendingActivation) (string, error) {
	if pending == nil || pending.Email == "" {
		return "", errors.New("pending activation requires an email")
	}
	docRef := r.client.Collection(pendingActivationsCollection).NewDoc()
	if _, err := docRef.Create(ctx, pending); err != nil {
		return "", fmt.Errorf("failed to create pending activation for '%s': %w", pending.Email, err)
	}
	pending.ID = docRef.ID
	return docRef.ID, nil
}

// ExistsByEmail reports whether any pending activation targets email.
func (r *firestorePendingActivationRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	iter := r.client.Collection(pendingActivationsCollection).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query pending activations for '%s': %w", email, err)
	}
	return true, nil
}
