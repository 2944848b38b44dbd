package db

import (
	"context"

	"license-admin-go/internal/models"
)

// UserRepository defines the storage operations on the users collection.
type UserRepository interface {
	// ListAll enumerates the whole collection. There is no pagination.
	ListAll(ctx context.Context) ([]*models.UserRecord, error)
	// GetByID reads a single document, for refreshing one record without a full load.
	GetByID(ctx context.Context, userID string) (*models.UserRecord, error)
	// Update writes the given fields in a single document write. A nil value
	// stores null. The document must exist.
	Update(ctx context.Context, userID string, fields map[string]interface{}) error
}

// PendingActivationRepository defines the storage operations on pending_activations.
type PendingActivationRepository interface {
	Create(ctx context.Context, pending *models.PendingActivation) (string, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
