package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"license-admin-go/internal/models"
)

const usersCollection = "users"

// ErrNotFound is returned when a document does not exist in Firestore.
var ErrNotFound = errors.New("document not found")

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		panic("Firestore client is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client}
}

// ListAll reads every document of the users collection. The id of each record
// is the document id; everything else comes from the field map.
func (r *firestoreUserRepository) ListAll(ctx context.Context) ([]*models.UserRecord, error) {
	iter := r.client.Collection(usersCollection).Documents(ctx)
	defer iter.Stop()

	users := make([]*models.UserRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
		users = append(users, UserFromData(doc.Ref.ID, doc.Data()))
	}
	return users, nil
}

// GetByID retrieves a user document by its id.
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.UserRecord, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}
	return UserFromData(docSnap.Ref.ID, docSnap.Data()), nil
}

// Update applies fields with DocumentRef.Update, which fails instead of
// creating the document when it is missing.
func (r *firestoreUserRepository) Update(ctx context.Context, userID string, fields map[string]interface{}) error {
	if userID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	if len(fields) == 0 {
		return nil
	}

	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, toUpdates(fields))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("user with ID '%s' not found for update: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to update user with ID '%s': %w", userID, err)
	}
	return nil
}

func toUpdates(fields map[string]interface{}) []firestore.Update {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(paths))
	for _, path := range paths {
		updates = append(updates, firestore.Update{Path: path, Value: fields[path]})
	}
	return updates
}
