package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	user.ID = doc.Ref.ID
	return &user, nil
}

func (r *firestoreUserRepository) UpdateProfile(ctx context.Context, id string, update entity.ProfileUpdate) error {
	log.Printf("Updating user in Firestore, ID: %s", id)

	updateData := update.Fields()
	updateData["updatedAt"] = time.Now()

	if _, err := r.client.Collection(usersCollection).Doc(id).Set(ctx, updateData, firestore.MergeAll); err != nil {
		return errors.Internal("Failed to update user", err)
	}
	return nil
}

func (r *firestoreUserRepository) AddFavorite(ctx context.Context, userID, itemID string) error {
	return r.mergeFavorites(ctx, userID, firestore.ArrayUnion(itemID))
}

func (r *firestoreUserRepository) RemoveFavorite(ctx context.Context, userID, itemID string) error {
	return r.mergeFavorites(ctx, userID, firestore.ArrayRemove(itemID))
}

func (r *firestoreUserRepository) ClearFavorites(ctx context.Context, userID string) error {
	return r.mergeFavorites(ctx, userID, []string{})
}

func (r *firestoreUserRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(usersCollection).Doc(id).Delete(ctx); err != nil {
		return errors.Internal("Failed to delete user", err)
	}
	return nil
}

func (r *firestoreUserRepository) mergeFavorites(ctx context.Context, userID string, value interface{}) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"favorites": value,
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update favorites", err)
	}
	return nil
}
