package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// UpdateProfile merges the non-empty fields of update into the user
	// document, creating it when absent.
	UpdateProfile(ctx context.Context, id string, update entity.ProfileUpdate) error
	AddFavorite(ctx context.Context, userID, itemID string) error
	RemoveFavorite(ctx context.Context, userID, itemID string) error
	ClearFavorites(ctx context.Context, userID string) error
	// Delete removes the user document. Deleting a missing user is not an
	// error.
	Delete(ctx context.Context, id string) error
}
