package usecase

import (
	"context"
	"log"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type FavoriteUseCase struct {
	userRepo repository.UserRepository
	itemRepo repository.ItemRepository
}

func NewFavoriteUseCase(userRepo repository.UserRepository, itemRepo repository.ItemRepository) *FavoriteUseCase {
	return &FavoriteUseCase{
		userRepo: userRepo,
		itemRepo: itemRepo,
	}
}

func (uc *FavoriteUseCase) AddFavorite(ctx context.Context, userID, itemID string) error {
	log.Printf("Adding item %s to favorites for user %s", itemID, userID)

	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return itemNotFound(err)
		}
		return err
	}
	if item.IsOwnedBy(userID) {
		return errors.BadRequest("Cannot add your own item to favorites", nil)
	}

	return uc.userRepo.AddFavorite(ctx, userID, itemID)
}

func (uc *FavoriteUseCase) RemoveFavorite(ctx context.Context, userID, itemID string) error {
	log.Printf("Removing item %s from favorites for user %s", itemID, userID)
	return uc.userRepo.RemoveFavorite(ctx, userID, itemID)
}

func (uc *FavoriteUseCase) ClearFavorites(ctx context.Context, userID string) error {
	return uc.userRepo.ClearFavorites(ctx, userID)
}

// ListFavorites resolves the user's favorite ids to items. Ids whose listing
// no longer exists are skipped.
func (uc *FavoriteUseCase) ListFavorites(ctx context.Context, userID string) ([]*entity.Item, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return []*entity.Item{}, nil
		}
		return nil, err
	}
	if len(user.Favorites) == 0 {
		return []*entity.Item{}, nil
	}
	return uc.itemRepo.GetByIDs(ctx, user.Favorites)
}
