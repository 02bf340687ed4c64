package usecase

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/internal/infrastructure/ratelimit"
	"campusmarket/pkg/errors"
)

type ItemUseCase struct {
	itemRepo    repository.ItemRepository
	userRepo    repository.UserRepository
	rateLimiter Limiter
}

func NewItemUseCase(itemRepo repository.ItemRepository, userRepo repository.UserRepository, rateLimiter Limiter) *ItemUseCase {
	return &ItemUseCase{
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
	}
}

type CreateItemInput struct {
	Title       string
	Description string
	Category    string
	Price       string
	ImageURLs   []string
}

type UpdateItemInput struct {
	Description string
	Category    string
	Price       string
}

// Owner identifies the caller creating a listing.
type Owner struct {
	ID            string
	DisplayName   string
	EmailVerified bool
}

func (uc *ItemUseCase) CreateItem(ctx context.Context, owner Owner, input CreateItemInput) (*entity.Item, error) {
	if !owner.EmailVerified {
		return nil, emailNotVerified()
	}

	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	input.Price = strings.TrimSpace(input.Price)
	if input.Description == "" || input.Category == "" || input.Price == "" {
		return nil, validation("Description, category and price are required")
	}

	price := entity.ParseListingPrice(input.Price)
	if price != nil && *price > entity.MaxListingPrice {
		return nil, priceTooHigh()
	}

	if allowed, wait := uc.rateLimiter.Allow(owner.ID, ratelimit.ActionCreateItem); !allowed {
		log.Printf("CreateItem Rate Limited: User %s must wait %v", owner.ID, wait)
		return nil, rateLimited(wait)
	}

	username := owner.DisplayName
	if username == "" {
		if profile, err := uc.userRepo.GetByID(ctx, owner.ID); err == nil {
			username = profile.Name
		}
	}

	item := &entity.Item{
		OwnerID:     owner.ID,
		Username:    username,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    input.Category,
		Price:       price,
		PriceText:   input.Price,
		ImageURLs:   append([]string{}, input.ImageURLs...),
		CreatedAt:   time.Now(),
	}
	if err := uc.itemRepo.Create(ctx, item); err != nil {
		log.Printf("CreateItem Error: %v", err)
		return nil, err
	}
	return item, nil
}

func (uc *ItemUseCase) GetItem(ctx context.Context, id string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, itemNotFound(err)
		}
		return nil, err
	}
	return item, nil
}

// ownedItem loads id and checks that userID owns it.
func (uc *ItemUseCase) ownedItem(ctx context.Context, id, userID string) (*entity.Item, error) {
	item, err := uc.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(userID) {
		return nil, notOwner()
	}
	return item, nil
}

func (uc *ItemUseCase) UpdateItem(ctx context.Context, userID, id string, input UpdateItemInput) (*entity.Item, error) {
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	input.Price = strings.TrimSpace(input.Price)
	if input.Description == "" || input.Category == "" {
		return nil, validation("Description and category are required")
	}

	amount, err := strconv.ParseFloat(input.Price, 64)
	if err != nil || amount <= 0 {
		return nil, validation("Please enter a valid price")
	}
	if amount > entity.MaxListingPrice {
		return nil, priceTooHigh()
	}

	item, err := uc.ownedItem(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if item.Sold {
		return nil, alreadySold()
	}

	update := entity.ItemUpdate{
		Description: input.Description,
		Category:    input.Category,
		PriceText:   input.Price,
		Price:       &amount,
		UpdatedAt:   time.Now(),
	}
	if err := uc.itemRepo.Update(ctx, id, update); err != nil {
		log.Printf("UpdateItem Error: item %s: %v", id, err)
		return nil, err
	}

	item.Description = update.Description
	item.Category = update.Category
	item.PriceText = update.PriceText
	item.Price = update.Price
	item.UpdatedAt = &update.UpdatedAt
	return item, nil
}

func (uc *ItemUseCase) DeleteItem(ctx context.Context, userID, id string) error {
	if _, err := uc.ownedItem(ctx, id, userID); err != nil {
		return err
	}
	if err := uc.itemRepo.Delete(ctx, id); err != nil {
		log.Printf("DeleteItem Error: item %s: %v", id, err)
		return err
	}
	return nil
}

// ListUserItems returns the user's listings, newest first. With
// availableOnly set, sold listings are skipped; that is the set a buyer may
// send as cards.
func (uc *ItemUseCase) ListUserItems(ctx context.Context, userID string, availableOnly bool) ([]*entity.Item, error) {
	items, err := uc.itemRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !availableOnly {
		return items, nil
	}

	available := make([]*entity.Item, 0, len(items))
	for _, item := range items {
		if !item.Sold {
			available = append(available, item)
		}
	}
	return available, nil
}

func (uc *ItemUseCase) ListItems(ctx context.Context, limit, offset int) ([]*entity.Item, int64, error) {
	return uc.itemRepo.ListRecent(ctx, limit, offset)
}
