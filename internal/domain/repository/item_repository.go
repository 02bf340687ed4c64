package repository

import (
	"context"

	"campusmarket/internal/domain/entity"
)

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// GetByIDs returns the items that still exist, in the order of ids.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Item, error)
	Update(ctx context.Context, id string, update entity.ItemUpdate) error
	Delete(ctx context.Context, id string) error
	// ListByOwner returns the owner's listings, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Item, error)
	// ListRecent returns up to limit listings, newest first, skipping offset.
	ListRecent(ctx context.Context, limit, offset int) ([]*entity.Item, int64, error)
}
