package memory

import (
	"context"

	"github.com/google/uuid"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type itemRepository struct {
	store *Store
}

func NewItemRepository(store *Store) repository.ItemRepository {
	return &itemRepository{store: store}
}

func (r *itemRepository) Create(ctx context.Context, item *entity.Item) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if _, exists := s.items[item.ID]; exists {
		return errors.Conflict("Item already exists")
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}
	s.items[item.ID] = cloneItem(item)
	s.touch(itemPath(item.ID))
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	return cloneItem(item), nil
}

func (r *itemRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Item, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			out = append(out, cloneItem(item))
		}
	}
	return out, nil
}

func (r *itemRepository) Update(ctx context.Context, id string, update entity.ItemUpdate) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return errors.NotFound("Item", nil)
	}
	item.Description = update.Description
	item.Category = update.Category
	item.PriceText = update.PriceText
	item.Price = nil
	if update.Price != nil {
		p := *update.Price
		item.Price = &p
	}
	updatedAt := update.UpdatedAt
	item.UpdatedAt = &updatedAt
	s.touch(itemPath(id))
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	s.touch(itemPath(id))
	return nil
}

func (r *itemRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Item, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.itemsByOwner(ownerID), nil
}

func (r *itemRepository) ListRecent(ctx context.Context, limit, offset int) ([]*entity.Item, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*entity.Item, 0, len(s.items))
	for _, item := range s.items {
		all = append(all, item)
	}
	sortNewestFirst(all)

	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]*entity.Item, 0, end-offset)
	for _, item := range all[offset:end] {
		out = append(out, cloneItem(item))
	}
	return out, total, nil
}
