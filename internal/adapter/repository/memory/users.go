package memory

import (
	"context"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return cloneUser(user), nil
}

// PutUser stores user as-is, replacing any existing document.
func (s *Store) PutUser(user *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = cloneUser(user)
	s.touch(userPath(user.ID))
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, update entity.ProfileUpdate) error {
	r.store.mutateUser(id, func(user *entity.User) {
		if update.Name != "" {
			user.Name = update.Name
		}
		if update.Email != "" {
			user.Email = update.Email
		}
		if update.Phone != "" {
			user.Phone = update.Phone
		}
		if update.Bio != "" {
			user.Bio = update.Bio
		}
		if update.AvatarURL != "" {
			user.AvatarURL = update.AvatarURL
		}
	}, true)
	return nil
}

func (r *userRepository) AddFavorite(ctx context.Context, userID, itemID string) error {
	r.store.mutateUser(userID, func(user *entity.User) {
		if !user.HasFavorite(itemID) {
			user.Favorites = append(user.Favorites, itemID)
		}
	}, false)
	return nil
}

func (r *userRepository) RemoveFavorite(ctx context.Context, userID, itemID string) error {
	r.store.mutateUser(userID, func(user *entity.User) {
		kept := user.Favorites[:0]
		for _, id := range user.Favorites {
			if id != itemID {
				kept = append(kept, id)
			}
		}
		user.Favorites = kept
	}, false)
	return nil
}

func (r *userRepository) ClearFavorites(ctx context.Context, userID string) error {
	r.store.mutateUser(userID, func(user *entity.User) {
		user.Favorites = []string{}
	}, false)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	s.touch(userPath(id))
	return nil
}

// mutateUser applies fn to the user document, creating it when absent, the
// way a merge write does.
func (s *Store) mutateUser(id string, fn func(*entity.User), stamp bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		user = &entity.User{ID: id}
		s.users[id] = user
	}
	fn(user)
	if stamp {
		user.UpdatedAt = s.now()
	}
	s.touch(userPath(id))
}
