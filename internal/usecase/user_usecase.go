package usecase

import (
	"context"
	"log"
	"strings"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

// AccountDeleter removes a sign-in account from the identity provider.
type AccountDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}

type UserUseCase struct {
	userRepo repository.UserRepository
	accounts AccountDeleter
}

func NewUserUseCase(userRepo repository.UserRepository, accounts AccountDeleter) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		accounts: accounts,
	}
}

// PublicProfile is what other users see; favorites stay private.
type PublicProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		ID:        user.ID,
		Name:      user.Name,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
	}, nil
}

func (uc *UserUseCase) GetMe(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if errors.Is(err, errors.CodeNotFound) {
		return &entity.User{ID: userID, Favorites: []string{}}, nil
	}
	return user, err
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input entity.ProfileUpdate) (*entity.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Bio = strings.TrimSpace(input.Bio)
	input.AvatarURL = strings.TrimSpace(input.AvatarURL)

	if len(input.Fields()) == 0 {
		return nil, validation("Nothing to update")
	}

	if err := uc.userRepo.UpdateProfile(ctx, userID, input); err != nil {
		log.Printf("UpdateProfile Error: user %s: %v", userID, err)
		return nil, err
	}
	return uc.userRepo.GetByID(ctx, userID)
}

// DeleteAccount removes the profile document and then the sign-in account.
// Listings and conversations are left in place.
func (uc *UserUseCase) DeleteAccount(ctx context.Context, userID string) error {
	if err := uc.userRepo.Delete(ctx, userID); err != nil {
		log.Printf("DeleteAccount Error: user %s: %v", userID, err)
		return err
	}

	if err := uc.accounts.DeleteUser(ctx, userID); err != nil {
		log.Printf("DeleteAccount Error: auth account %s: %v", userID, err)
		return errors.Internal("Failed to delete account", err)
	}
	return nil
}
