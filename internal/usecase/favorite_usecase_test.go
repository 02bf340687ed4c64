package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/internal/domain/entity"
	"campusmarket/pkg/errors"
)

func TestFavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep := f.seedItem(t, "seller", "Keep", 5)
	gone := f.seedItem(t, "seller", "Gone", 5)
	own := f.seedItem(t, "me", "Own", 5)

	require.NoError(t, f.favorites.AddFavorite(ctx, "me", keep.ID))
	require.NoError(t, f.favorites.AddFavorite(ctx, "me", gone.ID))
	require.NoError(t, f.favorites.AddFavorite(ctx, "me", keep.ID))

	err := f.favorites.AddFavorite(ctx, "me", own.ID)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
	err = f.favorites.AddFavorite(ctx, "me", "missing")
	assert.True(t, errors.Is(err, CodeItemNotFound))

	require.NoError(t, f.items.Delete(ctx, gone.ID))

	items, err := f.favorites.ListFavorites(ctx, "me")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)

	require.NoError(t, f.favorites.RemoveFavorite(ctx, "me", keep.ID))
	require.NoError(t, f.favorites.ClearFavorites(ctx, "me"))
	items, err = f.favorites.ListFavorites(ctx, "me")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListFavoritesWithoutProfile(t *testing.T) {
	f := newFixture(t)

	items, err := f.favorites.ListFavorites(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutUser(&entity.User{ID: "me", Name: "Old", Bio: "keep me"})

	user, err := f.profiles.UpdateProfile(ctx, "me", entity.ProfileUpdate{Name: " New ", Phone: "0851234567"})
	require.NoError(t, err)
	assert.Equal(t, "New", user.Name)
	assert.Equal(t, "keep me", user.Bio)
	assert.Equal(t, "0851234567", user.Phone)

	_, err = f.profiles.UpdateProfile(ctx, "me", entity.ProfileUpdate{Name: "  "})
	assert.True(t, errors.Is(err, CodeValidation))

	profile, err := f.profiles.GetProfile(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, "New", profile.Name)
}
