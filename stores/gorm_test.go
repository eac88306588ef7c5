package stores

import (
	"context"
	"testing"

	"wardrobeapi/dbhelper"
	"wardrobeapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormClothingStoreOwnership(t *testing.T) {
	db := dbhelper.SetupTestDB(t)
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	ctx := context.Background()

	owner := models.UserAccount{Name: "Owner", Email: "owner@example.com"}
	other := models.UserAccount{Name: "Other", Email: "other@example.com"}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&other).Error)

	clothes := NewClothingStore(db)
	shirt := models.Clothing{Name: "Shirt", Category: "top", OwnerID: owner.ID}
	require.NoError(t, clothes.Create(ctx, &shirt))

	_, err := clothes.Get(ctx, other.ID, shirt.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	worn, err := clothes.IncrementUsage(ctx, owner.ID, shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, worn.UsageCount)

	n, err := clothes.CountOwned(ctx, other.ID, []uint{shirt.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, clothes.Delete(ctx, other.ID, shirt.ID), ErrNotFound)
	assert.NoError(t, clothes.Delete(ctx, owner.ID, shirt.ID))
}

func TestGormFavoriteStoreNewestFirst(t *testing.T) {
	db := dbhelper.SetupTestDB(t)
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	ctx := context.Background()

	user := models.UserAccount{Name: "Fav", Email: "fav@example.com"}
	require.NoError(t, db.Create(&user).Error)

	favs := NewFavoriteStore(db)
	first := models.FavoriteOutfit{UserAccountID: user.ID, OutfitData: `{}`, Score: 70}
	second := models.FavoriteOutfit{UserAccountID: user.ID, OutfitData: `{}`, Score: 80}
	require.NoError(t, favs.Create(ctx, &first))
	require.NoError(t, favs.Create(ctx, &second))

	list, err := favs.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
}
