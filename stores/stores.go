// Package stores wraps persistence behind small interfaces so handlers and
// tasks can run against gorm in production and in-memory fakes in tests.
package stores

import (
	"context"
	"errors"

	"wardrobeapi/models"
)

var ErrNotFound = errors.New("record not found")

type UserStore interface {
	Get(ctx context.Context, id uint) (models.UserAccount, error)
	// ListActive returns users that are not banned.
	ListActive(ctx context.Context) ([]models.UserAccount, error)
	PushTokens(ctx context.Context, userID uint) ([]models.UserPushToken, error)
}

type ClothingStore interface {
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Clothing, error)
	// Get is owner scoped: another user's item is ErrNotFound.
	Get(ctx context.Context, ownerID, id uint) (models.Clothing, error)
	GetByID(ctx context.Context, id uint) (models.Clothing, error)
	Create(ctx context.Context, c *models.Clothing) error
	Save(ctx context.Context, c *models.Clothing) error
	Delete(ctx context.Context, ownerID, id uint) error
	IncrementUsage(ctx context.Context, ownerID, id uint) (models.Clothing, error)
	// CountOwned returns how many of ids belong to ownerID.
	CountOwned(ctx context.Context, ownerID uint, ids []uint) (int64, error)
	CountUnworn(ctx context.Context, ownerID uint) (int64, error)
}

type FavoriteStore interface {
	Create(ctx context.Context, f *models.FavoriteOutfit) error
	// ListByUser returns favorites newest first.
	ListByUser(ctx context.Context, userID uint) ([]models.FavoriteOutfit, error)
	Delete(ctx context.Context, userID, id uint) error
}
