package stores

import (
	"context"
	"errors"

	"wardrobeapi/models"

	"gorm.io/gorm"
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type GormUserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Get(ctx context.Context, id uint) (models.UserAccount, error) {
	var user models.UserAccount
	err := s.db.WithContext(ctx).First(&user, id).Error
	return user, notFound(err)
}

func (s *GormUserStore) ListActive(ctx context.Context) ([]models.UserAccount, error) {
	var users []models.UserAccount
	err := s.db.WithContext(ctx).Where("banned = ?", false).Order("id").Find(&users).Error
	return users, err
}

func (s *GormUserStore) PushTokens(ctx context.Context, userID uint) ([]models.UserPushToken, error) {
	var tokens []models.UserPushToken
	err := s.db.WithContext(ctx).Where("user_account_id = ? AND active = ?", userID, true).Find(&tokens).Error
	return tokens, err
}

type GormClothingStore struct {
	db *gorm.DB
}

func NewClothingStore(db *gorm.DB) *GormClothingStore {
	return &GormClothingStore{db: db}
}

func (s *GormClothingStore) ListByOwner(ctx context.Context, ownerID uint) ([]models.Clothing, error) {
	var clothes []models.Clothing
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&clothes).Error
	return clothes, err
}

func (s *GormClothingStore) Get(ctx context.Context, ownerID, id uint) (models.Clothing, error) {
	var c models.Clothing
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&c).Error
	return c, notFound(err)
}

func (s *GormClothingStore) GetByID(ctx context.Context, id uint) (models.Clothing, error) {
	var c models.Clothing
	err := s.db.WithContext(ctx).First(&c, id).Error
	return c, notFound(err)
}

func (s *GormClothingStore) Create(ctx context.Context, c *models.Clothing) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *GormClothingStore) Save(ctx context.Context, c *models.Clothing) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *GormClothingStore) Delete(ctx context.Context, ownerID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Clothing{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormClothingStore) IncrementUsage(ctx context.Context, ownerID, id uint) (models.Clothing, error) {
	var c models.Clothing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Clothing{}).
			Where("id = ? AND owner_id = ?", id, ownerID).
			UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&c, id).Error
	})
	return c, notFound(err)
}

func (s *GormClothingStore) CountOwned(ctx context.Context, ownerID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Clothing{}).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Count(&n).Error
	return n, err
}

func (s *GormClothingStore) CountUnworn(ctx context.Context, ownerID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Clothing{}).
		Where("owner_id = ? AND usage_count = 0", ownerID).
		Count(&n).Error
	return n, err
}

type GormFavoriteStore struct {
	db *gorm.DB
}

func NewFavoriteStore(db *gorm.DB) *GormFavoriteStore {
	return &GormFavoriteStore{db: db}
}

func (s *GormFavoriteStore) Create(ctx context.Context, f *models.FavoriteOutfit) error {
	return s.db.WithContext(ctx).Create(f).Error
}

func (s *GormFavoriteStore) ListByUser(ctx context.Context, userID uint) ([]models.FavoriteOutfit, error) {
	var favs []models.FavoriteOutfit
	err := s.db.WithContext(ctx).Where("user_account_id = ?", userID).Order("created_at desc, id desc").Find(&favs).Error
	return favs, err
}

func (s *GormFavoriteStore) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_account_id = ?", id, userID).Delete(&models.FavoriteOutfit{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
