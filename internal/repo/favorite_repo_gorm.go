package repo

import (
	"gorm.io/gorm"

	"roomrent/internal/domain"
)

type FavoriteRepo struct{ db *gorm.DB }

func NewFavoriteRepo(db *gorm.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

func (r *FavoriteRepo) ListByUser(userID uint) ([]domain.FavoriteItem, error) {
	thumb := r.db.Model(&domain.PropertyImage{}).
		Select("image_path").
		Where("property_images.property_id = properties.id AND property_images.is_thumbnail = ?", true).
		Limit(1)

	items := make([]domain.FavoriteItem, 0, 8)
	err := r.db.Model(&domain.Favorite{}).
		Select("favorites.*, properties.address, properties.city, properties.deposit, properties.monthly_rent, (?) AS thumbnail", thumb).
		Joins("JOIN properties ON properties.id = favorites.property_id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, internalErr("list favorites failed", err)
	}
	return items, nil
}

func (r *FavoriteRepo) IsFavorite(userID, propertyID uint) (bool, error) {
	var n int64
	err := r.db.Model(&domain.Favorite{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&n).Error
	if err != nil {
		return false, internalErr("check favorite failed", err)
	}
	return n > 0, nil
}

// Add 幂等收藏。并发重复插入由 (user_id, property_id) 唯一索引兜底，
// 输家按「已存在」处理而不是报错
func (r *FavoriteRepo) Add(userID, propertyID uint) (*domain.Favorite, bool, error) {
	var existing domain.Favorite
	err := r.db.Where("user_id = ? AND property_id = ?", userID, propertyID).First(&existing).Error
	if err == nil {
		return &existing, true, nil
	}
	if !notFound(err) {
		return nil, false, internalErr("check favorite failed", err)
	}

	fav := domain.Favorite{UserID: userID, PropertyID: propertyID}
	if err := r.db.Create(&fav).Error; err != nil {
		if isDupKey(err) {
			// 竞态输家：再查一次拿现存行
			if e := r.db.Where("user_id = ? AND property_id = ?", userID, propertyID).
				First(&existing).Error; e == nil {
				return &existing, true, nil
			}
			return nil, false, internalErr("reload favorite failed", err)
		}
		return nil, false, internalErr("add favorite failed", err)
	}
	return &fav, false, nil
}

func (r *FavoriteRepo) Remove(userID, propertyID uint) (bool, error) {
	res := r.db.Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&domain.Favorite{})
	if res.Error != nil {
		return false, internalErr("remove favorite failed", res.Error)
	}
	return res.RowsAffected > 0, nil
}
