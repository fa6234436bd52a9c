package repo

import (
	"gorm.io/gorm"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
)

// ImageRepo 维护房源图片集合与唯一缩略图不变量：
// 任意操作序列之后至多一张缩略图，集合非空时恰好一张。
type ImageRepo struct{ db *gorm.DB }

func NewImageRepo(db *gorm.DB) *ImageRepo { return &ImageRepo{db: db} }

// ListByProperty 展示顺序：缩略图在前，其余按插入序
func (r *ImageRepo) ListByProperty(propertyID uint) ([]domain.PropertyImage, error) {
	imgs := make([]domain.PropertyImage, 0, 8)
	err := r.db.Where("property_id = ?", propertyID).
		Order("is_thumbnail DESC, id ASC").
		Find(&imgs).Error
	if err != nil {
		return nil, internalErr("list property images failed", err)
	}
	return imgs, nil
}

// AddImages 批量插入。集合尚无缩略图时把 thumbnailIndex（越界归零）置位；
// 已有缩略图则全部按普通图插入，避免出现第二张
func (r *ImageRepo) AddImages(propertyID uint, imagePaths []string, thumbnailIndex int) ([]domain.PropertyImage, error) {
	if len(imagePaths) == 0 {
		return nil, apperr.Validation("no images supplied")
	}
	if thumbnailIndex < 0 || thumbnailIndex >= len(imagePaths) {
		thumbnailIndex = 0
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&domain.PropertyImage{}).
			Where("property_id = ? AND is_thumbnail = ?", propertyID, true).
			Count(&existing).Error; err != nil {
			return internalErr("count thumbnails failed", err)
		}

		imgs := make([]domain.PropertyImage, 0, len(imagePaths))
		for i, path := range imagePaths {
			imgs = append(imgs, domain.PropertyImage{
				PropertyID:  propertyID,
				ImagePath:   path,
				IsThumbnail: existing == 0 && i == thumbnailIndex,
			})
		}
		if err := tx.Create(&imgs).Error; err != nil {
			return internalErr("insert images failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.ListByProperty(propertyID)
}

// SetThumbnail 全量清零后置位，同一事务；图片不属于该房源按 NotFound 处理
func (r *ImageRepo) SetThumbnail(propertyID, imageID uint) ([]domain.PropertyImage, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var img domain.PropertyImage
		err := tx.Where("id = ? AND property_id = ?", imageID, propertyID).First(&img).Error
		if notFound(err) {
			return apperr.NotFound("image not found")
		}
		if err != nil {
			return internalErr("find image failed", err)
		}

		if err := tx.Model(&domain.PropertyImage{}).
			Where("property_id = ?", propertyID).
			Update("is_thumbnail", false).Error; err != nil {
			return internalErr("clear thumbnails failed", err)
		}
		if err := tx.Model(&domain.PropertyImage{}).
			Where("id = ?", imageID).
			Update("is_thumbnail", true).Error; err != nil {
			return internalErr("set thumbnail failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.ListByProperty(propertyID)
}

// DeleteImage 删除后若失去缩略图，则提升存活图片中 id 最小者（确定性选择）
func (r *ImageRepo) DeleteImage(propertyID, imageID uint) (*domain.PropertyImage, error) {
	var deleted domain.PropertyImage
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND property_id = ?", imageID, propertyID).First(&deleted).Error
		if notFound(err) {
			return apperr.NotFound("image not found")
		}
		if err != nil {
			return internalErr("find image failed", err)
		}

		if err := tx.Delete(&domain.PropertyImage{}, deleted.ID).Error; err != nil {
			return internalErr("delete image failed", err)
		}

		if deleted.IsThumbnail {
			var next domain.PropertyImage
			err := tx.Where("property_id = ?", propertyID).Order("id ASC").First(&next).Error
			if notFound(err) {
				return nil // 没有存活图片，无需提升
			}
			if err != nil {
				return internalErr("find successor failed", err)
			}
			if err := tx.Model(&domain.PropertyImage{}).
				Where("id = ?", next.ID).
				Update("is_thumbnail", true).Error; err != nil {
				return internalErr("promote thumbnail failed", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (r *ImageRepo) DeleteAllForProperty(propertyID uint) ([]string, error) {
	var paths []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.PropertyImage{}).
			Where("property_id = ?", propertyID).
			Pluck("image_path", &paths).Error; err != nil {
			return internalErr("collect image paths failed", err)
		}
		if err := tx.Where("property_id = ?", propertyID).Delete(&domain.PropertyImage{}).Error; err != nil {
			return internalErr("delete images failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
