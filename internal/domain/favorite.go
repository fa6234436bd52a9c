package domain

import "time"

type Favorite struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"favorite_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:uniq_user_property" json:"user_id"`
	PropertyID uint      `gorm:"not null;uniqueIndex:uniq_user_property" json:"property_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	User     User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Property Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string { return "favorites" }

// FavoriteItem 收藏列表行，聚合房源摘要
type FavoriteItem struct {
	Favorite
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Deposit     int     `json:"deposit"`
	MonthlyRent int     `json:"monthly_rent"`
	Thumbnail   *string `json:"thumbnail"`
}

type FavoriteRepository interface {
	ListByUser(userID uint) ([]FavoriteItem, error)
	IsFavorite(userID, propertyID uint) (bool, error)
	// Add 幂等：已存在时返回 alreadyExists=true，不追加行
	Add(userID, propertyID uint) (fav *Favorite, alreadyExists bool, err error)
	Remove(userID, propertyID uint) (bool, error)
}
