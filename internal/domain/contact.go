package domain

import "time"

type ContactRequest struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"request_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	AgentID    uint      `gorm:"not null;index" json:"agent_id"` // 建行时从房源冗余
	Message    *string   `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User     User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Property Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ContactRequest) TableName() string { return "contact_requests" }

// ContactItem 中介视角的咨询列表行
type ContactItem struct {
	ContactRequest
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type ContactRepository interface {
	Create(cr *ContactRequest) error
	ListByUser(userID uint) ([]ContactItem, error)
	ListByAgent(agentID uint) ([]ContactItem, error)
	// MarkAsRead 只允许归属中介操作，不匹配视为 NotFound
	MarkAsRead(requestID, agentID uint) (*ContactRequest, error)
	// Delete 只允许发起用户删除
	Delete(requestID, userID uint) (bool, error)
}
