package repo

import (
	"gorm.io/gorm"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
)

type ContactRepo struct{ db *gorm.DB }

func NewContactRepo(db *gorm.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Create(cr *domain.ContactRequest) error {
	if err := r.db.Create(cr).Error; err != nil {
		return internalErr("create contact request failed", err)
	}
	return nil
}

func (r *ContactRepo) ListByUser(userID uint) ([]domain.ContactItem, error) {
	return r.list("contact_requests.user_id = ?", userID)
}

func (r *ContactRepo) ListByAgent(agentID uint) ([]domain.ContactItem, error) {
	return r.list("contact_requests.agent_id = ?", agentID)
}

func (r *ContactRepo) list(cond string, arg any) ([]domain.ContactItem, error) {
	items := make([]domain.ContactItem, 0, 8)
	err := r.db.Model(&domain.ContactRequest{}).
		Select("contact_requests.*, users.username, users.phone_number, properties.address").
		Joins("JOIN users ON users.id = contact_requests.user_id").
		Joins("JOIN properties ON properties.id = contact_requests.property_id").
		Where(cond, arg).
		Order("contact_requests.created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, internalErr("list contact requests failed", err)
	}
	return items, nil
}

// MarkAsRead 归属中介之外的请求一律按 NotFound 处理，不泄露存在性
func (r *ContactRepo) MarkAsRead(requestID, agentID uint) (*domain.ContactRequest, error) {
	var cr domain.ContactRequest
	err := r.db.First(&cr, "id = ? AND agent_id = ?", requestID, agentID).Error
	if notFound(err) {
		return nil, apperr.NotFound("contact request not found")
	}
	if err != nil {
		return nil, internalErr("find contact request failed", err)
	}
	if err := r.db.Model(&cr).Update("is_read", true).Error; err != nil {
		return nil, internalErr("mark as read failed", err)
	}
	return &cr, nil
}

func (r *ContactRepo) Delete(requestID, userID uint) (bool, error) {
	res := r.db.Where("id = ? AND user_id = ?", requestID, userID).
		Delete(&domain.ContactRequest{})
	if res.Error != nil {
		return false, internalErr("delete contact request failed", res.Error)
	}
	return res.RowsAffected > 0, nil
}
