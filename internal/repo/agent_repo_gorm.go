package repo

import (
	"gorm.io/gorm"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
)

type AgentRepo struct{ db *gorm.DB }

func NewAgentRepo(db *gorm.DB) *AgentRepo { return &AgentRepo{db: db} }

func (r *AgentRepo) infoQuery() *gorm.DB {
	return r.db.Model(&domain.Agent{}).
		Select("agents.*, users.username, users.email, users.phone_number").
		Joins("JOIN users ON users.id = agents.user_id")
}

func (r *AgentRepo) Create(a *domain.Agent) error {
	if err := r.db.Create(a).Error; err != nil {
		if isDupKey(err) {
			return apperr.Conflict("agent profile already exists")
		}
		return internalErr("create agent failed", err)
	}
	return nil
}

func (r *AgentRepo) FindByID(id uint) (*domain.AgentInfo, error) {
	var info domain.AgentInfo
	err := r.infoQuery().Where("agents.id = ?", id).First(&info).Error
	if notFound(err) {
		return nil, apperr.NotFound("agent not found")
	}
	if err != nil {
		return nil, internalErr("find agent failed", err)
	}
	return &info, nil
}

func (r *AgentRepo) FindByUserID(userID uint) (*domain.Agent, error) {
	var a domain.Agent
	err := r.db.First(&a, "user_id = ?", userID).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, internalErr("find agent failed", err)
	}
	return &a, nil
}

func (r *AgentRepo) ListVerified() ([]domain.AgentInfo, error) {
	return r.listWhere("agents.verification_status = ?", domain.AgentVerified)
}

func (r *AgentRepo) ListAll() ([]domain.AgentInfo, error) {
	return r.listWhere("")
}

func (r *AgentRepo) ListByStatus(status string) ([]domain.AgentInfo, error) {
	return r.listWhere("agents.verification_status = ?", status)
}

func (r *AgentRepo) listWhere(cond string, args ...any) ([]domain.AgentInfo, error) {
	q := r.infoQuery().Order("agents.created_at DESC")
	if cond != "" {
		q = q.Where(cond, args...)
	}
	infos := make([]domain.AgentInfo, 0, 8)
	if err := q.Find(&infos).Error; err != nil {
		return nil, internalErr("list agents failed", err)
	}
	return infos, nil
}

func (r *AgentRepo) Update(id uint, patch domain.AgentPatch) (*domain.Agent, error) {
	cols := map[string]any{}
	if patch.CompanyName != nil {
		cols["company_name"] = *patch.CompanyName
	}
	if patch.OfficeAddress != nil {
		cols["office_address"] = *patch.OfficeAddress
	}
	if patch.LicenseImage != nil {
		cols["license_image"] = *patch.LicenseImage
	}
	if len(cols) > 0 {
		res := r.db.Model(&domain.Agent{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, internalErr("update agent failed", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.NotFound("agent not found")
		}
	}
	var a domain.Agent
	if err := r.db.First(&a, "id = ?", id).Error; err != nil {
		return nil, internalErr("reload agent failed", err)
	}
	return &a, nil
}

// UpdateVerificationStatus 状态机：pending → verified / rejected，裁定后不可回退
func (r *AgentRepo) UpdateVerificationStatus(id uint, status string) (*domain.Agent, error) {
	if status != domain.AgentVerified && status != domain.AgentRejected {
		return nil, apperr.Validation("invalid verification status")
	}
	var a domain.Agent
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			if notFound(err) {
				return apperr.NotFound("agent not found")
			}
			return internalErr("find agent failed", err)
		}
		if a.VerificationStatus != domain.AgentPending {
			return apperr.Validation("verification already decided")
		}
		if err := tx.Model(&a).Update("verification_status", status).Error; err != nil {
			return internalErr("update verification failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AgentRepo) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&domain.Agent{}).Count(&n).Error; err != nil {
		return 0, internalErr("count agents failed", err)
	}
	return n, nil
}

func (r *AgentRepo) CountByStatus(status string) (int64, error) {
	var n int64
	if err := r.db.Model(&domain.Agent{}).
		Where("verification_status = ?", status).Count(&n).Error; err != nil {
		return 0, internalErr("count agents failed", err)
	}
	return n, nil
}
