package domain

import "time"

// 认证状态：pending 为初始态，verified / rejected 由管理员裁定后不再回退
const (
	AgentPending  = "pending"
	AgentVerified = "verified"
	AgentRejected = "rejected"
)

type Agent struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"agent_id"`
	UserID             uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	LicenseImage       string    `gorm:"size:255;not null" json:"license_image"`
	CompanyName        *string   `gorm:"size:128" json:"company_name"`
	OfficeAddress      *string   `gorm:"size:255" json:"office_address"`
	VerificationStatus string    `gorm:"size:16;not null;default:pending" json:"verification_status"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Agent) TableName() string { return "agents" }

// AgentInfo 带上关联用户的展示字段
type AgentInfo struct {
	Agent
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type AgentPatch struct {
	CompanyName   *string
	OfficeAddress *string
	LicenseImage  *string
}

type AgentRepository interface {
	Create(a *Agent) error
	FindByID(id uint) (*AgentInfo, error)
	FindByUserID(userID uint) (*Agent, error)
	ListVerified() ([]AgentInfo, error)
	ListAll() ([]AgentInfo, error)
	ListByStatus(status string) ([]AgentInfo, error)
	Update(id uint, patch AgentPatch) (*Agent, error)
	// UpdateVerificationStatus 仅允许 pending → verified / rejected
	UpdateVerificationStatus(id uint, status string) (*Agent, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}
