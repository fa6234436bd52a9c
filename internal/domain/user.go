package domain

import "time"

// 角色常量
const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PhoneNumber  string    `gorm:"size:32;not null" json:"phone_number"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"` // user / agent / admin
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// UserPatch 零值与「未提供」区分开，按 nil 判断是否更新
type UserPatch struct {
	Email       *string
	PhoneNumber *string
	Password    *string // 明文，仓储层负责散列
}

type UserRepository interface {
	Create(u *User) error
	FindByID(id uint) (*User, error)
	FindByUsername(username string) (*User, error)
	FindByEmail(email string) (*User, error)
	List(offset, limit int) ([]User, int64, error)
	UpdateProfile(id uint, patch UserPatch) (*User, error)
	// Delete 级联删除用户名下全部数据，返回需要清理的文件相对路径
	Delete(id uint) (orphanFiles []string, err error)
	Count() (int64, error)
}
