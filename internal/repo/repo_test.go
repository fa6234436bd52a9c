package repo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"roomrent/internal/domain"
	"roomrent/pkg/utils"
)

// newTestDB 每个测试独立的内存库；cache=shared 让同进程多连接看到同一份数据
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Agent{},
		&domain.Property{},
		&domain.PropertyImage{},
		&domain.Favorite{},
		&domain.ContactRequest{},
		&domain.BoardCategory{},
		&domain.BoardPost{},
		&domain.BoardComment{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:     username,
		PasswordHash: utils.HashPassword("Passw0rd!"),
		Email:        username + "@example.com",
		PhoneNumber:  "010-1234-5678",
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedAgent(t *testing.T, db *gorm.DB, username, status string) *domain.Agent {
	t.Helper()
	u := seedUser(t, db, username, domain.RoleAgent)
	a := &domain.Agent{
		UserID:             u.ID,
		LicenseImage:       "/uploads/licenses/" + username + ".jpg",
		VerificationStatus: status,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func seedProperty(t *testing.T, db *gorm.DB, agentID uint, city string, deposit, rent int, mutate ...func(*domain.Property)) *domain.Property {
	t.Helper()
	p := &domain.Property{
		AgentID:     agentID,
		Address:     city + " somewhere 1-2-3",
		City:        city,
		Deposit:     deposit,
		MonthlyRent: rent,
		RoomCount:   1,
		IsActive:    true,
	}
	for _, m := range mutate {
		m(p)
	}
	// default:true 会吞掉零值并回写结构体，IsActive=false 需在 Create 后显式落库
	wantActive := p.IsActive
	require.NoError(t, db.Create(p).Error)
	if !wantActive {
		p.IsActive = false
		require.NoError(t, db.Model(p).Update("is_active", false).Error)
	}
	return p
}

func seedImage(t *testing.T, db *gorm.DB, propertyID uint, path string, thumb bool) *domain.PropertyImage {
	t.Helper()
	img := &domain.PropertyImage{PropertyID: propertyID, ImagePath: path, IsThumbnail: thumb}
	require.NoError(t, db.Create(img).Error)
	return img
}

// at 确定性的 created_at，规避同秒插入导致的排序并列
func at(minutes int) time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}
