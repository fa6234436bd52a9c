package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
	"roomrent/pkg/utils"
)

func strp(s string) *string { return &s }

func TestUserCreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)

	u := &domain.User{Username: "alice", PasswordHash: "x", Email: "alice@example.com", PhoneNumber: "010", Role: domain.RoleUser}
	require.NoError(t, repo.Create(u))

	dup := &domain.User{Username: "alice", PasswordHash: "x", Email: "other@example.com", PhoneNumber: "010", Role: domain.RoleUser}
	err := repo.Create(dup)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	dupEmail := &domain.User{Username: "bob", PasswordHash: "x", Email: "alice@example.com", PhoneNumber: "010", Role: domain.RoleUser}
	err = repo.Create(dupEmail)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestUserFindMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)

	// 按名/邮箱查不到不算错，返回 nil 让调用方决定
	u, err := repo.FindByUsername("ghost")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = repo.FindByEmail("ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = repo.FindByID(12345)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUserUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	u := seedUser(t, db, "carol", domain.RoleUser)

	got, err := repo.UpdateProfile(u.ID, domain.UserPatch{
		Email:    strp("carol-new@example.com"),
		Password: strp("NewPassw0rd"),
	})
	require.NoError(t, err)
	assert.Equal(t, "carol-new@example.com", got.Email)
	assert.True(t, utils.CheckPassword("NewPassw0rd", got.PasswordHash))
	// 未提供的字段不动
	assert.Equal(t, u.PhoneNumber, got.PhoneNumber)

	_, err = repo.UpdateProfile(99999, domain.UserPatch{Email: strp("x@example.com")})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUserDeleteCascadesEverything(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)

	agent := seedAgent(t, db, "deleting_agent", domain.AgentVerified)
	other := seedUser(t, db, "bystander", domain.RoleUser)

	p := seedProperty(t, db, agent.ID, "Seoul", 1000, 50)
	seedImage(t, db, p.ID, "/uploads/properties/z.jpg", true)
	require.NoError(t, db.Create(&domain.Favorite{UserID: other.ID, PropertyID: p.ID}).Error)
	require.NoError(t, db.Create(&domain.ContactRequest{UserID: other.ID, PropertyID: p.ID, AgentID: agent.ID}).Error)

	post := &domain.BoardPost{UserID: agent.UserID, Title: "t", Content: "c"}
	require.NoError(t, db.Create(post).Error)
	require.NoError(t, db.Create(&domain.BoardComment{PostID: post.ID, UserID: other.ID, Content: "hi"}).Error)

	orphans, err := users.Delete(agent.UserID)
	require.NoError(t, err)
	// 执照图 + 房源图都要带出来清理
	assert.ElementsMatch(t, []string{
		"/uploads/licenses/deleting_agent.jpg",
		"/uploads/properties/z.jpg",
	}, orphans)

	for _, m := range []any{&domain.Agent{}, &domain.Property{}, &domain.PropertyImage{},
		&domain.Favorite{}, &domain.ContactRequest{}, &domain.BoardPost{}, &domain.BoardComment{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.EqualValues(t, 0, n)
	}

	// 旁观者账号不受影响
	var userCount int64
	require.NoError(t, db.Model(&domain.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 1, userCount)

	_, err = users.Delete(agent.UserID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUserDeletePlainUser(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)

	agent := seedAgent(t, db, "surviving_agent", domain.AgentVerified)
	u := seedUser(t, db, "plain", domain.RoleUser)
	p := seedProperty(t, db, agent.ID, "Seoul", 1000, 50)

	require.NoError(t, db.Create(&domain.Favorite{UserID: u.ID, PropertyID: p.ID}).Error)
	require.NoError(t, db.Create(&domain.ContactRequest{UserID: u.ID, PropertyID: p.ID, AgentID: agent.ID}).Error)

	orphans, err := users.Delete(u.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	// 中介和房源保留，用户自己的收藏/咨询清掉
	var n int64
	require.NoError(t, db.Model(&domain.Property{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, db.Model(&domain.Favorite{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
	require.NoError(t, db.Model(&domain.ContactRequest{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}
