package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roomrent/internal/domain"
)

func TestAuthorizeUserResource(t *testing.T) {
	owner := Principal{UserID: 7, Role: domain.RoleUser}
	stranger := Principal{UserID: 8, Role: domain.RoleUser}
	admin := Principal{UserID: 1, Role: domain.RoleAdmin}

	own := Ownership{OwnerUserID: 7}

	assert.True(t, Authorize(owner, own).Allow)
	assert.True(t, Authorize(admin, own).Allow)

	d := Authorize(stranger, own)
	assert.False(t, d.Allow)
	assert.Equal(t, ReasonNotOwner, d.Reason)
}

func TestAuthorizeAgentResource(t *testing.T) {
	own := Ownership{OwnerAgentID: 3}

	// 归属中介放行
	owner := Principal{UserID: 10, Role: domain.RoleAgent}
	assert.True(t, Authorize(owner, Ownership{OwnerAgentID: 3, ActorAgentID: 3}).Allow)

	// 别的中介拒绝，理由是归属
	other := Principal{UserID: 11, Role: domain.RoleAgent}
	d := Authorize(other, Ownership{OwnerAgentID: 3, ActorAgentID: 4})
	assert.False(t, d.Allow)
	assert.Equal(t, ReasonNotOwner, d.Reason)

	// 普通用户（无中介身份）拒绝，理由是角色
	user := Principal{UserID: 12, Role: domain.RoleUser}
	d = Authorize(user, own)
	assert.False(t, d.Allow)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)

	// admin 恒放行
	admin := Principal{UserID: 1, Role: domain.RoleAdmin}
	assert.True(t, Authorize(admin, own).Allow)
}

// 中介资源的归属判断只看 Ownership 事实，与主体字段无关（admin 除外）
func TestAgentMatchUsesOwnershipFactsOnly(t *testing.T) {
	own := Ownership{OwnerAgentID: 3, ActorAgentID: 3}

	a := Principal{UserID: 10, Role: domain.RoleAgent}
	b := Principal{UserID: 99, Role: domain.RoleAgent}
	assert.Equal(t, Authorize(a, own), Authorize(b, own))
	assert.True(t, Authorize(b, own).Allow)

	mismatch := Ownership{OwnerAgentID: 3, ActorAgentID: 4}
	assert.Equal(t, Authorize(a, mismatch), Authorize(b, mismatch))
	assert.False(t, Authorize(a, mismatch).Allow)
}

func TestAuthorizeZeroOwnershipDenies(t *testing.T) {
	p := Principal{UserID: 5, Role: domain.RoleUser}
	d := Authorize(p, Ownership{})
	assert.False(t, d.Allow)
}

func TestRequireRole(t *testing.T) {
	agent := Principal{UserID: 2, Role: domain.RoleAgent}
	user := Principal{UserID: 3, Role: domain.RoleUser}
	admin := Principal{UserID: 1, Role: domain.RoleAdmin}

	assert.True(t, RequireRole(agent, domain.RoleAgent).Allow)
	assert.True(t, RequireRole(admin, domain.RoleAgent).Allow)

	d := RequireRole(user, domain.RoleAgent)
	assert.False(t, d.Allow)
	assert.Equal(t, ReasonInsufficientRole, d.Reason)
}
