// Package guard 把散落在各 handler 的角色/归属判断收敛成一个纯函数，
// 不做任何 IO，调用方必须在 deny 时短路，不得先行落库或写文件。
package guard

import "roomrent/internal/domain"

// Principal 请求主体，由 JWT 中间件解析注入
type Principal struct {
	UserID uint
	Role   string
}

// Ownership 目标资源的归属事实，由调用方查好传入
type Ownership struct {
	// OwnerUserID 资源直接归属的用户（帖子作者、收藏者、咨询发起人、账号本人）
	OwnerUserID uint
	// OwnerAgentID 归属中介（房源、咨询已读），0 表示不适用
	OwnerAgentID uint
	// ActorAgentID 主体名下的中介 id，0 表示主体不是中介
	ActorAgentID uint
}

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotOwner         Reason = "NotOwner"
	ReasonInsufficientRole Reason = "InsufficientRole"
)

type Decision struct {
	Allow  bool
	Reason Reason
}

var allow = Decision{Allow: true}

func deny(r Reason) Decision { return Decision{Reason: r} }

// Authorize 规则按序评估，先命中先生效：
// 1. admin 全放行；2. 归属匹配放行；3. 否则拒绝
func Authorize(p Principal, own Ownership) Decision {
	if p.Role == domain.RoleAdmin {
		return allow
	}
	if own.OwnerAgentID != 0 {
		if own.actorOwnsAgentResource() {
			return allow
		}
		if own.ActorAgentID == 0 {
			return deny(ReasonInsufficientRole)
		}
		return deny(ReasonNotOwner)
	}
	if own.OwnerUserID != 0 && own.OwnerUserID == p.UserID {
		return allow
	}
	return deny(ReasonNotOwner)
}

// actorOwnsAgentResource 主体名下中介与资源归属中介一致
func (o Ownership) actorOwnsAgentResource() bool {
	return o.ActorAgentID != 0 && o.ActorAgentID == o.OwnerAgentID
}

// RequireRole 纯角色检查（不看归属），用于「必须是中介」这类入口
func RequireRole(p Principal, role string) Decision {
	if p.Role == domain.RoleAdmin || p.Role == role {
		return allow
	}
	return deny(ReasonInsufficientRole)
}
