package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roomrent/internal/apperr"
	"roomrent/internal/core/cache"
	"roomrent/internal/domain"
	"roomrent/internal/storage"
	"roomrent/internal/transport/http/response"
)

// AdminHandler 后台接口，路由层已用 admin 角色闸住
type AdminHandler struct {
	users  domain.UserRepository
	agents domain.AgentRepository
	props  domain.PropertyRepository
	board  domain.BoardRepository
	store  *storage.Local
	cache  *cache.Cache
	log    *zap.Logger
}

func NewAdminHandler(
	users domain.UserRepository,
	agents domain.AgentRepository,
	props domain.PropertyRepository,
	board domain.BoardRepository,
	store *storage.Local,
	ch *cache.Cache,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{users: users, agents: agents, props: props, board: board, store: store, cache: ch, log: log}
}

// Dashboard 总量统计 + 最近注册/上架
func (h *AdminHandler) Dashboard(c *gin.Context) {
	userCount, err := h.users.Count()
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	agentCount, err := h.agents.Count()
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	pendingCount, err := h.agents.CountByStatus(domain.AgentPending)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	propertyCount, err := h.props.Count()
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	postCount, err := h.board.CountPosts()
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	recentUsers, _, err := h.users.List(0, 5)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	recentProps, err := h.props.Recent(5)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}

	response.OK(c, gin.H{
		"stats": gin.H{
			"total_users":    userCount,
			"total_agents":   agentCount,
			"pending_agents": pendingCount,
			"total_properties": propertyCount,
			"total_posts":    postCount,
		},
		"recent_users":      recentUsers,
		"recent_properties": recentProps,
	})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit, offset, err := pageParams(c)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	users, total, err := h.users.List(offset, limit)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{
		"users":      users,
		"pagination": response.NewPagination(total, page, limit),
	})
}

// DeleteUser 管理员删号，级联 + 文件清理同用户自删
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	orphans, err := h.users.Delete(id)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	h.store.Remove(orphans...)
	invalidateRecentCache(c, h.cache, h.log)
	response.Msg(c, 200, "user deleted successfully", nil)
}

func (h *AdminHandler) ListAgents(c *gin.Context) {
	status := c.Query("status")
	var (
		agents []domain.AgentInfo
		err    error
	)
	switch status {
	case "":
		agents, err = h.agents.ListAll()
	case domain.AgentPending, domain.AgentVerified, domain.AgentRejected:
		agents, err = h.agents.ListByStatus(status)
	default:
		response.Err(c, h.log, apperr.Validation("invalid status filter"))
		return
	}
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"agents": agents})
}

func (h *AdminHandler) ListPendingAgents(c *gin.Context) {
	agents, err := h.agents.ListByStatus(domain.AgentPending)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"agents": agents})
}

type verifyAgentRequest struct {
	Status string `json:"status" binding:"required"`
}

// VerifyAgent pending → verified / rejected，已裁定的不允许改判
func (h *AdminHandler) VerifyAgent(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	var in verifyAgentRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	a, err := h.agents.UpdateVerificationStatus(id, in.Status)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"message": "agent verification updated", "agent": a})
}

type categoryRequest struct {
	Name        string  `json:"name" binding:"required,max=64"`
	Description *string `json:"description"`
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var in categoryRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	cat := domain.BoardCategory{Name: in.Name, Description: in.Description}
	if err := h.board.CreateCategory(&cat); err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.Created(c, gin.H{"message": "category created successfully", "category": cat})
}

func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	var in categoryRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	cat, err := h.board.UpdateCategory(id, in.Name, in.Description)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"message": "category updated successfully", "category": cat})
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	deleted, err := h.board.DeleteCategory(id)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if !deleted {
		response.Err(c, h.log, apperr.NotFound("category not found"))
		return
	}
	response.Msg(c, 200, "category deleted successfully", nil)
}
