package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
	mdw "roomrent/internal/transport/http/middleware"
	"roomrent/internal/transport/http/response"
)

type ContactHandler struct {
	contacts domain.ContactRepository
	props    domain.PropertyRepository
	agents   domain.AgentRepository
	log      *zap.Logger
}

func NewContactHandler(contacts domain.ContactRepository, props domain.PropertyRepository, agents domain.AgentRepository, log *zap.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, props: props, agents: agents, log: log}
}

type contactCreateRequest struct {
	Message *string `json:"message"`
}

// Create 建行时从房源冗余 agent_id，中介收件箱不用再联房源表
func (h *ContactHandler) Create(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	propertyID, err := pathID(c, "propertyId")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}

	var in contactCreateRequest
	// 留言可选，空请求体不算错
	_ = c.ShouldBindJSON(&in)

	prop, err := h.props.FindByID(propertyID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}

	cr := domain.ContactRequest{
		UserID:     p.UserID,
		PropertyID: prop.ID,
		AgentID:    prop.AgentID,
		Message:    in.Message,
	}
	if err := h.contacts.Create(&cr); err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.Created(c, gin.H{"message": "contact request sent successfully", "contact_request": cr})
}

// ListMine 用户视角：我发出的咨询
func (h *ContactHandler) ListMine(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	items, err := h.contacts.ListByUser(p.UserID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"contact_requests": items})
}

// ListReceived 中介视角：我名下房源收到的咨询
func (h *ContactHandler) ListReceived(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	agent, err := h.agents.FindByUserID(p.UserID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if agent == nil {
		response.Err(c, h.log, apperr.Forbidden("agent profile not found"))
		return
	}
	items, err := h.contacts.ListByAgent(agent.ID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"contact_requests": items})
}

// MarkAsRead 仓储层按 agent_id 限定更新，非归属中介拿到 404
func (h *ContactHandler) MarkAsRead(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	id, err := pathID(c, "requestId")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	agent, err := h.agents.FindByUserID(p.UserID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if agent == nil {
		response.Err(c, h.log, apperr.Forbidden("agent profile not found"))
		return
	}
	cr, err := h.contacts.MarkAsRead(id, agent.ID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"message": "contact request marked as read", "contact_request": cr})
}

// Delete 只有发起用户本人能删
func (h *ContactHandler) Delete(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	id, err := pathID(c, "requestId")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	deleted, err := h.contacts.Delete(id, p.UserID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if !deleted {
		response.Err(c, h.log, apperr.NotFound("contact request not found"))
		return
	}
	response.Msg(c, 200, "contact request deleted successfully", nil)
}
