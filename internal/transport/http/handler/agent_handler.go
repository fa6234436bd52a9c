package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roomrent/internal/apperr"
	"roomrent/internal/core/auth"
	"roomrent/internal/core/config"
	"roomrent/internal/domain"
	"roomrent/internal/storage"
	mdw "roomrent/internal/transport/http/middleware"
	"roomrent/internal/transport/http/response"
	"roomrent/pkg/utils"
)

type AgentHandler struct {
	db     *gorm.DB // 用户 + 中介两行同一事务
	agents domain.AgentRepository
	users  domain.UserRepository
	jwter  *auth.JWTer
	store  *storage.Local
	upload config.Upload
	log    *zap.Logger
}

func NewAgentHandler(
	db *gorm.DB,
	agents domain.AgentRepository,
	users domain.UserRepository,
	jwter *auth.JWTer,
	store *storage.Local,
	upload config.Upload,
	log *zap.Logger,
) *AgentHandler {
	return &AgentHandler{db: db, agents: agents, users: users, jwter: jwter, store: store, upload: upload, log: log}
}

func (h *AgentHandler) maxLicenseBytes() int64 {
	return int64(h.upload.MaxLicenseMB) << 20
}

type agentRegisterForm struct {
	Username      string  `form:"username" binding:"required,max=64"`
	Password      string  `form:"password" binding:"required"`
	Email         string  `form:"email" binding:"required"`
	PhoneNumber   string  `form:"phone_number" binding:"required"`
	CompanyName   *string `form:"company_name"`
	OfficeAddress *string `form:"office_address"`
}

// Register 中介注册：执照图必传，user + agent 两行同一事务；
// 事务失败则回收已落盘的执照文件
func (h *AgentHandler) Register(c *gin.Context) {
	var in agentRegisterForm
	if err := c.ShouldBind(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if !utils.IsValidEmail(in.Email) {
		response.Err(c, h.log, apperr.Validation("invalid email format"))
		return
	}
	if !utils.IsValidPhoneNumber(in.PhoneNumber) {
		response.Err(c, h.log, apperr.Validation("invalid phone number format"))
		return
	}
	if !utils.IsStrongPassword(in.Password) {
		response.Err(c, h.log, apperr.Validation("password must be at least 8 characters long and contain upper, lower and digit"))
		return
	}

	fh, err := c.FormFile("licenseImage")
	if err != nil {
		response.Err(c, h.log, apperr.Validation("license image is required"))
		return
	}
	licensePath, err := h.store.Save(c, fh, storage.KindLicense, h.maxLicenseBytes())
	if err != nil {
		response.Err(c, h.log, err)
		return
	}

	u := domain.User{
		Username:     in.Username,
		PasswordHash: utils.HashPassword(in.Password),
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		Role:         domain.RoleAgent,
	}
	a := domain.Agent{
		LicenseImage:       licensePath,
		CompanyName:        in.CompanyName,
		OfficeAddress:      in.OfficeAddress,
		VerificationStatus: domain.AgentPending,
	}
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if e := tx.Create(&u).Error; e != nil {
			return e
		}
		a.UserID = u.ID
		return tx.Create(&a).Error
	})
	if err != nil {
		h.store.Remove(licensePath)
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") ||
			strings.Contains(strings.ToLower(err.Error()), "unique") {
			response.Err(c, h.log, apperr.Conflict("username or email already exists"))
			return
		}
		response.Err(c, h.log, apperr.Internal("agent register failed", err))
		return
	}

	token, err := h.jwter.Issue(u.ID, u.Role)
	if err != nil {
		response.Err(c, h.log, apperr.Internal("issue token failed", err))
		return
	}
	response.Created(c, gin.H{
		"message": "agent registered successfully, pending verification",
		"user":    u,
		"agent":   a,
		"token":   token,
	})
}

// Profile 当前中介自己的档案
func (h *AgentHandler) Profile(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	a, err := h.agents.FindByUserID(p.UserID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if a == nil {
		response.Err(c, h.log, apperr.NotFound("agent profile not found"))
		return
	}
	response.OK(c, gin.H{"agent": a})
}

type agentUpdateForm struct {
	CompanyName   *string `form:"company_name"`
	OfficeAddress *string `form:"office_address"`
}

// UpdateProfile 可选替换执照图；换图成功提交后才删旧文件
func (h *AgentHandler) UpdateProfile(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	a, err := h.agents.FindByUserID(p.UserID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if a == nil {
		response.Err(c, h.log, apperr.NotFound("agent profile not found"))
		return
	}

	var in agentUpdateForm
	if err := c.ShouldBind(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	patch := domain.AgentPatch{CompanyName: in.CompanyName, OfficeAddress: in.OfficeAddress}

	oldLicense := ""
	if fh, ferr := c.FormFile("licenseImage"); ferr == nil {
		newPath, serr := h.store.Save(c, fh, storage.KindLicense, h.maxLicenseBytes())
		if serr != nil {
			response.Err(c, h.log, serr)
			return
		}
		patch.LicenseImage = &newPath
		oldLicense = a.LicenseImage
	}

	updated, err := h.agents.Update(a.ID, patch)
	if err != nil {
		if patch.LicenseImage != nil {
			h.store.Remove(*patch.LicenseImage)
		}
		response.Err(c, h.log, err)
		return
	}
	if oldLicense != "" {
		h.store.Remove(oldLicense)
	}
	response.OK(c, gin.H{"message": "agent profile updated successfully", "agent": updated})
}

// List 公开的已认证中介名录
func (h *AgentHandler) List(c *gin.Context) {
	agents, err := h.agents.ListVerified()
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"agents": agents})
}

func (h *AgentHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	a, err := h.agents.FindByID(id)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"agent": a})
}
