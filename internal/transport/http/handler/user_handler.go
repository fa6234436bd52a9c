package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roomrent/internal/apperr"
	"roomrent/internal/core/auth"
	"roomrent/internal/core/cache"
	"roomrent/internal/domain"
	"roomrent/internal/guard"
	"roomrent/internal/storage"
	mdw "roomrent/internal/transport/http/middleware"
	"roomrent/internal/transport/http/response"
	"roomrent/pkg/utils"
)

type UserHandler struct {
	users domain.UserRepository
	jwter *auth.JWTer
	store *storage.Local
	cache *cache.Cache
	log   *zap.Logger
}

func NewUserHandler(users domain.UserRepository, jwter *auth.JWTer, store *storage.Local, ch *cache.Cache, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, jwter: jwter, store: store, cache: ch, log: log}
}

type registerRequest struct {
	Username    string `json:"username" binding:"required,max=64"`
	Password    string `json:"password" binding:"required"`
	Email       string `json:"email" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

func (h *UserHandler) validateRegister(in *registerRequest) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if !utils.IsValidEmail(in.Email) {
		return apperr.Validation("invalid email format")
	}
	if !utils.IsValidPhoneNumber(in.PhoneNumber) {
		return apperr.Validation("invalid phone number format")
	}
	if !utils.IsStrongPassword(in.Password) {
		return apperr.Validation("password must be at least 8 characters long and contain upper, lower and digit")
	}
	return nil
}

// Register 自助注册只发 user 角色；agent 走中介注册流程
func (h *UserHandler) Register(c *gin.Context) {
	var in registerRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	if err := h.validateRegister(&in); err != nil {
		response.Err(c, h.log, err)
		return
	}

	u := domain.User{
		Username:     in.Username,
		PasswordHash: utils.HashPassword(in.Password),
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		Role:         domain.RoleUser,
	}
	if err := h.users.Create(&u); err != nil {
		response.Err(c, h.log, err)
		return
	}

	token, err := h.jwter.Issue(u.ID, u.Role)
	if err != nil {
		response.Err(c, h.log, apperr.Internal("issue token failed", err))
		return
	}
	response.Created(c, gin.H{"message": "user registered successfully", "user": u, "token": token})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}

	u, err := h.users.FindByUsername(strings.TrimSpace(in.Username))
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		response.Err(c, h.log, apperr.Auth("invalid credentials"))
		return
	}

	token, err := h.jwter.Issue(u.ID, u.Role)
	if err != nil {
		response.Err(c, h.log, apperr.Internal("issue token failed", err))
		return
	}
	response.OK(c, gin.H{"message": "login successful", "user": u, "token": token})
}

func (h *UserHandler) Profile(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	u, err := h.users.FindByID(p.UserID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"user": u})
}

type updateProfileRequest struct {
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Password    *string `json:"password"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)

	var in updateProfileRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	if in.Email != nil && !utils.IsValidEmail(*in.Email) {
		response.Err(c, h.log, apperr.Validation("invalid email format"))
		return
	}
	if in.PhoneNumber != nil && !utils.IsValidPhoneNumber(*in.PhoneNumber) {
		response.Err(c, h.log, apperr.Validation("invalid phone number format"))
		return
	}
	if in.Password != nil && !utils.IsStrongPassword(*in.Password) {
		response.Err(c, h.log, apperr.Validation("password must be at least 8 characters long and contain upper, lower and digit"))
		return
	}
	if in.Email != nil {
		existing, err := h.users.FindByEmail(*in.Email)
		if err != nil {
			response.Err(c, h.log, err)
			return
		}
		if existing != nil && existing.ID != p.UserID {
			response.Err(c, h.log, apperr.Conflict("email already exists"))
			return
		}
	}

	u, err := h.users.UpdateProfile(p.UserID, domain.UserPatch{
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Password:    in.Password,
	})
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"message": "profile updated successfully", "user": u})
}

// Delete 只允许本人或管理员；级联删除后尽力清理文件
func (h *UserHandler) Delete(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}

	if d := guard.Authorize(p, guard.Ownership{OwnerUserID: id}); !d.Allow {
		response.Err(c, h.log, denyErr(d))
		return
	}

	orphans, err := h.users.Delete(id)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	h.store.Remove(orphans...)
	// 被删用户若是中介，名下房源已级联删除
	invalidateRecentCache(c, h.cache, h.log)
	response.Msg(c, 200, "user deleted successfully", nil)
}
