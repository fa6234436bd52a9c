package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roomrent/internal/domain"
	"roomrent/internal/repo"
	"roomrent/internal/transport/http/handler"
	mdw "roomrent/internal/transport/http/middleware"
)

// NewAdminEngine 管理端独立进程，整组要求 admin 角色
func NewAdminEngine(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(baseMiddleware(d.Log)...)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := repo.NewUserRepo(d.DB)
	agents := repo.NewAgentRepo(d.DB)
	props := repo.NewPropertyRepo(d.DB)
	board := repo.NewBoardRepo(d.DB)

	h := handler.NewAdminHandler(users, agents, props, board, d.Store, d.Cache, d.Log)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWTer, domain.RoleAdmin))
	{
		admin.GET("/dashboard", h.Dashboard)

		admin.GET("/users", h.ListUsers)
		admin.DELETE("/users/:id", h.DeleteUser)

		admin.GET("/agents", h.ListAgents)
		admin.GET("/agents/pending", h.ListPendingAgents)
		admin.PUT("/agents/:id/verify", h.VerifyAgent)

		admin.POST("/board/categories", h.CreateCategory)
		admin.PUT("/board/categories/:id", h.UpdateCategory)
		admin.DELETE("/board/categories/:id", h.DeleteCategory)
	}

	return r
}
