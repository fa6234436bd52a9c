package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roomrent/internal/core/auth"
	"roomrent/internal/core/cache"
	"roomrent/internal/core/config"
	"roomrent/internal/repo"
	"roomrent/internal/storage"
	"roomrent/internal/transport/http/handler"
	mdw "roomrent/internal/transport/http/middleware"
)

// Deps 两个 engine 共用的依赖集合，main 中装配一次
type Deps struct {
	Log    *zap.Logger
	DB     *gorm.DB
	JWTer  *auth.JWTer
	Cache  *cache.Cache
	Store  *storage.Local
	Upload config.Upload
}

func baseMiddleware(l *zap.Logger) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		mdw.RequestID(),
		cors.Default(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(64 << 20), // 多图上传，放宽请求体上限
		mdw.Timeout(15 * time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
	}
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(baseMiddleware(d.Log)...)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// 上传文件静态托管；数据库里存的就是 /uploads 相对路径
	r.Static("/uploads", d.Store.Root())

	users := repo.NewUserRepo(d.DB)
	agents := repo.NewAgentRepo(d.DB)
	props := repo.NewPropertyRepo(d.DB)
	images := repo.NewImageRepo(d.DB)
	favs := repo.NewFavoriteRepo(d.DB)
	contacts := repo.NewContactRepo(d.DB)
	board := repo.NewBoardRepo(d.DB)

	uh := handler.NewUserHandler(users, d.JWTer, d.Store, d.Cache, d.Log)
	ah := handler.NewAgentHandler(d.DB, agents, users, d.JWTer, d.Store, d.Upload, d.Log)
	ph := handler.NewPropertyHandler(props, images, agents, d.Store, d.Cache, d.Upload, d.Log)
	fh := handler.NewFavoriteHandler(favs, props, d.Log)
	ch := handler.NewContactHandler(contacts, props, agents, d.Log)
	bh := handler.NewBoardHandler(board, d.Log)

	api := r.Group("/api/v1")

	// 公开；注册登录走每 IP 限速，防撞库
	authLimit := mdw.RateLimitPerIP(5, 20)
	api.POST("/users/register", authLimit, uh.Register)
	api.POST("/users/login", authLimit, uh.Login)
	api.POST("/agents/register", authLimit, ah.Register)
	api.GET("/agents", ah.List)
	api.GET("/agents/:id", ah.GetByID)
	api.GET("/properties", ph.List)
	api.GET("/properties/recent", ph.Recent)
	api.GET("/properties/agent/:id", ph.ListByAgent)
	api.GET("/properties/:id", ph.GetByID)
	api.GET("/board/categories", bh.ListCategories)
	api.GET("/board/posts", bh.ListPosts)
	api.GET("/board/posts/:id", bh.GetPost)

	// 鉴权
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWTer, ""))
	{
		authed.GET("/users/profile", uh.Profile)
		authed.PUT("/users/profile", uh.UpdateProfile)
		authed.DELETE("/users/:id", uh.Delete)

		authed.GET("/agents/profile", ah.Profile)
		authed.PUT("/agents/profile", ah.UpdateProfile)

		authed.POST("/properties", ph.Create)
		authed.PUT("/properties/:id", ph.Update)
		authed.PUT("/properties/:id/thumbnail", ph.SetThumbnail)
		authed.DELETE("/properties/:id/images/:imageId", ph.DeleteImage)
		authed.DELETE("/properties/:id", ph.Delete)

		authed.GET("/favorites", fh.List)
		authed.GET("/favorites/:propertyId", fh.Check)
		authed.POST("/favorites/:propertyId", fh.Add)
		authed.DELETE("/favorites/:propertyId", fh.Remove)

		authed.POST("/contacts/:propertyId", ch.Create)
		authed.GET("/contacts/user", ch.ListMine)
		authed.GET("/contacts/agent", ch.ListReceived)
		authed.PUT("/contacts/:requestId/read", ch.MarkAsRead)
		authed.DELETE("/contacts/:requestId", ch.Delete)

		authed.POST("/board/posts", bh.CreatePost)
		authed.PUT("/board/posts/:id", bh.UpdatePost)
		authed.DELETE("/board/posts/:id", bh.DeletePost)
		authed.POST("/board/posts/:postId/comments", bh.CreateComment)
		authed.PUT("/board/comments/:commentId", bh.UpdateComment)
		authed.DELETE("/board/comments/:commentId", bh.DeleteComment)
		authed.GET("/board/user/posts", bh.ListMyPosts)
	}

	return r
}
