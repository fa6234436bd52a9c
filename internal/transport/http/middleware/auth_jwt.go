package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roomrent/internal/core/auth"
	"roomrent/internal/guard"
	"roomrent/internal/transport/http/response"
)

const keyPrincipal = "principal"

// AuthJWT 解析 Bearer token 注入 Principal；requireRole 非空时校验角色
// （admin 恒通过角色校验）
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Body{Message: "missing token"})
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Body{Message: "invalid or expired token"})
			return
		}
		p := guard.Principal{UserID: claims.UID, Role: claims.Role}
		if requireRole != "" {
			if d := guard.RequireRole(p, requireRole); !d.Allow {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Body{Message: "forbidden"})
				return
			}
		}
		c.Set(keyPrincipal, p)
		c.Next()
	}
}

// CurrentPrincipal handler 侧取主体；未经过 AuthJWT 的路由返回 false
func CurrentPrincipal(c *gin.Context) (guard.Principal, bool) {
	v, ok := c.Get(keyPrincipal)
	if !ok {
		return guard.Principal{}, false
	}
	p, ok := v.(guard.Principal)
	return p, ok
}
