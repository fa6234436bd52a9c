package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roomrent/internal/apperr"
)

// Body 统一响应体；错误时 message 稳定可依赖，detail 仅非生产模式透出
type Body struct {
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Production 生产模式下不回传底层错误细节，进程启动时设置一次
var Production = true

// OK 200
func OK(c *gin.Context, data any) { c.JSON(http.StatusOK, data) }

// Created 201
func Created(c *gin.Context, data any) { c.JSON(http.StatusCreated, data) }

// Err 统一错误出口：映射 HTTP 状态码，Internal 级别记日志
func Err(c *gin.Context, l *zap.Logger, err error) {
	ae := apperr.As(err)
	if ae.Kind == apperr.KindInternal && l != nil {
		l.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
	}
	body := Body{Message: ae.Error()}
	if !Production && ae.Err != nil {
		body.Detail = ae.Err.Error()
	}
	c.AbortWithStatusJSON(ae.HTTPStatus(), body)
}

// Msg 带提示语的成功响应
func Msg(c *gin.Context, status int, msg string, extra gin.H) {
	out := gin.H{"message": msg}
	for k, v := range extra {
		out[k] = v
	}
	c.JSON(status, out)
}
