// Package handler 请求处理层：绑定 → 鉴权（guard 先行，拒绝即短路，
// 不做任何落库/文件 IO）→ 仓储 → 整形响应。
package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"roomrent/internal/apperr"
	"roomrent/internal/guard"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100 // pageSize 上限，防止客户端拉全表
)

// pathID 路径参数转 id
func pathID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return uint(v), nil
}

// queryInt 可选数值参数；缺省返回 nil，非数值直接报验证错误，
// 不把原始串透传给持久层
func queryInt(c *gin.Context, name string) (*int, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, apperr.Validation("invalid " + name)
	}
	return &v, nil
}

// pageParams page ≥ 1、1 ≤ limit ≤ 100，越界收敛到边界
func pageParams(c *gin.Context) (page, limit, offset int, err error) {
	p, err := queryInt(c, "page")
	if err != nil {
		return 0, 0, 0, err
	}
	l, err := queryInt(c, "limit")
	if err != nil {
		return 0, 0, 0, err
	}
	page, limit = defaultPage, defaultLimit
	if p != nil && *p >= 1 {
		page = *p
	}
	if l != nil && *l >= 1 {
		limit = *l
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit, nil
}

// parseDate 表单日期，YYYY-MM-DD
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, apperr.Validation("invalid date: " + *s)
	}
	return &t, nil
}

// denyErr guard 拒绝原因转 403
func denyErr(d guard.Decision) error {
	if d.Reason == guard.ReasonInsufficientRole {
		return apperr.Forbidden("insufficient role")
	}
	return apperr.Forbidden("not the owner of this resource")
}
