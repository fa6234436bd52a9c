package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
	mdw "roomrent/internal/transport/http/middleware"
	"roomrent/internal/transport/http/response"
)

type FavoriteHandler struct {
	favs  domain.FavoriteRepository
	props domain.PropertyRepository
	log   *zap.Logger
}

func NewFavoriteHandler(favs domain.FavoriteRepository, props domain.PropertyRepository, log *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{favs: favs, props: props, log: log}
}

func (h *FavoriteHandler) List(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	items, err := h.favs.ListByUser(p.UserID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"favorites": items})
}

// Add 幂等：首次收藏 201，重复收藏 200，不报错也不加行
func (h *FavoriteHandler) Add(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	propertyID, err := pathID(c, "propertyId")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	// 只能收藏公开可见的房源
	if _, err := h.props.FindByID(propertyID); err != nil {
		response.Err(c, h.log, err)
		return
	}

	fav, existed, err := h.favs.Add(p.UserID, propertyID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if existed {
		response.OK(c, gin.H{"message": "property already in favorites", "favorite": fav})
		return
	}
	response.Created(c, gin.H{"message": "property added to favorites", "favorite": fav})
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	propertyID, err := pathID(c, "propertyId")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	removed, err := h.favs.Remove(p.UserID, propertyID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if !removed {
		response.Err(c, h.log, apperr.NotFound("favorite not found"))
		return
	}
	response.Msg(c, 200, "property removed from favorites", nil)
}

// Check 前端渲染收藏按钮用
func (h *FavoriteHandler) Check(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	propertyID, err := pathID(c, "propertyId")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	ok, err := h.favs.IsFavorite(p.UserID, propertyID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"is_favorite": ok})
}
