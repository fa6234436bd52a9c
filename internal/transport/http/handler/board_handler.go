package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
	"roomrent/internal/guard"
	mdw "roomrent/internal/transport/http/middleware"
	"roomrent/internal/transport/http/response"
)

type BoardHandler struct {
	board domain.BoardRepository
	log   *zap.Logger
}

func NewBoardHandler(board domain.BoardRepository, log *zap.Logger) *BoardHandler {
	return &BoardHandler{board: board, log: log}
}

func (h *BoardHandler) ListCategories(c *gin.Context) {
	cats, err := h.board.ListCategories()
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"categories": cats})
}

// ListPosts 可按分类过滤，分页同房源列表的收敛规则
func (h *BoardHandler) ListPosts(c *gin.Context) {
	page, limit, offset, err := pageParams(c)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	var categoryID *uint
	if v, err := queryInt(c, "category_id"); err != nil {
		response.Err(c, h.log, err)
		return
	} else if v != nil && *v > 0 {
		id := uint(*v)
		categoryID = &id
	}

	posts, total, err := h.board.ListPosts(categoryID, offset, limit)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{
		"posts":      posts,
		"pagination": response.NewPagination(total, page, limit),
	})
}

func (h *BoardHandler) ListMyPosts(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	posts, err := h.board.ListPostsByUser(p.UserID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"posts": posts})
}

// GetPost 公开阅读，每次读取计一次浏览
func (h *BoardHandler) GetPost(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	post, err := h.board.FindPost(id, true)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"post": post})
}

type postRequest struct {
	CategoryID *uint  `json:"category_id"`
	Title      string `json:"title" binding:"required,max=255"`
	Content    string `json:"content" binding:"required"`
}

func (h *BoardHandler) CreatePost(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)

	var in postRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	post := domain.BoardPost{
		UserID:     p.UserID,
		CategoryID: in.CategoryID,
		Title:      in.Title,
		Content:    in.Content,
	}
	if err := h.board.CreatePost(&post); err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.Created(c, gin.H{"message": "post created successfully", "post": post})
}

// ownPost 作者本人或管理员；权限前置查询不计浏览
func (h *BoardHandler) ownPost(c *gin.Context, id uint) bool {
	p, _ := mdw.CurrentPrincipal(c)
	post, err := h.board.FindPost(id, false)
	if err != nil {
		response.Err(c, h.log, err)
		return false
	}
	if d := guard.Authorize(p, guard.Ownership{OwnerUserID: post.UserID}); !d.Allow {
		response.Err(c, h.log, denyErr(d))
		return false
	}
	return true
}

func (h *BoardHandler) UpdatePost(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if !h.ownPost(c, id) {
		return
	}

	var in postRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	post, err := h.board.UpdatePost(id, in.CategoryID, in.Title, in.Content)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"message": "post updated successfully", "post": post})
}

func (h *BoardHandler) DeletePost(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if !h.ownPost(c, id) {
		return
	}
	if err := h.board.DeletePost(id); err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.Msg(c, 200, "post deleted successfully", nil)
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *BoardHandler) CreateComment(c *gin.Context) {
	p, _ := mdw.CurrentPrincipal(c)
	postID, err := pathID(c, "postId")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	// 先确认帖子存在，悬空评论不落库
	if _, err := h.board.FindPost(postID, false); err != nil {
		response.Err(c, h.log, err)
		return
	}

	var in commentRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	cm := domain.BoardComment{PostID: postID, UserID: p.UserID, Content: in.Content}
	if err := h.board.CreateComment(&cm); err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.Created(c, gin.H{"message": "comment created successfully", "comment": cm})
}

func (h *BoardHandler) ownComment(c *gin.Context, id uint) bool {
	p, _ := mdw.CurrentPrincipal(c)
	cm, err := h.board.FindComment(id)
	if err != nil {
		response.Err(c, h.log, err)
		return false
	}
	if d := guard.Authorize(p, guard.Ownership{OwnerUserID: cm.UserID}); !d.Allow {
		response.Err(c, h.log, denyErr(d))
		return false
	}
	return true
}

func (h *BoardHandler) UpdateComment(c *gin.Context) {
	id, err := pathID(c, "commentId")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if !h.ownComment(c, id) {
		return
	}

	var in commentRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	cm, err := h.board.UpdateComment(id, in.Content)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"message": "comment updated successfully", "comment": cm})
}

func (h *BoardHandler) DeleteComment(c *gin.Context) {
	id, err := pathID(c, "commentId")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if !h.ownComment(c, id) {
		return
	}
	deleted, err := h.board.DeleteComment(id)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if !deleted {
		response.Err(c, h.log, apperr.NotFound("comment not found"))
		return
	}
	response.Msg(c, 200, "comment deleted successfully", nil)
}
