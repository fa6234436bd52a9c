package repo

import (
	"gorm.io/gorm"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
)

type BoardRepo struct{ db *gorm.DB }

func NewBoardRepo(db *gorm.DB) *BoardRepo { return &BoardRepo{db: db} }

/* ---------- 分类 ---------- */

func (r *BoardRepo) ListCategories() ([]domain.BoardCategory, error) {
	cats := make([]domain.BoardCategory, 0, 8)
	if err := r.db.Order("name ASC").Find(&cats).Error; err != nil {
		return nil, internalErr("list categories failed", err)
	}
	return cats, nil
}

func (r *BoardRepo) CreateCategory(c *domain.BoardCategory) error {
	if err := r.db.Create(c).Error; err != nil {
		if isDupKey(err) {
			return apperr.Conflict("category name already exists")
		}
		return internalErr("create category failed", err)
	}
	return nil
}

func (r *BoardRepo) UpdateCategory(id uint, name string, description *string) (*domain.BoardCategory, error) {
	res := r.db.Model(&domain.BoardCategory{}).Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description})
	if res.Error != nil {
		if isDupKey(res.Error) {
			return nil, apperr.Conflict("category name already exists")
		}
		return nil, internalErr("update category failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("category not found")
	}
	var c domain.BoardCategory
	if err := r.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, internalErr("reload category failed", err)
	}
	return &c, nil
}

func (r *BoardRepo) DeleteCategory(id uint) (bool, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// 帖子保留，分类字段置空
		if err := tx.Model(&domain.BoardPost{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return internalErr("detach posts failed", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.BoardCategory{})
		if res.Error != nil {
			return internalErr("delete category failed", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("category not found")
		}
		return nil
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

/* ---------- 帖子 ---------- */

func (r *BoardRepo) postListQuery() *gorm.DB {
	commentCount := r.db.Model(&domain.BoardComment{}).
		Select("COUNT(*)").
		Where("board_comments.post_id = board_posts.id")
	return r.db.Model(&domain.BoardPost{}).
		Select("board_posts.*, users.username, board_categories.name AS category_name, (?) AS comment_count", commentCount).
		Joins("JOIN users ON users.id = board_posts.user_id").
		Joins("LEFT JOIN board_categories ON board_categories.id = board_posts.category_id")
}

func (r *BoardRepo) ListPosts(categoryID *uint, offset, limit int) ([]domain.PostListItem, int64, error) {
	countQ := r.db.Model(&domain.BoardPost{})
	if categoryID != nil {
		countQ = countQ.Where("category_id = ?", *categoryID)
	}
	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, internalErr("count posts failed", err)
	}

	q := r.postListQuery()
	if categoryID != nil {
		q = q.Where("board_posts.category_id = ?", *categoryID)
	}
	items := make([]domain.PostListItem, 0, limit)
	err := q.Order("board_posts.created_at DESC").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, 0, internalErr("list posts failed", err)
	}
	return items, total, nil
}

func (r *BoardRepo) ListPostsByUser(userID uint) ([]domain.PostListItem, error) {
	items := make([]domain.PostListItem, 0, 8)
	err := r.postListQuery().
		Where("board_posts.user_id = ?", userID).
		Order("board_posts.created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, internalErr("list user posts failed", err)
	}
	return items, nil
}

func (r *BoardRepo) FindPost(id uint, incrementViews bool) (*domain.PostDetail, error) {
	var d domain.PostDetail
	err := r.db.Model(&domain.BoardPost{}).
		Select("board_posts.*, users.username, board_categories.name AS category_name").
		Joins("JOIN users ON users.id = board_posts.user_id").
		Joins("LEFT JOIN board_categories ON board_categories.id = board_posts.category_id").
		Where("board_posts.id = ?", id).
		First(&d).Error
	if notFound(err) {
		return nil, apperr.NotFound("post not found")
	}
	if err != nil {
		return nil, internalErr("find post failed", err)
	}

	if incrementViews {
		// 浏览数只能涨，直接写列，不碰 updated_at
		if err := r.db.Model(&domain.BoardPost{}).Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
			return nil, internalErr("increment views failed", err)
		}
		d.Views++
	}

	comments := make([]domain.CommentItem, 0, 8)
	err = r.db.Model(&domain.BoardComment{}).
		Select("board_comments.*, users.username").
		Joins("JOIN users ON users.id = board_comments.user_id").
		Where("board_comments.post_id = ?", id).
		Order("board_comments.created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, internalErr("list comments failed", err)
	}
	d.Comments = comments
	return &d, nil
}

func (r *BoardRepo) CreatePost(p *domain.BoardPost) error {
	if err := r.db.Create(p).Error; err != nil {
		return internalErr("create post failed", err)
	}
	return nil
}

func (r *BoardRepo) UpdatePost(id uint, categoryID *uint, title, content string) (*domain.BoardPost, error) {
	res := r.db.Model(&domain.BoardPost{}).Where("id = ?", id).
		Updates(map[string]any{"category_id": categoryID, "title": title, "content": content})
	if res.Error != nil {
		return nil, internalErr("update post failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("post not found")
	}
	var p domain.BoardPost
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, internalErr("reload post failed", err)
	}
	return &p, nil
}

// DeletePost 帖子与评论同一事务删除
func (r *BoardRepo) DeletePost(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.BoardComment{}).Error; err != nil {
			return internalErr("delete comments failed", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.BoardPost{})
		if res.Error != nil {
			return internalErr("delete post failed", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("post not found")
		}
		return nil
	})
}

func (r *BoardRepo) CountPosts() (int64, error) {
	var n int64
	if err := r.db.Model(&domain.BoardPost{}).Count(&n).Error; err != nil {
		return 0, internalErr("count posts failed", err)
	}
	return n, nil
}

/* ---------- 评论 ---------- */

func (r *BoardRepo) FindComment(id uint) (*domain.BoardComment, error) {
	var c domain.BoardComment
	err := r.db.First(&c, "id = ?", id).Error
	if notFound(err) {
		return nil, apperr.NotFound("comment not found")
	}
	if err != nil {
		return nil, internalErr("find comment failed", err)
	}
	return &c, nil
}

func (r *BoardRepo) CreateComment(c *domain.BoardComment) error {
	if err := r.db.Create(c).Error; err != nil {
		return internalErr("create comment failed", err)
	}
	return nil
}

func (r *BoardRepo) UpdateComment(id uint, content string) (*domain.BoardComment, error) {
	res := r.db.Model(&domain.BoardComment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return nil, internalErr("update comment failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("comment not found")
	}
	return r.FindComment(id)
}

func (r *BoardRepo) DeleteComment(id uint) (bool, error) {
	res := r.db.Where("id = ?", id).Delete(&domain.BoardComment{})
	if res.Error != nil {
		return false, internalErr("delete comment failed", res.Error)
	}
	return res.RowsAffected > 0, nil
}
