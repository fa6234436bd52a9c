package domain

import "time"

type BoardCategory struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"category_id"`
	Name        string  `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description *string `gorm:"size:255" json:"description"`
}

func (BoardCategory) TableName() string { return "board_categories" }

type BoardPost struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"post_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CategoryID *uint     `gorm:"index" json:"category_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Views      int       `gorm:"not null;default:0" json:"views"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User     User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Category *BoardCategory  `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
	Comments []BoardComment  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

func (BoardPost) TableName() string { return "board_posts" }

type BoardComment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"comment_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BoardComment) TableName() string { return "board_comments" }

// PostListItem 列表行：帖子 + 作者名 + 分类名 + 评论数
type PostListItem struct {
	BoardPost
	Username     string  `json:"username"`
	CategoryName *string `json:"category_name"`
	CommentCount int64   `json:"comment_count"`
}

// PostDetail 详情：含按时间正序的评论
type PostDetail struct {
	BoardPost
	Username     string        `json:"username"`
	CategoryName *string       `json:"category_name"`
	Comments     []CommentItem `json:"comments"`
}

type CommentItem struct {
	BoardComment
	Username string `json:"username"`
}

type BoardRepository interface {
	ListCategories() ([]BoardCategory, error)
	CreateCategory(c *BoardCategory) error
	UpdateCategory(id uint, name string, description *string) (*BoardCategory, error)
	DeleteCategory(id uint) (bool, error)

	ListPosts(categoryID *uint, offset, limit int) ([]PostListItem, int64, error)
	ListPostsByUser(userID uint) ([]PostListItem, error)
	// FindPost 每次读取自增浏览数；incrementViews=false 用于权限前置查询
	FindPost(id uint, incrementViews bool) (*PostDetail, error)
	CreatePost(p *BoardPost) error
	UpdatePost(id uint, categoryID *uint, title, content string) (*BoardPost, error)
	// DeletePost 帖子与其评论同一事务删除
	DeletePost(id uint) error
	CountPosts() (int64, error)

	FindComment(id uint) (*BoardComment, error)
	CreateComment(c *BoardComment) error
	UpdateComment(id uint, content string) (*BoardComment, error)
	DeleteComment(id uint) (bool, error)
}
