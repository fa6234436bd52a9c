package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
)

func TestBoardCategoryCRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewBoardRepo(db)

	c := &domain.BoardCategory{Name: "general"}
	require.NoError(t, repo.CreateCategory(c))

	err := repo.CreateCategory(&domain.BoardCategory{Name: "general"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	desc := "rental talk"
	got, err := repo.UpdateCategory(c.ID, "rental", &desc)
	require.NoError(t, err)
	assert.Equal(t, "rental", got.Name)

	deleted, err := repo.DeleteCategory(c.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteCategory(c.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestBoardDeleteCategoryDetachesPosts(t *testing.T) {
	db := newTestDB(t)
	repo := NewBoardRepo(db)
	u := seedUser(t, db, "poster", domain.RoleUser)

	c := &domain.BoardCategory{Name: "news"}
	require.NoError(t, repo.CreateCategory(c))
	post := &domain.BoardPost{UserID: u.ID, CategoryID: &c.ID, Title: "t", Content: "c"}
	require.NoError(t, repo.CreatePost(post))

	deleted, err := repo.DeleteCategory(c.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// 帖子保留，分类置空
	got, err := repo.FindPost(post.ID, false)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.CategoryName)
}

func TestBoardPostViewsIncrement(t *testing.T) {
	db := newTestDB(t)
	repo := NewBoardRepo(db)
	u := seedUser(t, db, "viewer", domain.RoleUser)

	post := &domain.BoardPost{UserID: u.ID, Title: "t", Content: "c"}
	require.NoError(t, repo.CreatePost(post))

	d, err := repo.FindPost(post.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Views)

	d, err = repo.FindPost(post.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Views)

	// 权限前置查询不计浏览
	d, err = repo.FindPost(post.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Views)
	assert.Equal(t, "viewer", d.Username)
}

func TestBoardListPostsWithCategoryFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewBoardRepo(db)
	u := seedUser(t, db, "lister", domain.RoleUser)

	c := &domain.BoardCategory{Name: "qna"}
	require.NoError(t, repo.CreateCategory(c))

	require.NoError(t, repo.CreatePost(&domain.BoardPost{UserID: u.ID, CategoryID: &c.ID, Title: "in", Content: "x"}))
	require.NoError(t, repo.CreatePost(&domain.BoardPost{UserID: u.ID, Title: "out", Content: "x"}))

	items, total, err := repo.ListPosts(&c.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "in", items[0].Title)
	require.NotNil(t, items[0].CategoryName)
	assert.Equal(t, "qna", *items[0].CategoryName)

	_, total, err = repo.ListPosts(nil, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestBoardDeletePostCascadesComments(t *testing.T) {
	db := newTestDB(t)
	repo := NewBoardRepo(db)
	u := seedUser(t, db, "author", domain.RoleUser)

	post := &domain.BoardPost{UserID: u.ID, Title: "t", Content: "c"}
	require.NoError(t, repo.CreatePost(post))
	require.NoError(t, repo.CreateComment(&domain.BoardComment{PostID: post.ID, UserID: u.ID, Content: "one"}))
	require.NoError(t, repo.CreateComment(&domain.BoardComment{PostID: post.ID, UserID: u.ID, Content: "two"}))

	require.NoError(t, repo.DeletePost(post.ID))

	var n int64
	require.NoError(t, db.Model(&domain.BoardComment{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)

	err := repo.DeletePost(post.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestBoardCommentCRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewBoardRepo(db)
	u := seedUser(t, db, "commenter", domain.RoleUser)

	post := &domain.BoardPost{UserID: u.ID, Title: "t", Content: "c"}
	require.NoError(t, repo.CreatePost(post))

	cm := &domain.BoardComment{PostID: post.ID, UserID: u.ID, Content: "hello"}
	require.NoError(t, repo.CreateComment(cm))

	got, err := repo.UpdateComment(cm.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	d, err := repo.FindPost(post.ID, false)
	require.NoError(t, err)
	require.Len(t, d.Comments, 1)
	assert.Equal(t, "commenter", d.Comments[0].Username)

	deleted, err := repo.DeleteComment(cm.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteComment(cm.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
