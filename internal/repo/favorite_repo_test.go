package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrent/internal/domain"
)

func TestFavoriteAddIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewFavoriteRepo(db)

	agent := seedAgent(t, db, "fav_agent", domain.AgentVerified)
	u := seedUser(t, db, "fav_user", domain.RoleUser)
	p := seedProperty(t, db, agent.ID, "Seoul", 1000, 50)

	fav, existed, err := repo.Add(u.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, existed)
	require.NotNil(t, fav)

	again, existed, err := repo.Add(u.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, fav.ID, again.ID)

	var n int64
	require.NoError(t, db.Model(&domain.Favorite{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestFavoriteRemove(t *testing.T) {
	db := newTestDB(t)
	repo := NewFavoriteRepo(db)

	agent := seedAgent(t, db, "fav_agent2", domain.AgentVerified)
	u := seedUser(t, db, "fav_user2", domain.RoleUser)
	p := seedProperty(t, db, agent.ID, "Seoul", 1000, 50)

	_, _, err := repo.Add(u.ID, p.ID)
	require.NoError(t, err)

	removed, err := repo.Remove(u.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(u.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFavoriteListWithThumbnail(t *testing.T) {
	db := newTestDB(t)
	repo := NewFavoriteRepo(db)

	agent := seedAgent(t, db, "fav_agent3", domain.AgentVerified)
	u := seedUser(t, db, "fav_user3", domain.RoleUser)
	p := seedProperty(t, db, agent.ID, "Busan", 2000, 80)
	seedImage(t, db, p.ID, "/uploads/properties/fav.jpg", true)

	_, _, err := repo.Add(u.ID, p.ID)
	require.NoError(t, err)

	items, err := repo.ListByUser(u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Busan", items[0].City)
	assert.Equal(t, 2000, items[0].Deposit)
	require.NotNil(t, items[0].Thumbnail)
	assert.Equal(t, "/uploads/properties/fav.jpg", *items[0].Thumbnail)

	ok, err := repo.IsFavorite(u.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
