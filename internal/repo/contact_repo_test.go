package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
)

func TestContactCreateAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewContactRepo(db)

	agent := seedAgent(t, db, "ct_agent", domain.AgentVerified)
	u := seedUser(t, db, "ct_user", domain.RoleUser)
	p := seedProperty(t, db, agent.ID, "Seoul", 1000, 50)

	msg := "is this still available?"
	cr := &domain.ContactRequest{UserID: u.ID, PropertyID: p.ID, AgentID: agent.ID, Message: &msg}
	require.NoError(t, repo.Create(cr))

	mine, err := repo.ListByUser(u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p.Address, mine[0].Address)

	inbox, err := repo.ListByAgent(agent.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "ct_user", inbox[0].Username)
	assert.False(t, inbox[0].IsRead)
}

func TestContactMarkAsReadScopedToAgent(t *testing.T) {
	db := newTestDB(t)
	repo := NewContactRepo(db)

	owner := seedAgent(t, db, "ct_owner", domain.AgentVerified)
	intruder := seedAgent(t, db, "ct_intruder", domain.AgentVerified)
	u := seedUser(t, db, "ct_user2", domain.RoleUser)
	p := seedProperty(t, db, owner.ID, "Seoul", 1000, 50)

	cr := &domain.ContactRequest{UserID: u.ID, PropertyID: p.ID, AgentID: owner.ID}
	require.NoError(t, repo.Create(cr))

	// 非归属中介按不存在处理
	_, err := repo.MarkAsRead(cr.ID, intruder.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	got, err := repo.MarkAsRead(cr.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}

func TestContactDeleteScopedToUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewContactRepo(db)

	agent := seedAgent(t, db, "ct_agent3", domain.AgentVerified)
	u := seedUser(t, db, "ct_user3", domain.RoleUser)
	stranger := seedUser(t, db, "ct_stranger", domain.RoleUser)
	p := seedProperty(t, db, agent.ID, "Seoul", 1000, 50)

	cr := &domain.ContactRequest{UserID: u.ID, PropertyID: p.ID, AgentID: agent.ID}
	require.NoError(t, repo.Create(cr))

	deleted, err := repo.Delete(cr.ID, stranger.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.Delete(cr.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}
