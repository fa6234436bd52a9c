package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
)

func TestAgentVerificationTransitions(t *testing.T) {
	db := newTestDB(t)
	repo := NewAgentRepo(db)
	a := seedAgent(t, db, "transition_agent", domain.AgentPending)

	// pending 以外的目标状态拒绝
	_, err := repo.UpdateVerificationStatus(a.ID, "whatever")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	got, err := repo.UpdateVerificationStatus(a.ID, domain.AgentVerified)
	require.NoError(t, err)
	assert.Equal(t, domain.AgentVerified, got.VerificationStatus)

	// 裁定后不可改判
	_, err = repo.UpdateVerificationStatus(a.ID, domain.AgentRejected)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = repo.UpdateVerificationStatus(99999, domain.AgentVerified)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAgentRejectIsFinal(t *testing.T) {
	db := newTestDB(t)
	repo := NewAgentRepo(db)
	a := seedAgent(t, db, "rejected_agent", domain.AgentPending)

	_, err := repo.UpdateVerificationStatus(a.ID, domain.AgentRejected)
	require.NoError(t, err)

	_, err = repo.UpdateVerificationStatus(a.ID, domain.AgentVerified)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAgentListByStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewAgentRepo(db)

	seedAgent(t, db, "la_pending", domain.AgentPending)
	seedAgent(t, db, "la_verified", domain.AgentVerified)
	seedAgent(t, db, "la_rejected", domain.AgentRejected)

	verified, err := repo.ListVerified()
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, "la_verified", verified[0].Username)

	pending, err := repo.ListByStatus(domain.AgentPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := repo.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := repo.CountByStatus(domain.AgentPending)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAgentFindByUserID(t *testing.T) {
	db := newTestDB(t)
	repo := NewAgentRepo(db)
	a := seedAgent(t, db, "lookup_agent", domain.AgentVerified)

	got, err := repo.FindByUserID(a.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)

	got, err = repo.FindByUserID(99999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAgentUpdatePatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewAgentRepo(db)
	a := seedAgent(t, db, "update_agent", domain.AgentVerified)

	company := "Roomrent Realty"
	got, err := repo.Update(a.ID, domain.AgentPatch{CompanyName: &company})
	require.NoError(t, err)
	require.NotNil(t, got.CompanyName)
	assert.Equal(t, company, *got.CompanyName)
	// 执照不动
	assert.Equal(t, a.LicenseImage, got.LicenseImage)
}
