package services

import (
	"carbon-market/internal/models"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveIssuesCredits(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)
	svc := NewProjectService(db, credits, &stubNotifier{})
	owner := createTestUser(t, db, "owner", models.RoleUser)
	project := createTestProject(t, db, owner.ID, models.ProjectStatusUnderReview, 10)

	got, err := svc.Approve(project.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusConfirmed, got.Status)
	assert.Equal(t, 5, got.TotalCreditsGenerated)

	var available int64
	require.NoError(t, db.Model(&models.Credit{}).
		Where("project_id = ? AND status = ?", project.ID, models.CreditStatusAvailable).
		Count(&available).Error)
	assert.Equal(t, int64(5), available)
}

func TestApproveValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewCreditService(db), nil)
	owner := createTestUser(t, db, "owner", models.RoleUser)

	_, err := svc.Approve(999, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	project := createTestProject(t, db, owner.ID, models.ProjectStatusUnderReview, 10)
	_, err = svc.Approve(project.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// A second approval is rejected
	_, err = svc.Approve(project.ID, 5)
	require.NoError(t, err)
	_, err = svc.Approve(project.ID, 5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApproveSurvivesNotificationFailure(t *testing.T) {
	db := newTestDB(t)
	notifier := &stubNotifier{err: errors.New("smtp down")}
	svc := NewProjectService(db, NewCreditService(db), notifier)
	owner := createTestUser(t, db, "owner", models.RoleUser)
	project := createTestProject(t, db, owner.ID, models.ProjectStatusUnderReview, 10)

	// The email collaborator failing must not roll back the issuance
	got, err := svc.Approve(project.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusConfirmed, got.Status)

	var count int64
	require.NoError(t, db.Model(&models.Credit{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestDenyIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewCreditService(db), nil)
	owner := createTestUser(t, db, "owner", models.RoleUser)
	project := createTestProject(t, db, owner.ID, models.ProjectStatusUnderReview, 10)

	got, err := svc.Deny(project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusDenied, got.Status)

	_, err = svc.Approve(project.ID, 5)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Deny(project.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db, NewCreditService(db), nil)
	owner := createTestUser(t, db, "owner", models.RoleUser)
	stranger := createTestUser(t, db, "stranger", models.RoleUser)

	pending := createTestProject(t, db, owner.ID, models.ProjectStatusUnderReview, 10)
	err := svc.SetVisibility(pending.ID, owner.ID, true)
	assert.ErrorIs(t, err, ErrInvalidInput)

	confirmed := createTestProject(t, db, owner.ID, models.ProjectStatusConfirmed, 10)
	err = svc.SetVisibility(confirmed.ID, stranger.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.SetVisibility(confirmed.ID, owner.ID, true))

	marketplace, err := svc.GetMarketplaceProjects()
	require.NoError(t, err)
	require.Len(t, marketplace, 1)
	assert.Equal(t, confirmed.ID, marketplace[0].ID)
}

func TestDeleteProjectCascadesCredits(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)
	svc := NewProjectService(db, credits, nil)
	owner := createTestUser(t, db, "owner", models.RoleUser)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	stranger := createTestUser(t, db, "stranger", models.RoleUser)
	project := createTestProject(t, db, owner.ID, models.ProjectStatusConfirmed, 10)

	_, err := credits.AddCredits(project.ID, 4)
	require.NoError(t, err)

	err = svc.DeleteProject(project.ID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteProject(project.ID, admin))

	var count int64
	require.NoError(t, db.Model(&models.Credit{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.GetProject(project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
