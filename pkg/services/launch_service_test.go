package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/database"
	"github.com/fisworks/product-engine/pkg/models"
)

type launchFixture struct {
	products  *mockProductRepo
	artifacts *mockArtifactRepo
	checklist *mockChecklistRepo
	audit     *mockAudit
	notifier  *recordingNotifier
	service   LaunchService
}

func newLaunchFixture(t *testing.T, products ...*models.Product) *launchFixture {
	t.Helper()

	f := &launchFixture{
		products:  newMockProductRepo(products...),
		artifacts: newMockArtifactRepo(),
		checklist: newMockChecklistRepo(),
		audit:     &mockAudit{},
		notifier:  &recordingNotifier{},
	}
	f.service = NewLaunchService(&LaunchServiceDeps{
		DB:            &database.DB{},
		ProductRepo:   f.products,
		ArtifactRepo:  f.artifacts,
		ChecklistRepo: f.checklist,
		Audit:         f.audit,
		Notifier:      f.notifier,
		Logger:        zap.NewNop(),
	})
	return f
}

func TestUploadArtifactByOwner(t *testing.T) {
	p := &models.Product{ID: uuid.New(), Status: models.StatusDraft}
	f := newLaunchFixture(t, p)

	err := f.service.UploadArtifact(sessionCtx("Вера", models.RoleActuary), p.ID,
		models.ArtifactTariffCalculation, "tariffs_v3.xlsx")
	require.NoError(t, err)

	stored := f.artifacts.artifacts[models.ArtifactTariffCalculation]
	require.NotNil(t, stored)
	assert.Equal(t, "tariffs_v3.xlsx", stored.FileName)
	assert.Equal(t, "Вера", stored.UploadedBy)

	assert.Equal(t, []string{models.AuditActionUpdate}, f.audit.actions())
	assert.Equal(t, 1, f.notifier.count())
}

func TestUploadArtifactForeignRoleDenied(t *testing.T) {
	p := &models.Product{ID: uuid.New(), Status: models.StatusDraft}
	f := newLaunchFixture(t, p)

	err := f.service.UploadArtifact(sessionCtx("Анна", models.RoleProductOwner), p.ID,
		models.ArtifactTariffCalculation, "tariffs.xlsx")
	ferr, ok := apperrors.IsFieldAccess(err)
	require.True(t, ok)
	assert.Equal(t, models.RoleActuary.String(), ferr.Owner)
	assert.Empty(t, f.artifacts.artifacts)
}

func TestUploadArtifactReplacesPrevious(t *testing.T) {
	p := &models.Product{ID: uuid.New(), Status: models.StatusDraft}
	f := newLaunchFixture(t, p)
	ctx := sessionCtx("Вера", models.RoleActuary)

	require.NoError(t, f.service.UploadArtifact(ctx, p.ID, models.ArtifactTariffCalculation, "v1.xlsx"))
	require.NoError(t, f.service.UploadArtifact(ctx, p.ID, models.ArtifactTariffCalculation, "v2.xlsx"))

	assert.Len(t, f.artifacts.artifacts, 1)
	assert.Equal(t, "v2.xlsx", f.artifacts.artifacts[models.ArtifactTariffCalculation].FileName)
}

func TestUploadArtifactLockedProduct(t *testing.T) {
	p := &models.Product{ID: uuid.New(), Status: models.StatusSentToCB}
	f := newLaunchFixture(t, p)

	err := f.service.UploadArtifact(sessionCtx("Вера", models.RoleActuary), p.ID,
		models.ArtifactTariffCalculation, "late.xlsx")
	assert.ErrorIs(t, err, apperrors.ErrProductLocked)
}

func TestDeleteArtifact(t *testing.T) {
	p := &models.Product{ID: uuid.New(), Status: models.StatusDraft}
	f := newLaunchFixture(t, p)
	ctx := sessionCtx("Глеб", models.RoleMethodologist)

	require.NoError(t, f.service.UploadArtifact(ctx, p.ID, models.ArtifactContractForm, "form.docx"))
	require.NoError(t, f.service.DeleteArtifact(ctx, p.ID, models.ArtifactContractForm))
	assert.Empty(t, f.artifacts.artifacts)

	// Underwriter cannot delete the methodologist's document
	err := f.service.DeleteArtifact(sessionCtx("Борис", models.RoleUnderwriter), p.ID, models.ArtifactContractForm)
	_, ok := apperrors.IsFieldAccess(err)
	assert.True(t, ok)
}

func TestSetChecklistItem(t *testing.T) {
	p := &models.Product{ID: uuid.New(), Status: models.StatusApproved}
	f := newLaunchFixture(t, p)
	ctx := sessionCtx("Анна", models.RoleProductOwner)

	require.NoError(t, f.service.SetChecklistItem(ctx, p.ID, models.ChecklistITSystemsReady, true))
	require.NoError(t, f.service.SetChecklistItem(ctx, p.ID, models.ChecklistTariffsLoaded, true))
	require.NoError(t, f.service.SetChecklistItem(ctx, p.ID, models.ChecklistITSystemsReady, false))

	n, err := f.checklist.CountChecked(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSetChecklistItemUnknownItem(t *testing.T) {
	p := &models.Product{ID: uuid.New(), Status: models.StatusDraft}
	f := newLaunchFixture(t, p)

	err := f.service.SetChecklistItem(sessionCtx("Анна", models.RoleProductOwner), p.ID, "made_up", true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSetChecklistItemLockedProduct(t *testing.T) {
	p := &models.Product{ID: uuid.New(), Status: models.StatusSentToCB}
	f := newLaunchFixture(t, p)

	err := f.service.SetChecklistItem(sessionCtx("Анна", models.RoleProductOwner), p.ID,
		models.ChecklistITSystemsReady, true)
	assert.ErrorIs(t, err, apperrors.ErrProductLocked)
}
