package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tutorflow_backend/internals/configs"
	"tutorflow_backend/internals/features/schedule/classes/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ClassModel{}))
	return db
}

func seedClass(t *testing.T, db *gorm.DB, status string, startAt time.Time, seriesID *uuid.UUID) *model.ClassModel {
	t.Helper()
	cls := &model.ClassModel{
		ClassTeacherID:       uuid.New(),
		ClassTitle:           "Aula de matemática",
		ClassStartAt:         startAt,
		ClassDurationMinutes: 60,
		ClassStatus:          status,
		ClassSeriesID:        seriesID,
	}
	require.NoError(t, db.Create(cls).Error)
	return cls
}

func classExists(t *testing.T, db *gorm.DB, id uuid.UUID) bool {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.ClassModel{}).
		Where("class_id = ?", id).Count(&count).Error)
	return count > 0
}

func TestArchiveSweep_RemovesClosedClassesPastCutoff(t *testing.T) {
	db := setupTestDB(t)
	old := time.Now().AddDate(0, -configs.ArchiveAfterMonths, -7)
	recent := time.Now().AddDate(0, -1, 0)

	oldCancelled := seedClass(t, db, model.ClassStatusCancelada, old, nil)
	oldConcluded := seedClass(t, db, model.ClassStatusConcluida, old, nil)
	recentConcluded := seedClass(t, db, model.ClassStatusConcluida, recent, nil)
	oldConfirmed := seedClass(t, db, model.ClassStatusConfirmada, old, nil)

	archiveSweep(db)

	assert.False(t, classExists(t, db, oldCancelled.ClassID))
	assert.False(t, classExists(t, db, oldConcluded.ClassID))
	assert.True(t, classExists(t, db, recentConcluded.ClassID))
	assert.True(t, classExists(t, db, oldConfirmed.ClassID))
}

func TestArchiveSweep_RemovesOnlyOrphanPendingInstances(t *testing.T) {
	db := setupTestDB(t)
	stale := time.Now().AddDate(0, 0, -(configs.OrphanCutoffDays + 5))

	// Série viva: instância pendente antiga continua ligada à base e
	// não pode ser varrida.
	base := seedClass(t, db, model.ClassStatusConfirmada, stale, nil)
	linked := seedClass(t, db, model.ClassStatusPendente, stale, &base.ClassID)

	// Base da série sumiu: a instância pendente ficou órfã.
	goneSeriesID := uuid.New()
	orphan := seedClass(t, db, model.ClassStatusPendente, stale, &goneSeriesID)

	// Pendente avulsa (sem série) também fica fora da varredura.
	standalone := seedClass(t, db, model.ClassStatusPendente, stale, nil)

	archiveSweep(db)

	assert.True(t, classExists(t, db, linked.ClassID))
	assert.False(t, classExists(t, db, orphan.ClassID))
	assert.True(t, classExists(t, db, standalone.ClassID))
}
