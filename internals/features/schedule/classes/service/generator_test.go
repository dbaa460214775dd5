package service

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
	require.NoError(t, db.AutoMigrate(&model.ClassModel{}, &model.ClassParticipantModel{}))
	return db
}

func newWeeklySeries(t *testing.T, db *gorm.DB, teacherID uuid.UUID, startAt time.Time) *model.ClassModel {
	t.Helper()
	freq := model.FrequencyWeekly
	studentID := uuid.New()
	base := &model.ClassModel{
		ClassTeacherID:            teacherID,
		ClassStudentID:            &studentID,
		ClassTitle:                "Aula de inglês",
		ClassStartAt:              startAt,
		ClassDurationMinutes:      60,
		ClassPriceCents:           10000,
		ClassStatus:               model.ClassStatusConfirmada,
		ClassRecurrenceFrequency:  &freq,
		ClassRecurrenceIsInfinite: true,
	}
	require.NoError(t, db.Create(base).Error)
	return base
}

func TestGenerateMoreClasses_CoversHorizonWithBuffer(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()
	start := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)
	base := newWeeklySeries(t, db, teacherID, start)

	viewEnd := start.AddDate(0, 0, 30)
	created, err := GenerateMoreClasses(db, teacherID, viewEnd, nil)
	require.NoError(t, err)
	assert.Greater(t, created, 0)

	// A última ocorrência materializada tem de passar da borda visível
	// mais o buffer de geração.
	horizon := viewEnd.AddDate(0, 0, configs.GenerationBufferDays)
	var last model.ClassModel
	require.NoError(t, db.
		Where("class_series_id = ?", base.ClassID).
		Order("class_start_at DESC").
		First(&last).Error)
	assert.False(t, last.ClassStartAt.Before(horizon), "última ocorrência %s antes do horizonte %s", last.ClassStartAt, horizon)

	// Instâncias nascem pendentes e apontando para a série.
	var instances []model.ClassModel
	require.NoError(t, db.Where("class_series_id = ?", base.ClassID).Find(&instances).Error)
	for _, inst := range instances {
		assert.Equal(t, model.ClassStatusPendente, inst.ClassStatus)
		assert.Equal(t, base.ClassID, *inst.ClassSeriesID)
		assert.Equal(t, base.ClassTitle, inst.ClassTitle)
	}
}

func TestGenerateMoreClasses_CapsBatchPerSeries(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()
	start := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)
	base := newWeeklySeries(t, db, teacherID, start)

	// Horizonte de anos: sem o teto a geração materializaria centenas.
	viewEnd := start.AddDate(3, 0, 0)
	created, err := GenerateMoreClasses(db, teacherID, viewEnd, nil)
	require.NoError(t, err)
	assert.Equal(t, configs.GenerationBatchCap, created)

	var count int64
	require.NoError(t, db.Model(&model.ClassModel{}).
		Where("class_series_id = ?", base.ClassID).
		Count(&count).Error)
	assert.Equal(t, int64(configs.GenerationBatchCap), count)
}

func TestGenerateMoreClasses_IdempotentAcrossCalls(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()
	start := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)
	newWeeklySeries(t, db, teacherID, start)

	viewEnd := start.AddDate(0, 0, 21)
	first, err := GenerateMoreClasses(db, teacherID, viewEnd, nil)
	require.NoError(t, err)
	assert.Greater(t, first, 0)

	// Segunda chamada com a mesma janela: nada novo para criar.
	second, err := GenerateMoreClasses(db, teacherID, viewEnd, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second)
}

func TestGenerateMoreClasses_SkipsCancelledAndFiniteSeries(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()
	start := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)

	cancelled := newWeeklySeries(t, db, teacherID, start)
	require.NoError(t, db.Model(cancelled).
		Update("class_status", model.ClassStatusCancelada).Error)

	finite := newWeeklySeries(t, db, teacherID, start.Add(time.Hour))
	require.NoError(t, db.Model(finite).
		Update("class_recurrence_is_infinite", false).Error)

	created, err := GenerateMoreClasses(db, teacherID, start.AddDate(0, 1, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestGenerateMoreClasses_GroupSeriesGetsParticipants(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()
	start := time.Date(2026, 9, 7, 19, 0, 0, 0, time.UTC)

	freq := model.FrequencyWeekly
	base := &model.ClassModel{
		ClassTeacherID:            teacherID,
		ClassTitle:                "Turma de conversação",
		ClassStartAt:              start,
		ClassDurationMinutes:      90,
		ClassStatus:               model.ClassStatusConfirmada,
		ClassIsGroup:              true,
		ClassRecurrenceFrequency:  &freq,
		ClassRecurrenceIsInfinite: true,
	}
	require.NoError(t, db.Create(base).Error)

	students := []uuid.UUID{uuid.New(), uuid.New()}
	created, err := GenerateMoreClasses(db, teacherID, start.AddDate(0, 0, 14), students)
	require.NoError(t, err)
	require.Greater(t, created, 0)

	var participantCount int64
	require.NoError(t, db.Model(&model.ClassParticipantModel{}).Count(&participantCount).Error)
	assert.Equal(t, int64(created*len(students)), participantCount)
}
