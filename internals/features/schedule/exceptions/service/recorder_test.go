package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tutorflow_backend/internals/configs"
	classModel "tutorflow_backend/internals/features/schedule/classes/model"
	"tutorflow_backend/internals/features/schedule/exceptions/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&classModel.ClassModel{}, &model.ClassExceptionModel{}))
	return db
}

func newWeeklyBase(t *testing.T, db *gorm.DB, teacherID uuid.UUID, startAt time.Time) *classModel.ClassModel {
	t.Helper()
	freq := classModel.FrequencyWeekly
	base := &classModel.ClassModel{
		ClassTeacherID:            teacherID,
		ClassTitle:                "Aula de piano",
		ClassStartAt:              startAt,
		ClassDurationMinutes:      60,
		ClassStatus:               classModel.ClassStatusConfirmada,
		ClassRecurrenceFrequency:  &freq,
		ClassRecurrenceIsInfinite: true,
	}
	require.NoError(t, db.Create(base).Error)
	return base
}

func TestRecordSingleException_UpsertSecondWriteWins(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	base := newWeeklyBase(t, db, teacherID, start)

	occurrence := start.AddDate(0, 0, 7)

	// Primeiro: cancela a ocorrência.
	first, err := RecordSingleException(db, teacherID, base.ClassID, occurrence, ActionCancel, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ExceptionStatusCanceled, first.ClassExceptionStatus)

	// Depois: remarca a MESMA ocorrência. Tem de sobrescrever, não duplicar.
	newStart := occurrence.Add(2 * time.Hour)
	second, err := RecordSingleException(db, teacherID, base.ClassID, occurrence, ActionReschedule, &ReschedulePayload{
		NewStartAt: newStart,
		NewEndAt:   newStart.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ExceptionStatusRescheduled, second.ClassExceptionStatus)

	var rows []model.ClassExceptionModel
	require.NoError(t, db.Where("class_exception_original_class_id = ?", base.ClassID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, model.ExceptionStatusRescheduled, rows[0].ClassExceptionStatus)
	require.NotNil(t, rows[0].ClassExceptionNewStartAt)
	assert.True(t, rows[0].ClassExceptionNewStartAt.Equal(newStart))
}

func TestRecordSingleException_RejectsForeignClass(t *testing.T) {
	db := setupTestDB(t)
	owner := uuid.New()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	base := newWeeklyBase(t, db, owner, start)

	intruder := uuid.New()
	_, err := RecordSingleException(db, intruder, base.ClassID, start, ActionCancel, nil)
	require.Error(t, err)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusForbidden, fe.Code)
}

func TestRecordRecurringExceptions_DefaultHorizonWeekly(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	base := newWeeklyBase(t, db, teacherID, start)

	count, err := RecordRecurringExceptions(db, teacherID, base.ClassID, start, ActionCancel, nil, nil)
	require.NoError(t, err)

	// Semanal num horizonte de 365 dias: 53 ocorrências (inclui a inicial).
	expected := configs.ExceptionHorizonDays/7 + 1
	assert.Equal(t, expected, count)

	var rows int64
	require.NoError(t, db.Model(&model.ClassExceptionModel{}).
		Where("class_exception_original_class_id = ?", base.ClassID).
		Count(&rows).Error)
	assert.Equal(t, int64(count), rows)
}

func TestRecordRecurringExceptions_RespectsEndDate(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	base := newWeeklyBase(t, db, teacherID, start)

	end := start.AddDate(0, 0, 21)
	count, err := RecordRecurringExceptions(db, teacherID, base.ClassID, start, ActionCancel, nil, &end)
	require.NoError(t, err)
	assert.Equal(t, 4, count) // dias 0, 7, 14 e 21
}

func TestRecordRecurringExceptions_UniformRescheduleOffset(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	base := newWeeklyBase(t, db, teacherID, start)

	// Primeira ocorrência remarcada de 10h para 15h30 do mesmo dia: todas
	// as seguintes deslocam as mesmas 5h30.
	newStart := time.Date(2026, 9, 7, 15, 30, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)
	count, err := RecordRecurringExceptions(db, teacherID, base.ClassID, start, ActionReschedule, &ReschedulePayload{
		NewStartAt: newStart,
		NewEndAt:   newStart.Add(time.Hour),
	}, &end)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	var rows []model.ClassExceptionModel
	require.NoError(t, db.
		Where("class_exception_original_class_id = ?", base.ClassID).
		Order("class_exception_date ASC").
		Find(&rows).Error)
	require.Len(t, rows, 3)

	offset := newStart.Sub(start)
	for i, row := range rows {
		expected := start.AddDate(0, 0, 7*i).Add(offset)
		require.NotNil(t, row.ClassExceptionNewStartAt)
		assert.True(t, row.ClassExceptionNewStartAt.Equal(expected),
			"ocorrência %d: esperado %s, veio %s", i, expected, row.ClassExceptionNewStartAt)
	}
}

func TestRecordRecurringExceptions_RejectsNonSeriesClass(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()

	oneOff := &classModel.ClassModel{
		ClassTeacherID:       teacherID,
		ClassTitle:           "Aula avulsa",
		ClassStartAt:         time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
		ClassDurationMinutes: 60,
		ClassStatus:          classModel.ClassStatusConfirmada,
	}
	require.NoError(t, db.Create(oneOff).Error)

	_, err := RecordRecurringExceptions(db, teacherID, oneOff.ClassID, oneOff.ClassStartAt, ActionCancel, nil, nil)
	require.Error(t, err)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusUnprocessableEntity, fe.Code)
}
