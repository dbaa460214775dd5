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
	"tutorflow_backend/internals/constants"
	invoiceModel "tutorflow_backend/internals/features/finance/invoices/model"
	notifModel "tutorflow_backend/internals/features/home/notifications/model"
	classModel "tutorflow_backend/internals/features/schedule/classes/model"
	"tutorflow_backend/internals/features/schedule/policies/model"
	profileModel "tutorflow_backend/internals/features/users/profiles/model"
)

type nopMailer struct{}

func (nopMailer) Send(toName, toEmail, subject, htmlBody string) error { return nil }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&profileModel.ProfileModel{},
		&classModel.ClassModel{},
		&classModel.ClassParticipantModel{},
		&model.CancellationPolicyModel{},
		&invoiceModel.InvoiceModel{},
		&notifModel.NotificationModel{},
	))
	return db
}

func newTeacher(t *testing.T, db *gorm.DB, financialEnabled bool) *profileModel.ProfileModel {
	t.Helper()
	p := &profileModel.ProfileModel{
		ProfileFullName:               "Professora Ana",
		ProfileEmail:                  fmt.Sprintf("ana+%s@tutorflow.app", uuid.NewString()[:8]),
		ProfileRole:                   constants.RoleTeacher,
		ProfilePasswordHash:           "x",
		ProfileFinancialModuleEnabled: financialEnabled,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func newStudent(t *testing.T, db *gorm.DB) *profileModel.ProfileModel {
	t.Helper()
	p := &profileModel.ProfileModel{
		ProfileFullName:     "Aluno João",
		ProfileEmail:        fmt.Sprintf("joao+%s@tutorflow.app", uuid.NewString()[:8]),
		ProfileRole:         constants.RoleStudent,
		ProfilePasswordHash: "x",
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func newClass(t *testing.T, db *gorm.DB, teacherID, studentID uuid.UUID, startAt time.Time) *classModel.ClassModel {
	t.Helper()
	cls := &classModel.ClassModel{
		ClassTeacherID:       teacherID,
		ClassStudentID:       &studentID,
		ClassTitle:           "Aula de violão",
		ClassStartAt:         startAt,
		ClassDurationMinutes: 60,
		ClassPriceCents:      10000,
		ClassStatus:          classModel.ClassStatusConfirmada,
	}
	require.NoError(t, db.Create(cls).Error)
	return cls
}

func activePolicy(t *testing.T, db *gorm.DB, teacherID uuid.UUID, hours, pct int) {
	t.Helper()
	require.NoError(t, db.Create(&model.CancellationPolicyModel{
		CancellationPolicyTeacherID:        teacherID,
		CancellationPolicyHoursBeforeClass: hours,
		CancellationPolicyChargePercentage: pct,
		CancellationPolicyIsActive:         true,
	}).Error)
}

func TestEvaluateCancellation_TeacherNeverCharged(t *testing.T) {
	db := setupTestDB(t)
	teacher := newTeacher(t, db, true)
	student := newStudent(t, db)
	activePolicy(t, db, teacher.ProfileID, 24, 50)

	// Em cima da hora, política agressiva: mesmo assim, professor
	// cancelando não gera cobrança.
	cls := newClass(t, db, teacher.ProfileID, student.ProfileID, time.Now().Add(2*time.Hour))

	result, err := EvaluateCancellation(db, nopMailer{}, CancelInput{
		ClassID:         cls.ClassID,
		CancelledBy:     teacher.ProfileID,
		CancelledByType: constants.CancelledByTeacher,
		Reason:          "imprevisto",
	})
	require.NoError(t, err)
	assert.False(t, result.Charged)

	var invoices int64
	require.NoError(t, db.Model(&invoiceModel.InvoiceModel{}).Count(&invoices).Error)
	assert.Zero(t, invoices)

	var reloaded classModel.ClassModel
	require.NoError(t, db.Where("class_id = ?", cls.ClassID).First(&reloaded).Error)
	assert.Equal(t, classModel.ClassStatusCancelada, reloaded.ClassStatus)
	assert.False(t, reloaded.ClassChargeApplied)
	require.NotNil(t, reloaded.ClassCancelledByType)
	assert.Equal(t, constants.CancelledByTeacher, *reloaded.ClassCancelledByType)
}

func TestEvaluateCancellation_StudentOutsideWindowNotCharged(t *testing.T) {
	db := setupTestDB(t)
	teacher := newTeacher(t, db, true)
	student := newStudent(t, db)
	activePolicy(t, db, teacher.ProfileID, 24, 50)

	cls := newClass(t, db, teacher.ProfileID, student.ProfileID, time.Now().Add(48*time.Hour))

	result, err := EvaluateCancellation(db, nopMailer{}, CancelInput{
		ClassID:         cls.ClassID,
		CancelledBy:     student.ProfileID,
		CancelledByType: constants.CancelledByStudent,
	})
	require.NoError(t, err)
	assert.False(t, result.Charged)

	var invoices int64
	require.NoError(t, db.Model(&invoiceModel.InvoiceModel{}).Count(&invoices).Error)
	assert.Zero(t, invoices)
}

func TestEvaluateCancellation_StudentInsideWindowCharged(t *testing.T) {
	db := setupTestDB(t)
	teacher := newTeacher(t, db, true)
	student := newStudent(t, db)
	activePolicy(t, db, teacher.ProfileID, 24, 50)

	cls := newClass(t, db, teacher.ProfileID, student.ProfileID, time.Now().Add(2*time.Hour))

	result, err := EvaluateCancellation(db, nopMailer{}, CancelInput{
		ClassID:         cls.ClassID,
		CancelledBy:     student.ProfileID,
		CancelledByType: constants.CancelledByStudent,
		Reason:          "não posso ir",
	})
	require.NoError(t, err)
	assert.True(t, result.Charged)

	var inv invoiceModel.InvoiceModel
	require.NoError(t, db.First(&inv).Error)
	assert.Equal(t, int64(5000), inv.InvoiceAmountCents) // 50% de 10000
	assert.Equal(t, invoiceModel.InvoiceStatusPendente, inv.InvoiceStatus)
	assert.Equal(t, student.ProfileID, inv.InvoiceStudentID)
	assert.Equal(t, teacher.ProfileID, inv.InvoiceTeacherID)

	var reloaded classModel.ClassModel
	require.NoError(t, db.Where("class_id = ?", cls.ClassID).First(&reloaded).Error)
	assert.True(t, reloaded.ClassChargeApplied)
}

func TestEvaluateCancellation_WithoutEntitlementChargeCleared(t *testing.T) {
	db := setupTestDB(t)
	teacher := newTeacher(t, db, false)
	student := newStudent(t, db)
	activePolicy(t, db, teacher.ProfileID, 24, 50)

	cls := newClass(t, db, teacher.ProfileID, student.ProfileID, time.Now().Add(2*time.Hour))

	result, err := EvaluateCancellation(db, nopMailer{}, CancelInput{
		ClassID:         cls.ClassID,
		CancelledBy:     student.ProfileID,
		CancelledByType: constants.CancelledByStudent,
	})
	require.NoError(t, err)
	assert.False(t, result.Charged)
	assert.Equal(t, "Aula cancelada sem cobrança", result.Message)

	var invoices int64
	require.NoError(t, db.Model(&invoiceModel.InvoiceModel{}).Count(&invoices).Error)
	assert.Zero(t, invoices)
}

func TestEvaluateCancellation_DefaultPolicyIsFree(t *testing.T) {
	db := setupTestDB(t)
	teacher := newTeacher(t, db, true)
	student := newStudent(t, db)
	// Sem política cadastrada: vale a default (percentual zero).

	cls := newClass(t, db, teacher.ProfileID, student.ProfileID, time.Now().Add(1*time.Hour))

	result, err := EvaluateCancellation(db, nopMailer{}, CancelInput{
		ClassID:         cls.ClassID,
		CancelledBy:     student.ProfileID,
		CancelledByType: constants.CancelledByStudent,
	})
	require.NoError(t, err)
	assert.False(t, result.Charged)
}

func TestGetActivePolicy_DefaultWhenNoneConfigured(t *testing.T) {
	db := setupTestDB(t)
	teacherID := uuid.New()

	policy, err := GetActivePolicy(db, teacherID)
	require.NoError(t, err)
	assert.Equal(t, configs.DefaultPolicyHours, policy.CancellationPolicyHoursBeforeClass)
	assert.Zero(t, policy.CancellationPolicyChargePercentage)
}

func TestEvaluateCancellation_AlreadyCancelledConflicts(t *testing.T) {
	db := setupTestDB(t)
	teacher := newTeacher(t, db, true)
	student := newStudent(t, db)

	cls := newClass(t, db, teacher.ProfileID, student.ProfileID, time.Now().Add(48*time.Hour))

	in := CancelInput{
		ClassID:         cls.ClassID,
		CancelledBy:     student.ProfileID,
		CancelledByType: constants.CancelledByStudent,
	}
	_, err := EvaluateCancellation(db, nopMailer{}, in)
	require.NoError(t, err)

	_, err = EvaluateCancellation(db, nopMailer{}, in)
	require.Error(t, err)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusConflict, fe.Code)
}

func TestEvaluateCancellation_ConcurrentCancelConflicts(t *testing.T) {
	db := setupTestDB(t)
	teacher := newTeacher(t, db, true)
	student := newStudent(t, db)
	activePolicy(t, db, teacher.ProfileID, 24, 50)

	cls := newClass(t, db, teacher.ProfileID, student.ProfileID, time.Now().Add(2*time.Hour))

	// Simula a corrida: outra requisição muda o status da mesma aula
	// entre a leitura e o UPDATE condicional desta chamada. A troca é
	// injetada na mesma transação e desfeita pelo rollback; o que o
	// teste garante é que a chamada perdedora detecta a corrida e não
	// grava nada.
	flipped := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test_concurrent_cancel", func(tx *gorm.DB) {
		if flipped || tx.Statement.Table != "classes" {
			return
		}
		flipped = true
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"UPDATE classes SET class_status = ? WHERE class_id = ?",
			classModel.ClassStatusCancelada, cls.ClassID,
		)
	}))

	_, err := EvaluateCancellation(db, nopMailer{}, CancelInput{
		ClassID:         cls.ClassID,
		CancelledBy:     student.ProfileID,
		CancelledByType: constants.CancelledByStudent,
	})
	require.Error(t, err)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusConflict, fe.Code)
	assert.Equal(t, "Aula já está sendo cancelada", fe.Message)
	assert.True(t, flipped)

	var invoices int64
	require.NoError(t, db.Model(&invoiceModel.InvoiceModel{}).Count(&invoices).Error)
	assert.Zero(t, invoices)

	var reloaded classModel.ClassModel
	require.NoError(t, db.Where("class_id = ?", cls.ClassID).First(&reloaded).Error)
	assert.Equal(t, classModel.ClassStatusConfirmada, reloaded.ClassStatus)
	assert.Nil(t, reloaded.ClassCancelledBy)
	assert.False(t, reloaded.ClassChargeApplied)
}

func TestEvaluateCancellation_ConcludedClassRejected(t *testing.T) {
	db := setupTestDB(t)
	teacher := newTeacher(t, db, true)
	student := newStudent(t, db)

	cls := newClass(t, db, teacher.ProfileID, student.ProfileID, time.Now().Add(-48*time.Hour))
	require.NoError(t, db.Model(cls).Update("class_status", classModel.ClassStatusConcluida).Error)

	_, err := EvaluateCancellation(db, nopMailer{}, CancelInput{
		ClassID:         cls.ClassID,
		CancelledBy:     teacher.ProfileID,
		CancelledByType: constants.CancelledByTeacher,
	})
	require.Error(t, err)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusUnprocessableEntity, fe.Code)
}

func TestEvaluateCancellation_StrangerForbidden(t *testing.T) {
	db := setupTestDB(t)
	teacher := newTeacher(t, db, true)
	student := newStudent(t, db)
	stranger := newStudent(t, db)

	cls := newClass(t, db, teacher.ProfileID, student.ProfileID, time.Now().Add(48*time.Hour))

	_, err := EvaluateCancellation(db, nopMailer{}, CancelInput{
		ClassID:         cls.ClassID,
		CancelledBy:     stranger.ProfileID,
		CancelledByType: constants.CancelledByStudent,
	})
	require.Error(t, err)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusForbidden, fe.Code)
}

func TestEvaluateCancellation_GroupClassNotifiesEveryParticipant(t *testing.T) {
	db := setupTestDB(t)
	teacher := newTeacher(t, db, true)

	cls := &classModel.ClassModel{
		ClassTeacherID:       teacher.ProfileID,
		ClassTitle:           "Turma de sábado",
		ClassStartAt:         time.Now().Add(48 * time.Hour),
		ClassDurationMinutes: 90,
		ClassStatus:          classModel.ClassStatusConfirmada,
		ClassIsGroup:         true,
	}
	require.NoError(t, db.Create(cls).Error)

	participants := []*profileModel.ProfileModel{newStudent(t, db), newStudent(t, db), newStudent(t, db)}
	for _, p := range participants {
		require.NoError(t, db.Create(&classModel.ClassParticipantModel{
			ClassParticipantClassID:   cls.ClassID,
			ClassParticipantStudentID: p.ProfileID,
		}).Error)
	}

	_, err := EvaluateCancellation(db, nopMailer{}, CancelInput{
		ClassID:         cls.ClassID,
		CancelledBy:     teacher.ProfileID,
		CancelledByType: constants.CancelledByTeacher,
		Reason:          "feriado",
	})
	require.NoError(t, err)

	var notifCount int64
	require.NoError(t, db.Model(&notifModel.NotificationModel{}).Count(&notifCount).Error)
	assert.Equal(t, int64(len(participants)), notifCount)
}
