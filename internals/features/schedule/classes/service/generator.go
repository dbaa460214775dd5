package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorflow_backend/internals/configs"
	"tutorflow_backend/internals/features/schedule/classes/model"
)

// GenerateMoreClasses materializa ocorrências futuras de todas as séries
// infinitas do professor até cobrir a janela visível do calendário mais o
// buffer configurado. A cada chamada cada série ganha no máximo
// configs.GenerationBatchCap novas instâncias.
//
// O índice único (class_series_id, class_start_at) + ON CONFLICT DO
// NOTHING substitui a antiga flag client-side de "está gerando": duas
// abas gerando ao mesmo tempo apenas colidem sem efeito.
func GenerateMoreClasses(db *gorm.DB, teacherID uuid.UUID, viewEndDate time.Time, selectedStudents []uuid.UUID) (int, error) {
	var bases []model.ClassModel
	if err := db.
		Where("class_teacher_id = ?", teacherID).
		Where("class_recurrence_frequency IS NOT NULL").
		Where("class_recurrence_is_infinite = ?", true).
		Where("class_status <> ?", model.ClassStatusCancelada).
		Find(&bases).Error; err != nil {
		return 0, fmt.Errorf("buscar séries recorrentes: %w", err)
	}

	horizon := viewEndDate.AddDate(0, 0, configs.GenerationBufferDays)
	total := 0

	for i := range bases {
		created, err := generateForSeries(db, &bases[i], horizon, selectedStudents)
		if err != nil {
			return total, err
		}
		total += created
	}
	return total, nil
}

func generateForSeries(db *gorm.DB, base *model.ClassModel, horizon time.Time, selectedStudents []uuid.UUID) (int, error) {
	stepDays := model.FrequencyStepDays(*base.ClassRecurrenceFrequency)
	if stepDays == 0 {
		// frequência desconhecida: não arrisca loop, só ignora a série
		return 0, nil
	}

	latest, err := latestOccurrence(db, base)
	if err != nil {
		return 0, err
	}
	if !latest.Before(horizon) {
		return 0, nil
	}

	step := time.Duration(stepDays) * 24 * time.Hour
	instances := make([]model.ClassModel, 0, configs.GenerationBatchCap)
	dates := make([]time.Time, 0, configs.GenerationBatchCap)

	for latest.Before(horizon) && len(instances) < configs.GenerationBatchCap {
		latest = latest.Add(step)
		seriesID := base.ClassID
		instances = append(instances, model.ClassModel{
			ClassTeacherID:       base.ClassTeacherID,
			ClassStudentID:       base.ClassStudentID,
			ClassServiceID:       base.ClassServiceID,
			ClassTitle:           base.ClassTitle,
			ClassDescription:     base.ClassDescription,
			ClassStartAt:         latest,
			ClassDurationMinutes: base.ClassDurationMinutes,
			ClassPriceCents:      base.ClassPriceCents,
			ClassStatus:          model.ClassStatusPendente,
			ClassIsGroup:         base.ClassIsGroup,
			ClassIsExperimental:  base.ClassIsExperimental,
			ClassSeriesID:        &seriesID,
		})
		dates = append(dates, latest)
	}
	if len(instances) == 0 {
		return 0, nil
	}

	created := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_series_id"}, {Name: "class_start_at"}},
			DoNothing: true,
		}).Create(&instances)
		if res.Error != nil {
			return fmt.Errorf("inserir instâncias da série %s: %w", base.ClassID, res.Error)
		}
		created = int(res.RowsAffected)

		if !base.ClassIsGroup || len(selectedStudents) == 0 {
			return nil
		}

		// Aula de grupo: um participante por ocorrência por aluno
		// selecionado. Relê os IDs reais porque conflitos de inserção
		// podem ter descartado instâncias desta chamada.
		var classIDs []uuid.UUID
		if err := tx.Model(&model.ClassModel{}).
			Where("class_series_id = ? AND class_start_at IN ?", base.ClassID, dates).
			Pluck("class_id", &classIDs).Error; err != nil {
			return fmt.Errorf("reler instâncias da série %s: %w", base.ClassID, err)
		}

		participants := make([]model.ClassParticipantModel, 0, len(classIDs)*len(selectedStudents))
		for _, cid := range classIDs {
			for _, sid := range selectedStudents {
				participants = append(participants, model.ClassParticipantModel{
					ClassParticipantClassID:   cid,
					ClassParticipantStudentID: sid,
				})
			}
		}
		if len(participants) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_participant_class_id"}, {Name: "class_participant_student_id"}},
			DoNothing: true,
		}).Create(&participants).Error; err != nil {
			return fmt.Errorf("inserir participantes da série %s: %w", base.ClassID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// latestOccurrence devolve o start_at mais tardio entre a linha-base e as
// instâncias já materializadas da série.
func latestOccurrence(db *gorm.DB, base *model.ClassModel) (time.Time, error) {
	var last model.ClassModel
	err := db.
		Where("class_series_id = ? OR class_id = ?", base.ClassID, base.ClassID).
		Order("class_start_at DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return base.ClassStartAt, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("última ocorrência da série %s: %w", base.ClassID, err)
	}
	return last.ClassStartAt, nil
}
