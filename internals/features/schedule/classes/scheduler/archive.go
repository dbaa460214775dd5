package scheduler

import (
	"log"
	"time"

	"gorm.io/gorm"

	"tutorflow_backend/internals/configs"
	"tutorflow_backend/internals/features/schedule/classes/model"
)

// StartClassArchiveScheduler faz a higiene periódica da agenda:
//
//  1. aulas canceladas ou concluídas há mais tempo que o corte de
//     arquivamento são removidas definitivamente;
//  2. instâncias pendentes órfãs (antigas, nunca confirmadas e cuja
//     linha-base da série sumiu) são removidas após o corte de limpeza.
//
// Roda em loop a cada 24h.
func StartClassArchiveScheduler(db *gorm.DB) {
	go func() {
		for {
			log.Println("[ARCHIVE] Executando arquivamento de aulas...")
			archiveSweep(db)
			time.Sleep(24 * time.Hour)
		}
	}()
}

func archiveSweep(db *gorm.DB) {
	archiveBefore := time.Now().AddDate(0, -configs.ArchiveAfterMonths, 0)
	res := db.
		Where("class_start_at < ? AND class_status IN ?",
			archiveBefore,
			[]string{model.ClassStatusCancelada, model.ClassStatusConcluida}).
		Delete(&model.ClassModel{})
	if res.Error != nil {
		log.Printf("[ARCHIVE ERROR] Falha ao arquivar aulas antigas: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("[ARCHIVE] %d aulas antigas arquivadas", res.RowsAffected)
	}

	orphanBefore := time.Now().AddDate(0, 0, -configs.OrphanCutoffDays)
	res = db.
		Where("class_start_at < ? AND class_status = ?",
			orphanBefore, model.ClassStatusPendente).
		Where("class_series_id IS NOT NULL").
		Where("NOT EXISTS (SELECT 1 FROM classes AS series_base WHERE series_base.class_id = classes.class_series_id)").
		Delete(&model.ClassModel{})
	if res.Error != nil {
		log.Printf("[ARCHIVE ERROR] Falha ao limpar instâncias pendentes órfãs: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("[ARCHIVE] %d instâncias pendentes órfãs removidas", res.RowsAffected)
	}
}
