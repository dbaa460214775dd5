package scheduler

import (
	"log"
	"time"

	"gorm.io/gorm"

	"tutorflow_backend/internals/configs"
	"tutorflow_backend/internals/features/users/auth/model"
)

// StartBlacklistCleanupScheduler remove da blacklist tokens cujo prazo de
// expiração já passou. Roda em loop a cada 24h.
func StartBlacklistCleanupScheduler(db *gorm.DB) {
	go func() {
		ttlDays := configs.GetEnvInt("TOKEN_BLACKLIST_TTL_DAYS", 7)

		for {
			log.Println("[CLEANUP] Limpando token_blacklist...")

			deleteBefore := time.Now().Add(-time.Duration(ttlDays) * 24 * time.Hour)

			res := db.
				Where("expired_at < ?", deleteBefore).
				Delete(&model.TokenBlacklist{})
			if res.Error != nil {
				log.Printf("[CLEANUP ERROR] Falha ao remover tokens expirados: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("[CLEANUP] %d tokens expirados removidos", res.RowsAffected)
			} else {
				log.Println("[CLEANUP] Nenhum token para remover")
			}

			time.Sleep(24 * time.Hour)
		}
	}()
}
