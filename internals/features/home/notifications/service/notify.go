package service

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorflow_backend/internals/features/home/notifications/model"
	profileModel "tutorflow_backend/internals/features/users/profiles/model"
)

// NotifyClassCancelled insere uma notificação por aluno afetado e dispara
// o e-mail em background (fire-and-forget: falha de e-mail não desfaz o
// cancelamento).
func NotifyClassCancelled(db *gorm.DB, mailer Mailer, classTitle string, studentIDs []uuid.UUID, reason string, charged bool) error {
	if len(studentIDs) == 0 {
		return nil
	}

	title := fmt.Sprintf("Aula cancelada: %s", classTitle)
	desc := "Sua aula foi cancelada."
	if reason != "" {
		desc = fmt.Sprintf("Sua aula foi cancelada. Motivo: %s", reason)
	}
	tags := model.TagList{"class", "cancellation"}
	if charged {
		tags = append(tags, "charged")
		desc += " Uma cobrança por cancelamento tardio foi gerada."
	}

	rows := make([]model.NotificationModel, 0, len(studentIDs))
	for _, sid := range studentIDs {
		rows = append(rows, model.NotificationModel{
			NotificationUserID:      sid,
			NotificationTitle:       title,
			NotificationDescription: desc,
			NotificationType:        model.NotificationTypeClassCancelled,
			NotificationTags:        tags,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("inserir notificações: %w", err)
	}

	// E-mail em background, isolado com recover para nunca derrubar a
	// requisição que cancelou a aula.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ERROR] panic no envio de e-mail de cancelamento: %v", r)
			}
		}()
		var profiles []profileModel.ProfileModel
		if err := db.Where("profile_id IN ?", studentIDs).Find(&profiles).Error; err != nil {
			log.Printf("[ERROR] buscar perfis para e-mail: %v", err)
			return
		}
		body := fmt.Sprintf("<p>%s</p>", desc)
		for _, p := range profiles {
			if err := mailer.Send(p.ProfileFullName, p.ProfileEmail, title, body); err != nil {
				log.Printf("[ERROR] e-mail de cancelamento para %s: %v", p.ProfileEmail, err)
			}
		}
	}()

	return nil
}
