package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorflow_backend/internals/features/home/notifications/model"
	helper "tutorflow_backend/internals/helpers"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GET /api/u/notifications
func (ctrl *NotificationController) ListNotifications(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.Model(&model.NotificationModel{}).
		Where("notification_user_id = ?", userID)
	if c.Query("unread") == "true" {
		q = q.Where("notification_read_at IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao contar notificações")
	}

	var items []model.NotificationModel
	if err := q.Order("notification_created_at DESC").
		Offset(paging.Offset).Limit(paging.PerPage).
		Find(&items).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao listar notificações")
	}

	return helper.JsonList(c, "OK", items, helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// PATCH /api/u/notifications/:id/read
func (ctrl *NotificationController) MarkRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID de notificação inválido")
	}

	now := time.Now()
	res := ctrl.DB.Model(&model.NotificationModel{}).
		Where("notification_id = ? AND notification_user_id = ? AND notification_read_at IS NULL", notifID, userID).
		Update("notification_read_at", now)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao marcar como lida")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Notificação não encontrada ou já lida")
	}

	return helper.JsonUpdated(c, "Notificação marcada como lida", nil)
}

// PATCH /api/u/notifications/read-all
func (ctrl *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	now := time.Now()
	res := ctrl.DB.Model(&model.NotificationModel{}).
		Where("notification_user_id = ? AND notification_read_at IS NULL", userID).
		Update("notification_read_at", now)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao marcar notificações")
	}

	return helper.JsonUpdated(c, "Notificações marcadas como lidas", fiber.Map{"updated": res.RowsAffected})
}
