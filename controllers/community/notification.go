package communityController

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/services"
	"lms/validators"
	communityValidator "lms/validators/community"

	"github.com/gofiber/fiber/v2"
)

func ListNotifications(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	query, ok := c.Locals("validatedNotificationList").(*communityValidator.NotificationListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tx := database.Database.Db.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	if query.Unread {
		tx = tx.Where("is_read = ?", false)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch notifications!")
	}

	page, limit, offset := validators.PageOffset(query.Page, query.Limit)
	var notifications []models.Notification
	if err := tx.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch notifications!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully!", fiber.Map{
		"notifications": notifications,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}

func UnreadCount(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	var count int64
	if err := database.Database.Db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).Count(&count).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to count notifications!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unread count fetched successfully!", fiber.Map{"count": count})
}

func MarkNotificationRead(c *fiber.Ctx) error {
	notificationID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)

	res := database.Database.Db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, user.ID).
		Update("is_read", true)
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error, "Failed to update notification!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Notification not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification marked as read!", nil)
}

func MarkAllNotificationsRead(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	res := database.Database.Db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error, "Failed to update notifications!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "All notifications marked as read!", fiber.Map{"updated": res.RowsAffected})
}

// DeleteNotification removes one of the caller's notifications. Other users' rows read as missing.
func DeleteNotification(c *fiber.Ctx) error {
	notificationID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)

	res := database.Database.Db.Where("id = ? AND user_id = ?", notificationID, user.ID).Delete(&models.Notification{})
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error, "Failed to delete notification!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Notification not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification deleted successfully!", nil)
}

// BroadcastNotification sends an announcement to a group, a role, or every active user
func BroadcastNotification(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedBroadcast").(*communityValidator.BroadcastRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	tx := db.Model(&models.User{}).Where("is_deleted = ? AND is_active = ?", false, true)
	if reqData.GroupID != nil {
		if _, err := findGroup(db, *reqData.GroupID); err != nil {
			return middleware.ErrorResponse(c, err, "Failed to send broadcast!")
		}
		tx = tx.Where("id IN (?)", db.Model(&models.GroupMember{}).Select("user_id").Where("group_id = ?", *reqData.GroupID))
	}
	if reqData.Role != "" {
		tx = tx.Where("role = ?", reqData.Role)
	}

	var recipients []uint
	if err := tx.Pluck("id", &recipients).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to send broadcast!")
	}

	if err := services.Notify(db, recipients, models.NotificationAnnouncement, reqData.Title, reqData.Message, ""); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to send broadcast!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Broadcast sent successfully!", fiber.Map{"recipients": len(recipients)})
}
