package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequestModuleApproval lets a student ask to unlock a module assigned to one of their groups
func RequestModuleApproval(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedApproval").(*courseValidator.ApprovalRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	module, err := findModule(db, reqData.ModuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to request access!")
	}

	approval, err := services.RequestApproval(db, user, module)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to request access!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Access requested successfully!", approval)
}

// ListApprovals returns the approvals visible to the caller:
// students see their own, teachers those of the students they teach, admins all.
func ListApprovals(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	query, ok := c.Locals("validatedApprovalList").(*courseValidator.ApprovalListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	tx := db.Model(&courseModels.ModuleApproval{})
	switch user.Role {
	case models.RoleStudent:
		tx = tx.Where("user_id = ?", user.ID)
	case models.RoleTeacher:
		taught := db.Model(&models.Group{}).Select("id").Where("teacher_id = ? AND is_deleted = ?", user.ID, false)
		students := db.Model(&models.GroupMember{}).Select("user_id").Where("group_id IN (?)", taught)
		tx = tx.Where("user_id IN (?)", students)
	}
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}

	var approvals []courseModels.ModuleApproval
	if err := tx.Order("requested_at desc").Find(&approvals).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch approvals!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Approvals fetched successfully!", approvals)
}

// RespondModuleApproval approves or rejects a pending request
func RespondModuleApproval(c *fiber.Ctx) error {
	approvalID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedApprovalResponse").(*courseValidator.ApprovalResponseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	approval, err := services.RespondApproval(database.Database.Db, approvalID, user, reqData.Status, reqData.Reason)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Approval not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to respond to approval!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Approval updated successfully!", approval)
}
