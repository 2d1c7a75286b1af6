package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

// GetMyModules lists the modules assigned to the caller's groups with their unlock state
func GetMyModules(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	groupIDs, err := services.StudentGroupIDs(db, user.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch modules!")
	}

	items := []ModuleListItem{}
	if len(groupIDs) == 0 {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", items)
	}

	assigned := db.Model(&models.GroupModule{}).Select("module_id").Where("group_id IN ?", groupIDs)
	var modules []courseModels.Module
	if err := db.Where("id IN (?) AND is_deleted = ?", assigned, false).
		Order("formation_id asc, order_index asc, id asc").Find(&modules).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch modules!")
	}

	for _, module := range modules {
		unlocked, status, err := services.ModuleAccess(db, user, module)
		if err != nil {
			return middleware.ErrorResponse(c, err, "Failed to fetch modules!")
		}
		items = append(items, ModuleListItem{Module: module, Unlocked: unlocked, ApprovalStatus: status})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", items)
}
