package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ModuleListItem is a module as seen by the caller, with the student's progression state.
type ModuleListItem struct {
	courseModels.Module
	Unlocked       bool   `json:"unlocked"`
	ApprovalStatus string `json:"approval_status"`
}

// ModuleDetails bundles a module with its content.
type ModuleDetails struct {
	courseModels.Module
	Lessons  []courseModels.Lesson  `json:"lessons"`
	Quizzes  []courseModels.Quiz    `json:"quizzes"`
	Projects []courseModels.Project `json:"projects"`
}

// CreateModule adds a module to a formation (Teacher/Admin)
func CreateModule(c *fiber.Ctx) error {
	formationID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if err := db.Where("id = ? AND is_deleted = ?", formationID, false).First(&courseModels.Formation{}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Formation not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to create module!")
	}

	orderIndex := reqData.OrderIndex
	if orderIndex == 0 {
		next, err := nextOrderIndex(db, &courseModels.Module{}, "formation_id", formationID)
		if err != nil {
			return middleware.ErrorResponse(c, err, "Failed to create module!")
		}
		orderIndex = next
	}

	module := courseModels.Module{
		FormationID: formationID,
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  orderIndex,
		CreatedBy:   user.ID,
	}
	if err := db.Create(&module).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create module!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

func UpdateModule(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedModuleUpdate").(*courseValidator.ModuleUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	module, err := findModule(db, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update module!")
	}

	if reqData.Title != "" {
		module.Title = reqData.Title
	}
	if reqData.Description != "" {
		module.Description = reqData.Description
	}
	if reqData.OrderIndex > 0 {
		module.OrderIndex = reqData.OrderIndex
	}

	if err := db.Save(&module).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update module!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// DeleteModule soft deletes a module with its lessons, quizzes and projects
func DeleteModule(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	db := database.Database.Db

	module, err := findModule(db, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete module!")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return softDeleteModules(tx, []uint{module.ID})
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete module!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// ListFormationModules returns every module of a formation in order.
// Students also see whether each module is unlocked for them.
func ListFormationModules(c *fiber.Ctx) error {
	formationID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	if err := db.Where("id = ? AND is_deleted = ?", formationID, false).First(&courseModels.Formation{}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Formation not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch modules!")
	}

	var modules []courseModels.Module
	if err := db.Where("formation_id = ? AND is_deleted = ?", formationID, false).
		Order("order_index asc, id asc").Find(&modules).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch modules!")
	}

	items := make([]ModuleListItem, 0, len(modules))
	for _, module := range modules {
		unlocked, status, err := services.ModuleAccess(db, user, module)
		if err != nil {
			return middleware.ErrorResponse(c, err, "Failed to fetch modules!")
		}
		items = append(items, ModuleListItem{Module: module, Unlocked: unlocked, ApprovalStatus: status})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", items)
}

// GetModule returns a module with its lessons, quizzes and projects.
func GetModule(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	module, err := findModule(db, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch module!")
	}
	if err := ensureModuleAccess(db, user, module); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch module!")
	}

	details := ModuleDetails{Module: module}
	if err := db.Where("module_id = ? AND is_deleted = ?", module.ID, false).
		Order("order_index asc, id asc").Find(&details.Lessons).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch module!")
	}
	if err := db.Where("module_id = ? AND is_deleted = ?", module.ID, false).
		Order("id asc").Find(&details.Quizzes).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch module!")
	}
	if err := db.Where("module_id = ? AND is_deleted = ?", module.ID, false).
		Order("id asc").Find(&details.Projects).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch module!")
	}

	if !user.IsStaff() {
		for i, quiz := range details.Quizzes {
			details.Quizzes[i] = quiz.WithoutAnswers()
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module fetched successfully!", details)
}
