package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetFormations lists published formations, optionally filtered by category
func GetFormations(c *fiber.Ctx) error {
	query, ok := c.Locals("validatedFormationList").(*courseValidator.FormationListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tx := database.Database.Db.Where("is_deleted = ? AND is_published = ?", false, true)
	if query.CategoryID != 0 {
		tx = tx.Where("category_id = ?", query.CategoryID)
	}

	var formations []courseModels.Formation
	if err := tx.Order("created_at desc").Find(&formations).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch formations!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Formations fetched successfully!", formations)
}

// GetFormationDetails returns a published formation with its ordered modules
func GetFormationDetails(c *fiber.Ctx) error {
	formationID := c.Locals("id").(uint)

	var formation courseModels.Formation
	err := database.Database.Db.
		Preload("Modules", "is_deleted = ?", false, func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc, id asc")
		}).
		Where("id = ? AND is_deleted = ? AND is_published = ?", formationID, false, true).
		First(&formation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Formation not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch formation!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Formation fetched successfully!", formation)
}

// AdminGetAllFormations lists every formation, published or not
func AdminGetAllFormations(c *fiber.Ctx) error {
	var formations []courseModels.Formation
	if err := database.Database.Db.Where("is_deleted = ?", false).Order("created_at desc").Find(&formations).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch formations!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Formations fetched successfully!", formations)
}

func AdminCreateFormation(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedFormation").(*courseValidator.FormationRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if err := db.Where("id = ? AND is_deleted = ?", reqData.CategoryID, false).First(&courseModels.Category{}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Category not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to create formation!")
	}

	formation := courseModels.Formation{
		CategoryID:   reqData.CategoryID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		Duration:     reqData.Duration,
		ThumbnailURL: reqData.ThumbnailURL,
	}
	if err := db.Create(&formation).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create formation!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Formation created successfully!", formation)
}

func AdminUpdateFormation(c *fiber.Ctx) error {
	formationID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedFormationUpdate").(*courseValidator.FormationUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var formation courseModels.Formation
	if err := db.Where("id = ? AND is_deleted = ?", formationID, false).First(&formation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Formation not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update formation!")
	}

	if reqData.CategoryID != 0 && reqData.CategoryID != formation.CategoryID {
		if err := db.Where("id = ? AND is_deleted = ?", reqData.CategoryID, false).First(&courseModels.Category{}).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Category not found!", nil)
		}
		formation.CategoryID = reqData.CategoryID
	}
	if reqData.Title != "" {
		formation.Title = reqData.Title
	}
	if reqData.Description != "" {
		formation.Description = reqData.Description
	}
	if reqData.Duration > 0 {
		formation.Duration = reqData.Duration
	}
	if reqData.ThumbnailURL != "" {
		formation.ThumbnailURL = reqData.ThumbnailURL
	}

	if err := db.Save(&formation).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update formation!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Formation updated successfully!", formation)
}

// AdminDeleteFormation soft deletes a formation together with its modules and their content
func AdminDeleteFormation(c *fiber.Ctx) error {
	formationID := c.Locals("id").(uint)
	db := database.Database.Db

	var formation courseModels.Formation
	if err := db.Where("id = ? AND is_deleted = ?", formationID, false).First(&formation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Formation not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete formation!")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&formation).Update("is_deleted", true).Error; err != nil {
			return err
		}
		var moduleIDs []uint
		if err := tx.Model(&courseModels.Module{}).Where("formation_id = ? AND is_deleted = ?", formation.ID, false).
			Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}
		return softDeleteModules(tx, moduleIDs)
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete formation!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Formation deleted successfully!", nil)
}

func AdminPublishFormation(c *fiber.Ctx) error {
	formationID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedPublish").(*courseValidator.PublishRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var formation courseModels.Formation
	if err := db.Where("id = ? AND is_deleted = ?", formationID, false).First(&formation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Formation not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update formation!")
	}

	if err := db.Model(&formation).Update("is_published", reqData.IsPublished).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update formation!")
	}

	message := "Formation unpublished successfully!"
	if reqData.IsPublished {
		message = "Formation published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, formation)
}
