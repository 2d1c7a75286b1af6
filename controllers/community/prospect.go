package communityController

import (
	"errors"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
	"lms/validators"
	communityValidator "lms/validators/community"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateProspect records a public interest form and forwards it to the CRM webhook
func CreateProspect(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedProspect").(*communityValidator.ProspectRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if reqData.FormationID != nil {
		err := db.Where("id = ? AND is_deleted = ? AND is_published = ?", *reqData.FormationID, false, true).
			First(&courseModels.Formation{}).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Formation not found!", nil)
			}
			return middleware.ErrorResponse(c, err, "Failed to submit request!")
		}
	}

	prospect := models.Prospect{
		Name:        reqData.Name,
		Email:       reqData.Email,
		Phone:       reqData.Phone,
		FormationID: reqData.FormationID,
		Message:     reqData.Message,
		Status:      models.ProspectNew,
	}
	if err := db.Create(&prospect).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to submit request!")
	}

	utils.SyncProspectAsync(prospect)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Request submitted successfully!", prospect)
}

func ListProspects(c *fiber.Ctx) error {
	query, ok := c.Locals("validatedProspectList").(*communityValidator.ProspectListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tx := database.Database.Db.Model(&models.Prospect{}).Where("is_deleted = ?", false)
	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch prospects!")
	}

	page, limit, offset := validators.PageOffset(query.Page, query.Limit)
	var prospects []models.Prospect
	if err := tx.Order("created_at desc").Offset(offset).Limit(limit).Find(&prospects).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch prospects!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Prospects fetched successfully!", fiber.Map{
		"prospects": prospects,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

func UpdateProspectStatus(c *fiber.Ctx) error {
	prospectID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedProspectStatus").(*communityValidator.ProspectStatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var prospect models.Prospect
	if err := db.Where("id = ? AND is_deleted = ?", prospectID, false).First(&prospect).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Prospect not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update prospect!")
	}

	if err := db.Model(&prospect).Update("status", reqData.Status).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update prospect!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Prospect updated successfully!", prospect)
}

func DeleteProspect(c *fiber.Ctx) error {
	prospectID := c.Locals("id").(uint)
	db := database.Database.Db

	res := db.Model(&models.Prospect{}).Where("id = ? AND is_deleted = ?", prospectID, false).Update("is_deleted", true)
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error, "Failed to delete prospect!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Prospect not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Prospect deleted successfully!", nil)
}
