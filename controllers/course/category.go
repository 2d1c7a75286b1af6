package controllers

import (
	"errors"
	"strings"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func categoryNameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&courseModels.Category{}).
		Where("LOWER(name) = ? AND is_deleted = ? AND id <> ?", strings.ToLower(name), false, exceptID).
		Count(&count).Error
	return count > 0, err
}

// GetCategories lists all categories
func GetCategories(c *fiber.Ctx) error {
	var categories []courseModels.Category
	if err := database.Database.Db.Where("is_deleted = ?", false).Order("name asc").Find(&categories).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch categories!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully!", categories)
}

func CreateCategory(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCategory").(*courseValidator.CategoryRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	name := strings.TrimSpace(reqData.Name)
	taken, err := categoryNameTaken(db, name, 0)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create category!")
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Category already exists!", nil)
	}

	category := courseModels.Category{Name: name, Description: reqData.Description}
	if err := db.Create(&category).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create category!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Category created successfully!", category)
}

func UpdateCategory(c *fiber.Ctx) error {
	categoryID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedCategory").(*courseValidator.CategoryRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var category courseModels.Category
	if err := db.Where("id = ? AND is_deleted = ?", categoryID, false).First(&category).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update category!")
	}

	name := strings.TrimSpace(reqData.Name)
	taken, err := categoryNameTaken(db, name, category.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update category!")
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Category already exists!", nil)
	}

	category.Name = name
	category.Description = reqData.Description
	if err := db.Save(&category).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update category!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category updated successfully!", category)
}

// DeleteCategory refuses to delete a category that still has formations
func DeleteCategory(c *fiber.Ctx) error {
	categoryID := c.Locals("id").(uint)
	db := database.Database.Db

	var category courseModels.Category
	if err := db.Where("id = ? AND is_deleted = ?", categoryID, false).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Category not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete category!")
	}

	var count int64
	if err := db.Model(&courseModels.Formation{}).Where("category_id = ? AND is_deleted = ?", categoryID, false).Count(&count).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete category!")
	}
	if count > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Category still has formations!", nil)
	}

	if err := db.Model(&category).Update("is_deleted", true).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete category!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category deleted successfully!", nil)
}
