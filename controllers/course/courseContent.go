package controllers

import (
	"errors"
	"fmt"
	"log"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// findLesson loads a live lesson together with its live module.
func findLesson(db *gorm.DB, lessonID uint) (courseModels.Lesson, courseModels.Module, error) {
	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return lesson, courseModels.Module{}, err
	}
	module, err := findModule(db, lesson.ModuleID)
	return lesson, module, err
}

// CreateLesson adds a lesson to a module and tells the students who can already open it
func CreateLesson(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	module, err := findModule(db, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to create lesson!")
	}

	orderIndex := reqData.OrderIndex
	if orderIndex == 0 {
		next, err := nextOrderIndex(db, &courseModels.Lesson{}, "module_id", module.ID)
		if err != nil {
			return middleware.ErrorResponse(c, err, "Failed to create lesson!")
		}
		orderIndex = next
	}

	lesson := courseModels.Lesson{
		ModuleID:   module.ID,
		Title:      reqData.Title,
		Content:    reqData.Content,
		VideoURL:   reqData.VideoURL,
		FileURL:    reqData.FileURL,
		OrderIndex: orderIndex,
	}
	if err := db.Create(&lesson).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create lesson!")
	}

	studentIDs, err := services.StudentsWithAccess(db, module)
	if err == nil {
		err = services.Notify(db, studentIDs, models.NotificationNewContent,
			"New lesson",
			fmt.Sprintf("%q was added to %q", lesson.Title, module.Title),
			fmt.Sprintf("/lessons/%d", lesson.ID),
		)
	}
	if err != nil {
		log.Printf("Error notifying students about lesson %d: %v", lesson.ID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

func UpdateLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedLessonUpdate").(*courseValidator.LessonUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	lesson, _, err := findLesson(db, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update lesson!")
	}

	if reqData.Title != "" {
		lesson.Title = reqData.Title
	}
	if reqData.Content != "" {
		lesson.Content = reqData.Content
	}
	if reqData.VideoURL != "" {
		lesson.VideoURL = reqData.VideoURL
	}
	if reqData.FileURL != "" {
		lesson.FileURL = reqData.FileURL
	}
	if reqData.OrderIndex > 0 {
		lesson.OrderIndex = reqData.OrderIndex
	}

	if err := db.Save(&lesson).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update lesson!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

func DeleteLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("id").(uint)
	db := database.Database.Db

	lesson, _, err := findLesson(db, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete lesson!")
	}

	if err := db.Model(&lesson).Update("is_deleted", true).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete lesson!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// GetModuleLessons lists the lessons of a module in order
func GetModuleLessons(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	module, err := findModule(db, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch lessons!")
	}
	if err := ensureModuleAccess(db, user, module); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch lessons!")
	}

	var lessons []courseModels.Lesson
	if err := db.Where("module_id = ? AND is_deleted = ?", module.ID, false).
		Order("order_index asc, id asc").Find(&lessons).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch lessons!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", lessons)
}

func GetLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	lesson, module, err := findLesson(db, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch lesson!")
	}
	if err := ensureModuleAccess(db, user, module); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch lesson!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", lesson)
}
