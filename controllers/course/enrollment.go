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
	"lms/utils"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetMyGrades lists the caller's grades, newest first
func GetMyGrades(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	var grades []courseModels.Grade
	if err := database.Database.Db.Where("student_id = ? AND is_deleted = ?", user.ID, false).
		Order("created_at desc").Find(&grades).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch grades!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Grades fetched successfully!", grades)
}

// ListGrades lists grades for staff. Teachers only see the students they teach.
func ListGrades(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	query, ok := c.Locals("validatedGradeList").(*courseValidator.GradeListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	tx := db.Where("is_deleted = ?", false)
	if query.StudentID != 0 {
		tx = tx.Where("student_id = ?", query.StudentID)
	}
	if query.ModuleID != 0 {
		tx = tx.Where("module_id = ?", query.ModuleID)
	}
	if user.Role == models.RoleTeacher {
		taught := db.Model(&models.Group{}).Select("id").Where("teacher_id = ? AND is_deleted = ?", user.ID, false)
		students := db.Model(&models.GroupMember{}).Select("user_id").Where("group_id IN (?)", taught)
		tx = tx.Where("student_id IN (?)", students)
	}

	var grades []courseModels.Grade
	if err := tx.Order("created_at desc").Find(&grades).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch grades!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Grades fetched successfully!", grades)
}

// CreateGrade records a manual grade for a student on a module
func CreateGrade(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedGrade").(*courseValidator.GradeRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	if *reqData.Score > reqData.MaxScore {
		return middleware.ErrorResponse(c, services.ErrScoreOutOfRange, "Failed to create grade!")
	}

	db := database.Database.Db
	var student models.User
	if err := db.Where("id = ? AND role = ? AND is_deleted = ?", reqData.StudentID, models.RoleStudent, false).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to create grade!")
	}
	module, err := findModule(db, reqData.ModuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to create grade!")
	}

	allowed, err := services.CanReview(db, user, student.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create grade!")
	}
	if !allowed {
		return middleware.ErrorResponse(c, services.ErrNoAccess, "Failed to create grade!")
	}

	graderID := user.ID
	grade := courseModels.Grade{
		StudentID: student.ID,
		ModuleID:  module.ID,
		Score:     *reqData.Score,
		MaxScore:  reqData.MaxScore,
		Comment:   reqData.Comment,
		GradedBy:  &graderID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&grade).Error; err != nil {
			return err
		}
		return services.Notify(tx, []uint{student.ID}, models.NotificationGrade,
			"New grade",
			fmt.Sprintf("%q graded %.2f/%.2f", module.Title, grade.Score, grade.MaxScore),
			"/grades/me",
		)
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create grade!")
	}

	utils.SendGradeEmail(student.Email, student.Name, module.Title, grade.Score, grade.MaxScore)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Grade created successfully!", grade)
}

func UpdateGrade(c *fiber.Ctx) error {
	gradeID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedGradeUpdate").(*courseValidator.GradeUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var grade courseModels.Grade
	if err := db.Where("id = ? AND is_deleted = ?", gradeID, false).First(&grade).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Grade not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update grade!")
	}

	allowed, err := services.CanReview(db, user, grade.StudentID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update grade!")
	}
	if !allowed {
		return middleware.ErrorResponse(c, services.ErrNoAccess, "Failed to update grade!")
	}

	if reqData.Score != nil {
		if *reqData.Score > grade.MaxScore {
			return middleware.ErrorResponse(c, services.ErrScoreOutOfRange, "Failed to update grade!")
		}
		grade.Score = *reqData.Score
	}
	if reqData.Comment != nil {
		grade.Comment = *reqData.Comment
	}
	graderID := user.ID
	grade.GradedBy = &graderID

	if err := db.Save(&grade).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update grade!")
	}

	if err := services.Notify(db, []uint{grade.StudentID}, models.NotificationGrade,
		"Grade updated",
		fmt.Sprintf("Your grade is now %.2f/%.2f", grade.Score, grade.MaxScore),
		"/grades/me",
	); err != nil {
		log.Printf("Error notifying student %d of grade %d: %v", grade.StudentID, grade.ID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Grade updated successfully!", grade)
}

func DeleteGrade(c *fiber.Ctx) error {
	gradeID := c.Locals("id").(uint)
	db := database.Database.Db

	var grade courseModels.Grade
	if err := db.Where("id = ? AND is_deleted = ?", gradeID, false).First(&grade).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Grade not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete grade!")
	}

	if err := db.Model(&grade).Update("is_deleted", true).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete grade!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Grade deleted successfully!", nil)
}
