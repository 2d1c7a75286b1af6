package controllers

import (
	"errors"
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	"lms/utils"
	"lms/validators"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func findProject(db *gorm.DB, projectID uint) (courseModels.Project, courseModels.Module, error) {
	var project courseModels.Project
	if err := db.Where("id = ? AND is_deleted = ?", projectID, false).First(&project).Error; err != nil {
		return project, courseModels.Module{}, err
	}
	module, err := findModule(db, project.ModuleID)
	return project, module, err
}

// projectScores fills in the default scores and checks passing <= max.
func projectScores(reqData *courseValidator.ProjectRequest, maxScore, passingScore float64) (float64, float64, error) {
	if reqData.MaxScore > 0 {
		maxScore = reqData.MaxScore
	}
	if reqData.PassingScore > 0 {
		passingScore = reqData.PassingScore
	}
	if passingScore > maxScore {
		return 0, 0, validators.FieldErrors{"passing_score": "passing_score must not exceed max_score"}
	}
	return maxScore, passingScore, nil
}

func CreateProject(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedProject").(*courseValidator.ProjectRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	maxScore, passingScore, err := projectScores(reqData, 20, 10)
	if err != nil {
		return validators.ErrorResponse(c, err)
	}

	db := database.Database.Db
	module, err := findModule(db, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to create project!")
	}

	project := courseModels.Project{
		ModuleID:     module.ID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		DueDate:      reqData.DueDate,
		MaxScore:     maxScore,
		PassingScore: passingScore,
	}
	if err := db.Create(&project).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create project!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Project created successfully!", project)
}

func UpdateProject(c *fiber.Ctx) error {
	projectID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedProjectUpdate").(*courseValidator.ProjectRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	project, _, err := findProject(db, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Project not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update project!")
	}

	maxScore, passingScore, err := projectScores(reqData, project.MaxScore, project.PassingScore)
	if err != nil {
		return validators.ErrorResponse(c, err)
	}

	project.Title = reqData.Title
	if reqData.Description != "" {
		project.Description = reqData.Description
	}
	if reqData.DueDate != nil {
		project.DueDate = reqData.DueDate
	}
	project.MaxScore = maxScore
	project.PassingScore = passingScore

	if err := db.Save(&project).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update project!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Project updated successfully!", project)
}

func DeleteProject(c *fiber.Ctx) error {
	projectID := c.Locals("id").(uint)
	db := database.Database.Db

	project, _, err := findProject(db, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Project not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete project!")
	}

	if err := db.Model(&project).Update("is_deleted", true).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete project!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Project deleted successfully!", nil)
}

func GetModuleProjects(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	module, err := findModule(db, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch projects!")
	}
	if err := ensureModuleAccess(db, user, module); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch projects!")
	}

	var projects []courseModels.Project
	if err := db.Where("module_id = ? AND is_deleted = ?", module.ID, false).
		Order("id asc").Find(&projects).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch projects!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Projects fetched successfully!", projects)
}

func GetProject(c *fiber.Ctx) error {
	projectID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	project, module, err := findProject(db, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Project not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch project!")
	}
	if err := ensureModuleAccess(db, user, module); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch project!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Project fetched successfully!", project)
}

// SubmitProject stores a student's deliverable, either as a multipart "file" or a JSON file_url.
// A pending submission is replaced; a graded one is final.
func SubmitProject(c *fiber.Ctx) error {
	projectID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)

	reqData := new(courseValidator.SubmissionRequest)
	if err := validators.BindBody(c, reqData); err != nil {
		return validators.ErrorResponse(c, err)
	}

	db := database.Database.Db
	project, module, err := findProject(db, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Project not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to submit project!")
	}
	if err := ensureModuleAccess(db, user, module); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to submit project!")
	}

	var existing courseModels.ProjectSubmission
	err = db.Where("project_id = ? AND user_id = ? AND is_deleted = ?", project.ID, user.ID, false).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.ErrorResponse(c, err, "Failed to submit project!")
	}
	found := err == nil
	if found && existing.Status == courseModels.SubmissionGraded {
		return middleware.ErrorResponse(c, services.ErrAlreadyGraded, "Failed to submit project!")
	}

	fileURL := reqData.FileURL
	if file, err := c.FormFile("file"); err == nil {
		fileURL, err = utils.StoreUpload(file)
		if err != nil {
			return middleware.ErrorResponse(c, err, "Failed to upload file!")
		}
	}
	if fileURL == "" {
		return validators.ErrorResponse(c, validators.FieldErrors{"file": "file or file_url is required"})
	}

	submission := existing
	submission.ProjectID = project.ID
	submission.UserID = user.ID
	submission.FileURL = fileURL
	submission.Comment = reqData.Comment
	submission.Status = courseModels.SubmissionSubmitted
	submission.SubmittedAt = time.Now()

	if found {
		// Conditional so a grade landing in between is never overwritten.
		result := db.Model(&courseModels.ProjectSubmission{}).
			Where("id = ? AND status = ?", existing.ID, courseModels.SubmissionSubmitted).
			Updates(map[string]interface{}{
				"file_url":     submission.FileURL,
				"comment":      submission.Comment,
				"submitted_at": submission.SubmittedAt,
			})
		if result.Error != nil {
			return middleware.ErrorResponse(c, result.Error, "Failed to submit project!")
		}
		if result.RowsAffected == 0 {
			return middleware.ErrorResponse(c, services.ErrAlreadyGraded, "Failed to submit project!")
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission updated successfully!", submission)
	}

	if err := db.Create(&submission).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to submit project!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Project submitted successfully!", submission)
}

// ListSubmissions returns every submission of a project for staff, or the caller's own
func ListSubmissions(c *fiber.Ctx) error {
	projectID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	project, module, err := findProject(db, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Project not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch submissions!")
	}
	if err := ensureModuleAccess(db, user, module); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch submissions!")
	}

	query := db.Where("project_id = ? AND is_deleted = ?", project.ID, false)
	if !user.IsStaff() {
		query = query.Where("user_id = ?", user.ID)
	}

	var submissions []courseModels.ProjectSubmission
	if err := query.Order("submitted_at desc").Find(&submissions).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch submissions!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", submissions)
}

// GradeSubmission grades a submission and unlocks the next module on a passing score
func GradeSubmission(c *fiber.Ctx) error {
	submissionID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedGradeSubmission").(*courseValidator.GradeSubmissionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := services.GradeSubmission(database.Database.Db, submissionID, user, *reqData.Score, reqData.Comment)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to grade submission!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission graded successfully!", result)
}
