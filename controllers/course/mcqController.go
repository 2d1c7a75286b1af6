package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AttemptResult is returned after a quiz attempt is scored.
type AttemptResult struct {
	Attempt   courseModels.QuizAttempt `json:"attempt"`
	BestScore float64                  `json:"best_score"`
}

func findQuiz(db *gorm.DB, quizID uint) (courseModels.Quiz, courseModels.Module, error) {
	var quiz courseModels.Quiz
	if err := db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return quiz, courseModels.Module{}, err
	}
	module, err := findModule(db, quiz.ModuleID)
	return quiz, module, err
}

func toQuestions(reqData []courseValidator.QuizQuestionRequest) datatypes.JSONSlice[courseModels.QuizQuestion] {
	questions := make(datatypes.JSONSlice[courseModels.QuizQuestion], len(reqData))
	for i, q := range reqData {
		questions[i] = courseModels.QuizQuestion{Prompt: q.Prompt, Options: q.Options, Answer: q.Answer}
	}
	return questions
}

func CreateQuiz(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedQuiz").(*courseValidator.QuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	module, err := findModule(db, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to create quiz!")
	}

	passingScore := reqData.PassingScore
	if passingScore == 0 {
		passingScore = 50
	}

	quiz := courseModels.Quiz{
		ModuleID:     module.ID,
		Title:        reqData.Title,
		PassingScore: passingScore,
		MaxAttempts:  reqData.MaxAttempts,
		Questions:    toQuestions(reqData.Questions),
	}
	if err := db.Create(&quiz).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create quiz!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// UpdateQuiz replaces the quiz definition. Past attempts keep their recorded score.
func UpdateQuiz(c *fiber.Ctx) error {
	quizID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedQuiz").(*courseValidator.QuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	quiz, _, err := findQuiz(db, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update quiz!")
	}

	quiz.Title = reqData.Title
	if reqData.PassingScore > 0 {
		quiz.PassingScore = reqData.PassingScore
	}
	quiz.MaxAttempts = reqData.MaxAttempts
	quiz.Questions = toQuestions(reqData.Questions)

	if err := db.Save(&quiz).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update quiz!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

func DeleteQuiz(c *fiber.Ctx) error {
	quizID := c.Locals("id").(uint)
	db := database.Database.Db

	quiz, _, err := findQuiz(db, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete quiz!")
	}

	if err := db.Model(&quiz).Update("is_deleted", true).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete quiz!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

// GetQuiz returns a quiz. Students never see the answers.
func GetQuiz(c *fiber.Ctx) error {
	quizID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	quiz, module, err := findQuiz(db, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch quiz!")
	}
	if err := ensureModuleAccess(db, user, module); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch quiz!")
	}

	if !user.IsStaff() {
		quiz = quiz.WithoutAnswers()
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", quiz)
}

// SubmitQuizAttempt scores a student's answers and keeps their best score as the quiz grade
func SubmitQuizAttempt(c *fiber.Ctx) error {
	quizID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedAttempt").(*courseValidator.QuizAttemptRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	quiz, module, err := findQuiz(db, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to submit attempt!")
	}
	if err := ensureModuleAccess(db, user, module); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to submit attempt!")
	}
	if len(reqData.Answers) != len(quiz.Questions) {
		return middleware.ErrorResponse(c, services.ErrAnswerCount, "Failed to submit attempt!")
	}

	var result AttemptResult
	err = db.Transaction(func(tx *gorm.DB) error {
		var previous int64
		if err := tx.Model(&courseModels.QuizAttempt{}).
			Where("quiz_id = ? AND user_id = ?", quiz.ID, user.ID).
			Count(&previous).Error; err != nil {
			return err
		}
		if quiz.MaxAttempts > 0 && int(previous) >= quiz.MaxAttempts {
			return services.ErrMaxAttempts
		}

		correct, percent := quiz.Score(reqData.Answers)
		result.Attempt = courseModels.QuizAttempt{
			QuizID:        quiz.ID,
			UserID:        user.ID,
			Answers:       datatypes.JSONSlice[int](reqData.Answers),
			Correct:       correct,
			Score:         percent,
			Passed:        percent >= quiz.PassingScore,
			AttemptNumber: int(previous) + 1,
		}
		if err := tx.Create(&result.Attempt).Error; err != nil {
			return err
		}

		grade, err := services.RecordQuizGrade(tx, quiz, user.ID, percent)
		if err != nil {
			return err
		}
		result.BestScore = grade.Score
		if float64(percent) > result.BestScore {
			result.BestScore = float64(percent)
		}
		return nil
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to submit attempt!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Attempt submitted successfully!", result)
}

// ListQuizAttempts returns the caller's attempts, or every attempt for staff
func ListQuizAttempts(c *fiber.Ctx) error {
	quizID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	quiz, module, err := findQuiz(db, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch attempts!")
	}
	if err := ensureModuleAccess(db, user, module); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch attempts!")
	}

	query := db.Where("quiz_id = ?", quiz.ID)
	if !user.IsStaff() {
		query = query.Where("user_id = ?", user.ID)
	}

	var attempts []courseModels.QuizAttempt
	if err := query.Order("created_at desc").Find(&attempts).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch attempts!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}
