package services

import (
	"errors"
	"fmt"
	"log"

	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"gorm.io/gorm"
)

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	Grade    courseModels.Grade           `json:"grade"`
	Unlocked *courseModels.Module         `json:"unlocked_module"`
	Approval *courseModels.ModuleApproval `json:"approval"`
}

// GradeSubmission grades a project submission. When the score reaches the project's passing
// score, the next module of the formation is approved for the student in the same transaction.
func GradeSubmission(db *gorm.DB, submissionID uint, grader models.User, score float64, comment string) (*GradeResult, error) {
	var result GradeResult
	var submission courseModels.ProjectSubmission
	var project courseModels.Project

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_deleted = ?", submissionID, false).First(&submission).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ? AND is_deleted = ?", submission.ProjectID, false).First(&project).Error; err != nil {
			return err
		}
		var module courseModels.Module
		if err := tx.Where("id = ? AND is_deleted = ?", project.ModuleID, false).First(&module).Error; err != nil {
			return err
		}

		if score < 0 || score > project.MaxScore {
			return ErrScoreOutOfRange
		}

		allowed, err := CanReview(tx, grader, submission.UserID)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrNoAccess
		}

		graderID := grader.ID
		grade := courseModels.Grade{}
		err = tx.Where("submission_id = ?", submission.ID).First(&grade).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		grade.StudentID = submission.UserID
		grade.ModuleID = module.ID
		grade.ProjectID = &project.ID
		grade.SubmissionID = &submission.ID
		grade.Score = score
		grade.MaxScore = project.MaxScore
		grade.Comment = comment
		grade.GradedBy = &graderID
		grade.IsDeleted = false
		if err := tx.Save(&grade).Error; err != nil {
			return err
		}
		result.Grade = grade

		if err := tx.Model(&submission).Update("status", courseModels.SubmissionGraded).Error; err != nil {
			return err
		}

		if err := Notify(tx, []uint{submission.UserID}, models.NotificationGrade,
			"New grade",
			fmt.Sprintf("%q graded %.2f/%.2f", project.Title, score, project.MaxScore),
			fmt.Sprintf("/projects/%d", project.ID),
		); err != nil {
			return err
		}

		if score < project.PassingScore {
			return nil
		}

		next, err := NextModule(tx, module)
		if err != nil || next == nil {
			return err
		}
		approval, changed, err := AutoApprove(tx, submission.UserID, *next, grader.ID)
		if err != nil {
			return err
		}
		result.Approval = approval
		if !changed {
			return nil
		}
		result.Unlocked = next

		return Notify(tx, []uint{submission.UserID}, models.NotificationModuleUnlocked,
			"Module unlocked",
			fmt.Sprintf("You passed %q. %q is now unlocked", project.Title, next.Title),
			fmt.Sprintf("/modules/%d", next.ID),
		)
	})
	if err != nil {
		return nil, err
	}

	var student models.User
	if err := db.First(&student, submission.UserID).Error; err != nil {
		log.Printf("Error loading student %d for grade email: %v", submission.UserID, err)
		return &result, nil
	}
	utils.SendGradeEmail(student.Email, student.Name, project.Title, score, project.MaxScore)
	if result.Unlocked != nil {
		utils.SendModuleUnlockedEmail(student.Email, student.Name, result.Unlocked.Title)
	}

	return &result, nil
}

// RecordQuizGrade keeps the student's best quiz score as their grade for the quiz.
func RecordQuizGrade(db *gorm.DB, quiz courseModels.Quiz, studentID uint, percent int) (*courseModels.Grade, error) {
	var grade courseModels.Grade
	err := db.Where("quiz_id = ? AND student_id = ? AND is_deleted = ?", quiz.ID, studentID, false).First(&grade).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		grade = courseModels.Grade{
			StudentID: studentID,
			ModuleID:  quiz.ModuleID,
			QuizID:    &quiz.ID,
			Score:     float64(percent),
			MaxScore:  100,
		}
		if err := db.Create(&grade).Error; err != nil {
			return nil, err
		}
		return &grade, nil
	}
	if err != nil {
		return nil, err
	}

	if float64(percent) > grade.Score {
		if err := db.Model(&grade).Update("score", float64(percent)).Error; err != nil {
			return nil, err
		}
	}
	return &grade, nil
}
