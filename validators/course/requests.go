package courseValidator

import (
	"fmt"
	"time"

	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

// ============ Categories & Formations ============

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,notblank,min=2,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type FormationRequest struct {
	CategoryID   uint   `json:"category_id" validate:"required"`
	Title        string `json:"title" validate:"required,notblank,min=3,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Duration     int64  `json:"duration" validate:"min=0"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,max=500"`
}

type FormationUpdateRequest struct {
	CategoryID   uint   `json:"category_id"`
	Title        string `json:"title" validate:"omitempty,notblank,min=3,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Duration     int64  `json:"duration" validate:"min=0"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,max=500"`
}

type PublishRequest struct {
	IsPublished bool `json:"is_published"`
}

type FormationListQuery struct {
	CategoryID uint `query:"category_id"`
}

// ============ Modules & Content ============

type ModuleRequest struct {
	Title       string `json:"title" validate:"required,notblank,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
	OrderIndex  int    `json:"order_index" validate:"min=0"`
}

type ModuleUpdateRequest struct {
	Title       string `json:"title" validate:"omitempty,notblank,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
	OrderIndex  int    `json:"order_index" validate:"min=0"`
}

type LessonRequest struct {
	Title      string `json:"title" validate:"required,notblank,min=3,max=200"`
	Content    string `json:"content"`
	VideoURL   string `json:"video_url" validate:"omitempty,url,max=500"`
	FileURL    string `json:"file_url" validate:"omitempty,max=500"`
	OrderIndex int    `json:"order_index" validate:"min=0"`
}

type LessonUpdateRequest struct {
	Title      string `json:"title" validate:"omitempty,notblank,min=3,max=200"`
	Content    string `json:"content"`
	VideoURL   string `json:"video_url" validate:"omitempty,url,max=500"`
	FileURL    string `json:"file_url" validate:"omitempty,max=500"`
	OrderIndex int    `json:"order_index" validate:"min=0"`
}

type QuizQuestionRequest struct {
	Prompt  string   `json:"prompt" validate:"required,notblank"`
	Options []string `json:"options" validate:"required,min=2,dive,required"`
	Answer  int      `json:"answer" validate:"min=0"`
}

type QuizRequest struct {
	Title        string                `json:"title" validate:"required,notblank,min=3,max=200"`
	PassingScore int                   `json:"passing_score" validate:"min=0,max=100"`
	MaxAttempts  int                   `json:"max_attempts" validate:"min=0"`
	Questions    []QuizQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type QuizAttemptRequest struct {
	Answers []int `json:"answers" validate:"required"`
}

type ProjectRequest struct {
	Title        string     `json:"title" validate:"required,notblank,min=3,max=200"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date"`
	MaxScore     float64    `json:"max_score" validate:"omitempty,gt=0"`
	PassingScore float64    `json:"passing_score" validate:"omitempty,gte=0"`
}

type SubmissionRequest struct {
	FileURL string `json:"file_url" form:"file_url" validate:"omitempty,max=500"`
	Comment string `json:"comment" form:"comment" validate:"max=5000"`
}

// ============ Grades & Approvals ============

type GradeSubmissionRequest struct {
	Score   *float64 `json:"score" validate:"required,gte=0"`
	Comment string   `json:"comment" validate:"max=5000"`
}

type GradeRequest struct {
	StudentID uint     `json:"student_id" validate:"required"`
	ModuleID  uint     `json:"module_id" validate:"required"`
	Score     *float64 `json:"score" validate:"required,gte=0"`
	MaxScore  float64  `json:"max_score" validate:"required,gt=0"`
	Comment   string   `json:"comment" validate:"max=5000"`
}

type GradeUpdateRequest struct {
	Score   *float64 `json:"score" validate:"omitempty,gte=0"`
	Comment *string  `json:"comment" validate:"omitempty,max=5000"`
}

type GradeListQuery struct {
	StudentID uint `query:"student_id"`
	ModuleID  uint `query:"module_id"`
}

type ApprovalRequest struct {
	ModuleID uint `json:"module_id" validate:"required"`
}

type ApprovalResponseRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Reason string `json:"reason" validate:"max=1000"`
}

type ApprovalListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

func Category() fiber.Handler {
	return validators.Body[CategoryRequest]("validatedCategory")
}

func CreateFormation() fiber.Handler {
	return validators.Body[FormationRequest]("validatedFormation")
}

func UpdateFormation() fiber.Handler {
	return validators.Body[FormationUpdateRequest]("validatedFormationUpdate")
}

func Publish() fiber.Handler {
	return validators.Body[PublishRequest]("validatedPublish")
}

func FormationList() fiber.Handler {
	return validators.Query[FormationListQuery]("validatedFormationList")
}

func CreateModule() fiber.Handler {
	return validators.Body[ModuleRequest]("validatedModule")
}

func UpdateModule() fiber.Handler {
	return validators.Body[ModuleUpdateRequest]("validatedModuleUpdate")
}

func CreateLesson() fiber.Handler {
	return validators.Body[LessonRequest]("validatedLesson")
}

func UpdateLesson() fiber.Handler {
	return validators.Body[LessonUpdateRequest]("validatedLessonUpdate")
}

func CreateProject() fiber.Handler {
	return validators.Body[ProjectRequest]("validatedProject")
}

func UpdateProject() fiber.Handler {
	return validators.Body[ProjectRequest]("validatedProjectUpdate")
}

func QuizAttempt() fiber.Handler {
	return validators.Body[QuizAttemptRequest]("validatedAttempt")
}

func GradeSubmission() fiber.Handler {
	return validators.Body[GradeSubmissionRequest]("validatedGradeSubmission")
}

func CreateGrade() fiber.Handler {
	return validators.Body[GradeRequest]("validatedGrade")
}

func UpdateGrade() fiber.Handler {
	return validators.Body[GradeUpdateRequest]("validatedGradeUpdate")
}

func GradeList() fiber.Handler {
	return validators.Query[GradeListQuery]("validatedGradeList")
}

func RequestApproval() fiber.Handler {
	return validators.Body[ApprovalRequest]("validatedApproval")
}

func RespondApproval() fiber.Handler {
	return validators.Body[ApprovalResponseRequest]("validatedApprovalResponse")
}

func ApprovalList() fiber.Handler {
	return validators.Query[ApprovalListQuery]("validatedApprovalList")
}

// Quiz validates a quiz body, including that each answer points at one of its options.
func Quiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(QuizRequest)
		if err := validators.BindBody(c, reqData); err != nil {
			return validators.ErrorResponse(c, err)
		}

		errors := make(validators.FieldErrors)
		for i, q := range reqData.Questions {
			if q.Answer >= len(q.Options) {
				errors[fmt.Sprintf("questions[%d].answer", i)] = "answer must index one of the options"
			}
		}
		if len(errors) > 0 {
			return validators.ErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}
