package course

import (
	"time"

	"gorm.io/gorm"
)

const (
	SubmissionSubmitted = "SUBMITTED"
	SubmissionGraded    = "GRADED"
)

type Project struct {
	gorm.Model
	ModuleID     uint       `json:"module_id" gorm:"index;not null"`
	Title        string     `json:"title"`
	Description  string     `json:"description" gorm:"type:text"`
	DueDate      *time.Time `json:"due_date"`
	MaxScore     float64    `json:"max_score" gorm:"default:20"`
	PassingScore float64    `json:"passing_score" gorm:"default:10"`
	IsDeleted    bool       `json:"-" gorm:"default:false"`
}

// ProjectSubmission is a student's deliverable. Replaced until graded.
type ProjectSubmission struct {
	gorm.Model
	ProjectID   uint      `json:"project_id" gorm:"index;not null"`
	UserID      uint      `json:"user_id" gorm:"index;not null"`
	FileURL     string    `json:"file_url"`
	Comment     string    `json:"comment" gorm:"type:text"`
	Status      string    `json:"status" gorm:"default:'SUBMITTED'"`
	SubmittedAt time.Time `json:"submitted_at"`
	IsDeleted   bool      `json:"-" gorm:"default:false"`
}
