package course

import "gorm.io/gorm"

// Grade is a score for a student. SubmissionID and QuizID are each unique when set.
type Grade struct {
	gorm.Model
	StudentID    uint    `json:"student_id" gorm:"index;not null"`
	ModuleID     uint    `json:"module_id" gorm:"index;not null"`
	ProjectID    *uint   `json:"project_id" gorm:"index"`
	SubmissionID *uint   `json:"submission_id" gorm:"uniqueIndex"`
	QuizID       *uint   `json:"quiz_id" gorm:"index"`
	Score        float64 `json:"score"`
	MaxScore     float64 `json:"max_score"`
	Comment      string  `json:"comment" gorm:"type:text"`
	GradedBy     *uint   `json:"graded_by"`
	IsDeleted    bool    `json:"-" gorm:"default:false"`
}
