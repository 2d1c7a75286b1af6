package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizQuestion is stored inline in the quiz row. Answer indexes Options.
type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

type Quiz struct {
	gorm.Model
	ModuleID     uint                              `json:"module_id" gorm:"index;not null"`
	Title        string                            `json:"title"`
	PassingScore int                               `json:"passing_score" gorm:"default:50"` // percentage
	MaxAttempts  int                               `json:"max_attempts" gorm:"default:0"`   // 0 means unlimited
	Questions    datatypes.JSONSlice[QuizQuestion] `json:"questions"`
	IsDeleted    bool                              `json:"-" gorm:"default:false"`
}

// WithoutAnswers returns a copy safe to show to students.
func (q Quiz) WithoutAnswers() Quiz {
	questions := make(datatypes.JSONSlice[QuizQuestion], len(q.Questions))
	for i, question := range q.Questions {
		question.Answer = -1
		questions[i] = question
	}
	q.Questions = questions
	return q
}

// Score grades answers against the quiz and returns a percentage.
func (q Quiz) Score(answers []int) (correct int, percent int) {
	for i, question := range q.Questions {
		if i < len(answers) && answers[i] == question.Answer {
			correct++
		}
	}
	if len(q.Questions) == 0 {
		return 0, 0
	}
	return correct, correct * 100 / len(q.Questions)
}

// QuizAttempt is one student submission of answers.
type QuizAttempt struct {
	gorm.Model
	QuizID        uint                     `json:"quiz_id" gorm:"index;not null"`
	UserID        uint                     `json:"user_id" gorm:"index;not null"`
	Answers       datatypes.JSONSlice[int] `json:"answers"`
	Correct       int                      `json:"correct"`
	Score         int                      `json:"score"`
	Passed        bool                     `json:"passed" gorm:"default:false"`
	AttemptNumber int                      `json:"attempt_number" gorm:"default:1"`
}
