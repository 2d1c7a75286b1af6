package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
	RoleAdmin   = "ADMIN"
)

type User struct {
	gorm.Model
	Name                string     `json:"name" gorm:"default:''"`
	Email               string     `json:"email" gorm:"unique;not null"`
	Password            string     `json:"-" gorm:"not null"`
	Role                string     `json:"role" gorm:"default:'STUDENT';index"` // STUDENT, TEACHER, ADMIN
	ProfileImage        string     `json:"profile_image" gorm:"default:''"`
	IsActive            bool       `json:"is_active" gorm:"default:true"`
	LastLogin           *time.Time `json:"last_login"`
	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	BlockedUntil        *time.Time `json:"-"`
	IsDeleted           bool       `json:"-" gorm:"default:false"`
}

// IsStaff reports whether the user manages content rather than consuming it.
func (u User) IsStaff() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}
