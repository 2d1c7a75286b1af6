package models

import "gorm.io/gorm"

// Group is a cohort of students followed by one teacher.
type Group struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	TeacherID   *uint  `json:"teacher_id" gorm:"index"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

// GroupMember is the join between a group and a student. One row per pair.
type GroupMember struct {
	gorm.Model
	GroupID uint `json:"group_id" gorm:"not null;uniqueIndex:idx_group_member"`
	UserID  uint `json:"user_id" gorm:"not null;uniqueIndex:idx_group_member"`
}

// GroupModule assigns a module to every member of a group.
type GroupModule struct {
	gorm.Model
	GroupID  uint `json:"group_id" gorm:"not null;uniqueIndex:idx_group_module"`
	ModuleID uint `json:"module_id" gorm:"not null;uniqueIndex:idx_group_module"`
}
