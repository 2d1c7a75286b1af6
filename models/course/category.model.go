package course

import "gorm.io/gorm"

type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}
