package models

import "gorm.io/gorm"

const (
	ProspectNew       = "NEW"
	ProspectContacted = "CONTACTED"
	ProspectConverted = "CONVERTED"
	ProspectRejected  = "REJECTED"
)

// Prospect is a public interest form, optionally tied to a formation.
type Prospect struct {
	gorm.Model
	Name        string `json:"name"`
	Email       string `json:"email" gorm:"index"`
	Phone       string `json:"phone"`
	FormationID *uint  `json:"formation_id" gorm:"index"`
	Message     string `json:"message" gorm:"type:text"`
	Status      string `json:"status" gorm:"default:'NEW'"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}
