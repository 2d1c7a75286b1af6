package course

import "gorm.io/gorm"

// Module represents a section of a formation. OrderIndex drives progression.
type Module struct {
	gorm.Model
	FormationID uint   `json:"formation_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	CreatedBy   uint   `json:"created_by"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}
