package course

import "gorm.io/gorm"

// Formation is a training program made of ordered modules.
type Formation struct {
	gorm.Model
	CategoryID   uint     `json:"category_id" gorm:"index;not null"`
	Title        string   `json:"title"`
	Description  string   `json:"description" gorm:"type:text"`
	Duration     int64    `json:"duration" gorm:"default:0"` // duration in hours
	ThumbnailURL string   `json:"thumbnail_url"`
	IsPublished  bool     `json:"is_published" gorm:"default:false"`
	Modules      []Module `json:"modules,omitempty" gorm:"foreignKey:FormationID"`
	IsDeleted    bool     `json:"-" gorm:"default:false"`
}
