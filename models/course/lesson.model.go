package course

import "gorm.io/gorm"

type Lesson struct {
	gorm.Model
	ModuleID   uint   `json:"module_id" gorm:"index;not null"`
	Title      string `json:"title"`
	Content    string `json:"content" gorm:"type:text"`
	VideoURL   string `json:"video_url"`
	FileURL    string `json:"file_url"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `json:"-" gorm:"default:false"`
}
