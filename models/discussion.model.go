package models

import "gorm.io/gorm"

// Discussion is a thread attached to exactly one module or one group.
type Discussion struct {
	gorm.Model
	AuthorID  uint              `json:"author_id" gorm:"index;not null"`
	ModuleID  *uint             `json:"module_id" gorm:"index"`
	GroupID   *uint             `json:"group_id" gorm:"index"`
	Title     string            `json:"title"`
	Content   string            `json:"content" gorm:"type:text"`
	Replies   []DiscussionReply `json:"replies,omitempty" gorm:"foreignKey:DiscussionID"`
	IsDeleted bool              `json:"-" gorm:"default:false"`
}

type DiscussionReply struct {
	gorm.Model
	DiscussionID uint   `json:"discussion_id" gorm:"index;not null"`
	AuthorID     uint   `json:"author_id" gorm:"index;not null"`
	Content      string `json:"content" gorm:"type:text"`
	IsDeleted    bool   `json:"-" gorm:"default:false"`
}
