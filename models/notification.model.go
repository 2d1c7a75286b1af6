package models

import "gorm.io/gorm"

const (
	NotificationApprovalRequest  = "APPROVAL_REQUEST"
	NotificationApprovalResponse = "APPROVAL_RESPONSE"
	NotificationModuleUnlocked   = "MODULE_UNLOCKED"
	NotificationModuleAssigned   = "MODULE_ASSIGNED"
	NotificationGrade            = "GRADE"
	NotificationNewContent       = "NEW_CONTENT"
	NotificationDiscussionReply  = "DISCUSSION_REPLY"
	NotificationDeadline         = "DEADLINE"
	NotificationAnnouncement     = "ANNOUNCEMENT"
)

type Notification struct {
	gorm.Model
	UserID  uint   `json:"user_id" gorm:"index;not null"`
	BatchID string `json:"batch_id" gorm:"index"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message" gorm:"type:text"`
	Link    string `json:"link"`
	IsRead  bool   `json:"is_read" gorm:"default:false;index"`
}
