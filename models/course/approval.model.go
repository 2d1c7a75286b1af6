package course

import (
	"time"

	"gorm.io/gorm"
)

const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// ModuleApproval unlocks a module for one student. One row per (module, user).
type ModuleApproval struct {
	gorm.Model
	ModuleID     uint       `json:"module_id" gorm:"not null;uniqueIndex:idx_approval_module_user"`
	UserID       uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_approval_module_user"`
	Status       string     `json:"status" gorm:"default:'PENDING';index"`
	RequestedAt  time.Time  `json:"requested_at"`
	RespondedAt  *time.Time `json:"responded_at"`
	RespondedBy  *uint      `json:"responded_by"`
	Reason       string     `json:"reason"`
	AutoApproved bool       `json:"auto_approved" gorm:"default:false"`
}

// CanTransition reports whether an approval may move from one status to another.
// An empty from means no record exists yet.
func CanTransition(from, to string, auto bool) bool {
	switch to {
	case ApprovalPending:
		return from == "" || from == ApprovalRejected
	case ApprovalApproved:
		if auto {
			return from != ApprovalApproved
		}
		return from == ApprovalPending
	case ApprovalRejected:
		return from == ApprovalPending && !auto
	}
	return false
}
