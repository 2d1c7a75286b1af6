package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestApproval opens (or reopens after a rejection) a student's request to unlock a module
// and notifies the reviewers.
func RequestApproval(db *gorm.DB, student models.User, module courseModels.Module) (*courseModels.ModuleApproval, error) {
	assigned, err := IsModuleAssigned(db, student.ID, module.ID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, ErrNotAssigned
	}

	first, err := IsFirstModule(db, module)
	if err != nil {
		return nil, err
	}
	if first {
		return nil, ErrAlreadyUnlocked
	}

	now := time.Now()
	var approval courseModels.ModuleApproval
	err = db.Where("module_id = ? AND user_id = ?", module.ID, student.ID).First(&approval).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		approval = courseModels.ModuleApproval{
			ModuleID:    module.ID,
			UserID:      student.ID,
			Status:      courseModels.ApprovalPending,
			RequestedAt: now,
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&approval)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrAlreadyPending
		}
	case err != nil:
		return nil, err
	default:
		if !courseModels.CanTransition(approval.Status, courseModels.ApprovalPending, false) {
			if approval.Status == courseModels.ApprovalApproved {
				return nil, ErrAlreadyApproved
			}
			return nil, ErrAlreadyPending
		}
		res := db.Model(&courseModels.ModuleApproval{}).
			Where("id = ? AND status = ?", approval.ID, approval.Status).
			Updates(map[string]interface{}{
				"status":        courseModels.ApprovalPending,
				"requested_at":  now,
				"responded_at":  nil,
				"responded_by":  nil,
				"reason":        "",
				"auto_approved": false,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrAlreadyPending
		}
		if err := db.First(&approval, approval.ID).Error; err != nil {
			return nil, err
		}
	}

	reviewers, err := ReviewerIDs(db, student.ID)
	if err != nil {
		return nil, err
	}
	if err := Notify(db, reviewers, models.NotificationApprovalRequest,
		"New access request",
		fmt.Sprintf("%s asks to unlock %q", student.Name, module.Title),
		fmt.Sprintf("/approvals/%d", approval.ID),
	); err != nil {
		log.Printf("Error notifying reviewers of approval %d: %v", approval.ID, err)
	}

	return &approval, nil
}

// RespondApproval approves or rejects a pending request. Only one concurrent response can win;
// the others get ErrNotPending.
func RespondApproval(db *gorm.DB, approvalID uint, reviewer models.User, status, reason string) (*courseModels.ModuleApproval, error) {
	if status != courseModels.ApprovalApproved && status != courseModels.ApprovalRejected {
		return nil, ErrInvalidStatus
	}

	var approval courseModels.ModuleApproval
	if err := db.First(&approval, approvalID).Error; err != nil {
		return nil, err
	}

	allowed, err := CanReview(db, reviewer, approval.UserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNoAccess
	}

	if !courseModels.CanTransition(approval.Status, status, false) {
		return nil, ErrNotPending
	}

	now := time.Now()
	res := db.Model(&courseModels.ModuleApproval{}).
		Where("id = ? AND status = ?", approval.ID, courseModels.ApprovalPending).
		Updates(map[string]interface{}{
			"status":        status,
			"responded_at":  now,
			"responded_by":  reviewer.ID,
			"reason":        reason,
			"auto_approved": false,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotPending
	}

	if err := db.First(&approval, approval.ID).Error; err != nil {
		return nil, err
	}

	var module courseModels.Module
	var student models.User
	if err := db.First(&module, approval.ModuleID).Error; err != nil {
		return &approval, nil
	}
	if err := db.First(&student, approval.UserID).Error; err != nil {
		return &approval, nil
	}

	message := fmt.Sprintf("Your request for %q was %s", module.Title, status)
	if reason != "" {
		message += ": " + reason
	}
	if err := Notify(db, []uint{student.ID}, models.NotificationApprovalResponse,
		"Access request "+status, message, fmt.Sprintf("/modules/%d", module.ID),
	); err != nil {
		log.Printf("Error notifying student %d of approval %d: %v", student.ID, approval.ID, err)
	}
	utils.SendApprovalResponseEmail(student.Email, student.Name, module.Title, status, reason)

	return &approval, nil
}

// AutoApprove unlocks the module for the student as a side effect of progression.
// It reports whether anything changed; an already approved record is left alone.
func AutoApprove(tx *gorm.DB, studentID uint, module courseModels.Module, graderID uint) (*courseModels.ModuleApproval, bool, error) {
	now := time.Now()

	var approval courseModels.ModuleApproval
	err := tx.Where("module_id = ? AND user_id = ?", module.ID, studentID).First(&approval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		approval = courseModels.ModuleApproval{
			ModuleID:     module.ID,
			UserID:       studentID,
			Status:       courseModels.ApprovalApproved,
			RequestedAt:  now,
			RespondedAt:  &now,
			RespondedBy:  &graderID,
			AutoApproved: true,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&approval)
		if res.Error != nil {
			return nil, false, res.Error
		}
		if res.RowsAffected == 1 {
			return &approval, true, nil
		}
		// lost a race with a concurrent insert; fall through to the update path
		if err := tx.Where("module_id = ? AND user_id = ?", module.ID, studentID).First(&approval).Error; err != nil {
			return nil, false, err
		}
	} else if err != nil {
		return nil, false, err
	}

	if !courseModels.CanTransition(approval.Status, courseModels.ApprovalApproved, true) {
		return &approval, false, nil
	}

	// a reviewer may reject between the read and here; progression still wins
	res := tx.Model(&courseModels.ModuleApproval{}).
		Where("id = ? AND status <> ?", approval.ID, courseModels.ApprovalApproved).
		Updates(map[string]interface{}{
			"status":        courseModels.ApprovalApproved,
			"reason":        "",
			"responded_at":  now,
			"responded_by":  graderID,
			"auto_approved": true,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if err := tx.First(&approval, approval.ID).Error; err != nil {
		return nil, false, err
	}
	return &approval, res.RowsAffected > 0, nil
}
