package services

import (
	"errors"

	"lms/models"
	courseModels "lms/models/course"

	"gorm.io/gorm"
)

func activeGroups(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Group{}).Select("id").Where("is_deleted = ?", false)
}

func memberGroups(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
}

// StudentGroupIDs lists the active groups a user belongs to.
func StudentGroupIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.GroupMember{}).
		Where("user_id = ? AND group_id IN (?)", userID, activeGroups(db)).
		Pluck("group_id", &ids).Error
	return ids, err
}

// IsModuleAssigned reports whether the module is assigned to one of the user's active groups.
func IsModuleAssigned(db *gorm.DB, userID, moduleID uint) (bool, error) {
	var count int64
	err := db.Model(&models.GroupModule{}).
		Where("module_id = ? AND group_id IN (?) AND group_id IN (?)", moduleID, memberGroups(db, userID), activeGroups(db)).
		Count(&count).Error
	return count > 0, err
}

// IsFirstModule reports whether no live module of the same formation precedes this one.
func IsFirstModule(db *gorm.DB, module courseModels.Module) (bool, error) {
	var count int64
	err := db.Model(&courseModels.Module{}).
		Where("formation_id = ? AND is_deleted = ?", module.FormationID, false).
		Where("order_index < ? OR (order_index = ? AND id < ?)", module.OrderIndex, module.OrderIndex, module.ID).
		Count(&count).Error
	return count == 0, err
}

// NextModule returns the module following this one in its formation, or nil at the end.
func NextModule(db *gorm.DB, module courseModels.Module) (*courseModels.Module, error) {
	var next courseModels.Module
	err := db.Where("formation_id = ? AND is_deleted = ?", module.FormationID, false).
		Where("order_index > ? OR (order_index = ? AND id > ?)", module.OrderIndex, module.OrderIndex, module.ID).
		Order("order_index asc, id asc").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// ApprovalStatus returns the status of the student's approval for a module, or "" when none exists.
func ApprovalStatus(db *gorm.DB, userID, moduleID uint) (string, error) {
	var approval courseModels.ModuleApproval
	err := db.Where("module_id = ? AND user_id = ?", moduleID, userID).First(&approval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return approval.Status, nil
}

// ModuleAccess tells whether the user may open the module and the student's approval status.
// Staff always have access. A student needs the module assigned to one of their groups and
// either the module is first in its formation or an approved request exists.
func ModuleAccess(db *gorm.DB, user models.User, module courseModels.Module) (bool, string, error) {
	if user.IsStaff() {
		return true, "", nil
	}

	status, err := ApprovalStatus(db, user.ID, module.ID)
	if err != nil {
		return false, "", err
	}

	assigned, err := IsModuleAssigned(db, user.ID, module.ID)
	if err != nil || !assigned {
		return false, status, err
	}

	if status == courseModels.ApprovalApproved {
		return true, status, nil
	}

	first, err := IsFirstModule(db, module)
	if err != nil {
		return false, status, err
	}
	return first, status, nil
}

// HasModuleAccess is ModuleAccess without the status.
func HasModuleAccess(db *gorm.DB, user models.User, module courseModels.Module) (bool, error) {
	ok, _, err := ModuleAccess(db, user, module)
	return ok, err
}

// AccessibleModuleIDs lists the live modules a student can open right now, following ModuleAccess.
func AccessibleModuleIDs(db *gorm.DB, studentID uint) ([]uint, error) {
	assigned := db.Model(&models.GroupModule{}).Select("module_id").
		Where("group_id IN (?) AND group_id IN (?)", memberGroups(db, studentID), activeGroups(db))

	var modules []courseModels.Module
	if err := db.Where("id IN (?) AND is_deleted = ?", assigned, false).Find(&modules).Error; err != nil {
		return nil, err
	}

	var approvedIDs []uint
	if err := db.Model(&courseModels.ModuleApproval{}).
		Where("user_id = ? AND status = ?", studentID, courseModels.ApprovalApproved).
		Pluck("module_id", &approvedIDs).Error; err != nil {
		return nil, err
	}
	approved := make(map[uint]bool, len(approvedIDs))
	for _, id := range approvedIDs {
		approved[id] = true
	}

	ids := make([]uint, 0, len(modules))
	for _, module := range modules {
		if approved[module.ID] {
			ids = append(ids, module.ID)
			continue
		}
		first, err := IsFirstModule(db, module)
		if err != nil {
			return nil, err
		}
		if first {
			ids = append(ids, module.ID)
		}
	}
	return ids, nil
}

// StudentsWithAccess lists active students who can currently open the module.
func StudentsWithAccess(db *gorm.DB, module courseModels.Module) ([]uint, error) {
	assignedGroups := db.Model(&models.GroupModule{}).Select("group_id").
		Where("module_id = ? AND group_id IN (?)", module.ID, activeGroups(db))

	var memberIDs []uint
	if err := db.Model(&models.GroupMember{}).Distinct().
		Where("group_id IN (?)", assignedGroups).
		Pluck("user_id", &memberIDs).Error; err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		return nil, nil
	}

	query := db.Model(&models.User{}).
		Where("id IN ? AND role = ? AND is_deleted = ? AND is_active = ?", memberIDs, models.RoleStudent, false, true)

	first, err := IsFirstModule(db, module)
	if err != nil {
		return nil, err
	}
	if !first {
		approved := db.Model(&courseModels.ModuleApproval{}).Select("user_id").
			Where("module_id = ? AND status = ?", module.ID, courseModels.ApprovalApproved)
		query = query.Where("id IN (?)", approved)
	}

	var ids []uint
	err = query.Pluck("id", &ids).Error
	return ids, err
}

// TeachesStudent reports whether the teacher leads an active group the student belongs to.
func TeachesStudent(db *gorm.DB, teacherID, studentID uint) (bool, error) {
	taught := db.Model(&models.Group{}).Select("id").Where("teacher_id = ? AND is_deleted = ?", teacherID, false)

	var count int64
	err := db.Model(&models.GroupMember{}).
		Where("user_id = ? AND group_id IN (?)", studentID, taught).
		Count(&count).Error
	return count > 0, err
}

// CanReview reports whether a staff member may act on a student's work or requests.
func CanReview(db *gorm.DB, reviewer models.User, studentID uint) (bool, error) {
	switch reviewer.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleTeacher:
		return TeachesStudent(db, reviewer.ID, studentID)
	}
	return false, nil
}

// ReviewerIDs lists the teachers of the student's groups and every admin.
func ReviewerIDs(db *gorm.DB, studentID uint) ([]uint, error) {
	var teacherIDs []uint
	if err := db.Model(&models.Group{}).
		Where("is_deleted = ? AND teacher_id IS NOT NULL AND id IN (?)", false, memberGroups(db, studentID)).
		Pluck("teacher_id", &teacherIDs).Error; err != nil {
		return nil, err
	}

	adminIDs, err := AdminIDs(db)
	if err != nil {
		return nil, err
	}
	return append(teacherIDs, adminIDs...), nil
}

func AdminIDs(db *gorm.DB) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.User{}).
		Where("role = ? AND is_deleted = ? AND is_active = ?", models.RoleAdmin, false, true).
		Pluck("id", &ids).Error
	return ids, err
}

// GroupMemberIDs lists the members of a group.
func GroupMemberIDs(db *gorm.DB, groupID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Pluck("user_id", &ids).Error
	return ids, err
}
