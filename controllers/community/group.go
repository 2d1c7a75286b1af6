package communityController

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"lms/validators"
	communityValidator "lms/validators/community"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupDetails is a group with its members and assigned modules.
type GroupDetails struct {
	models.Group
	Members []models.User         `json:"members"`
	Modules []courseModels.Module `json:"modules"`
}

func groupNameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Group{}).
		Where("LOWER(name) = ? AND is_deleted = ? AND id <> ?", strings.ToLower(name), false, exceptID).
		Count(&count).Error
	return count > 0, err
}

// checkTeacher returns a field error unless the id belongs to an active teacher.
func checkTeacher(db *gorm.DB, teacherID uint) error {
	var teacher models.User
	err := db.Where("id = ? AND is_deleted = ?", teacherID, false).First(&teacher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && teacher.Role != models.RoleTeacher) {
		return validators.FieldErrors{"teacher_id": "teacher_id must reference a user with the TEACHER role"}
	}
	return err
}

func findGroup(db *gorm.DB, groupID uint) (models.Group, error) {
	var group models.Group
	err := db.Where("id = ? AND is_deleted = ?", groupID, false).First(&group).Error
	return group, err
}

// canSeeGroup: admins see every group, teachers the ones they teach, students the ones they belong to.
func canSeeGroup(db *gorm.DB, user models.User, group models.Group) (bool, error) {
	switch user.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleTeacher:
		return group.TeacherID != nil && *group.TeacherID == user.ID, nil
	}
	var count int64
	err := db.Model(&models.GroupMember{}).Where("group_id = ? AND user_id = ?", group.ID, user.ID).Count(&count).Error
	return count > 0, err
}

func CreateGroup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedGroup").(*communityValidator.GroupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	name := strings.TrimSpace(reqData.Name)
	taken, err := groupNameTaken(db, name, 0)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create group!")
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Group already exists!", nil)
	}
	if reqData.TeacherID != nil {
		if err := checkTeacher(db, *reqData.TeacherID); err != nil {
			return validatorOrServerError(c, err, "Failed to create group!")
		}
	}

	group := models.Group{Name: name, Description: reqData.Description, TeacherID: reqData.TeacherID}
	if err := db.Create(&group).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create group!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Group created successfully!", group)
}

func UpdateGroup(c *fiber.Ctx) error {
	groupID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedGroupUpdate").(*communityValidator.GroupUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	group, err := findGroup(db, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Group not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update group!")
	}

	if name := strings.TrimSpace(reqData.Name); name != "" {
		taken, err := groupNameTaken(db, name, group.ID)
		if err != nil {
			return middleware.ErrorResponse(c, err, "Failed to update group!")
		}
		if taken {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Group already exists!", nil)
		}
		group.Name = name
	}
	if reqData.Description != "" {
		group.Description = reqData.Description
	}
	if reqData.TeacherID != nil {
		if err := checkTeacher(db, *reqData.TeacherID); err != nil {
			return validatorOrServerError(c, err, "Failed to update group!")
		}
		group.TeacherID = reqData.TeacherID
	}

	if err := db.Save(&group).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update group!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Group updated successfully!", group)
}

// DeleteGroup soft deletes a group. Its members lose access to the modules it assigned.
func DeleteGroup(c *fiber.Ctx) error {
	groupID := c.Locals("id").(uint)
	db := database.Database.Db

	group, err := findGroup(db, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Group not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete group!")
	}

	if err := db.Model(&group).Update("is_deleted", true).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete group!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Group deleted successfully!", nil)
}

// ListGroups is scoped by role
func ListGroups(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	tx := db.Where("is_deleted = ?", false)
	switch user.Role {
	case models.RoleTeacher:
		tx = tx.Where("teacher_id = ?", user.ID)
	case models.RoleStudent:
		tx = tx.Where("id IN (?)", db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", user.ID))
	}

	var groups []models.Group
	if err := tx.Order("name asc").Find(&groups).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch groups!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Groups fetched successfully!", groups)
}

func GetGroup(c *fiber.Ctx) error {
	groupID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	group, err := findGroup(db, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Group not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch group!")
	}
	visible, err := canSeeGroup(db, user, group)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch group!")
	}
	if !visible {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not part of this group!", nil)
	}

	details := GroupDetails{Group: group}
	memberIDs := db.Model(&models.GroupMember{}).Select("user_id").Where("group_id = ?", group.ID)
	if err := db.Where("id IN (?) AND is_deleted = ?", memberIDs, false).Order("name asc").Find(&details.Members).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch group!")
	}
	moduleIDs := db.Model(&models.GroupModule{}).Select("module_id").Where("group_id = ?", group.ID)
	if err := db.Where("id IN (?) AND is_deleted = ?", moduleIDs, false).
		Order("formation_id asc, order_index asc, id asc").Find(&details.Modules).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch group!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Group fetched successfully!", details)
}

// AddGroupMembers adds students to a group. Existing members are skipped.
func AddGroupMembers(c *fiber.Ctx) error {
	groupID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedMembers").(*communityValidator.GroupMembersRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	group, err := findGroup(db, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Group not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to add members!")
	}

	unique := make(map[uint]bool, len(reqData.UserIDs))
	for _, id := range reqData.UserIDs {
		unique[id] = true
	}
	var students int64
	if err := db.Model(&models.User{}).
		Where("id IN ? AND role = ? AND is_deleted = ?", reqData.UserIDs, models.RoleStudent, false).
		Count(&students).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to add members!")
	}
	if int(students) != len(unique) {
		return validators.ErrorResponse(c, validators.FieldErrors{"user_ids": "user_ids must all reference existing students"})
	}

	members := make([]models.GroupMember, 0, len(unique))
	for id := range unique {
		members = append(members, models.GroupMember{GroupID: group.ID, UserID: id})
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&members)
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error, "Failed to add members!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Members added successfully!", fiber.Map{
		"added": res.RowsAffected,
	})
}

func RemoveGroupMember(c *fiber.Ctx) error {
	groupID := c.Locals("id").(uint)
	userID := c.Locals("userID").(uint)

	res := database.Database.Db.Unscoped().
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error, "Failed to remove member!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Member not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Member removed successfully!", nil)
}

// AssignGroupModule assigns a module to a group and notifies every member
func AssignGroupModule(c *fiber.Ctx) error {
	groupID := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedGroupModule").(*communityValidator.GroupModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	group, err := findGroup(db, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Group not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to assign module!")
	}
	var module courseModels.Module
	if err := db.Where("id = ? AND is_deleted = ?", reqData.ModuleID, false).First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to assign module!")
	}

	assignment := models.GroupModule{GroupID: group.ID, ModuleID: module.ID}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignment)
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error, "Failed to assign module!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Module already assigned to this group!", nil)
	}

	memberIDs, err := services.GroupMemberIDs(db, group.ID)
	if err == nil {
		err = services.Notify(db, memberIDs, models.NotificationModuleAssigned,
			"New module",
			fmt.Sprintf("%q was assigned to %s", module.Title, group.Name),
			fmt.Sprintf("/modules/%d", module.ID),
		)
	}
	if err != nil {
		log.Printf("Error notifying group %d about module %d: %v", group.ID, module.ID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module assigned successfully!", assignment)
}

func UnassignGroupModule(c *fiber.Ctx) error {
	groupID := c.Locals("id").(uint)
	moduleID := c.Locals("moduleID").(uint)

	res := database.Database.Db.Unscoped().
		Where("group_id = ? AND module_id = ?", groupID, moduleID).
		Delete(&models.GroupModule{})
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error, "Failed to unassign module!")
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module unassigned successfully!", nil)
}

// validatorOrServerError answers field errors with 422 and anything else through middleware.ErrorResponse.
func validatorOrServerError(c *fiber.Ctx, err error, fallback string) error {
	var fields validators.FieldErrors
	if errors.As(err, &fields) {
		return validators.ErrorResponse(c, err)
	}
	return middleware.ErrorResponse(c, err, fallback)
}
