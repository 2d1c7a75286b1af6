package communityController

import (
	"errors"
	"fmt"
	"log"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"lms/validators"
	communityValidator "lms/validators/community"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// canJoinDiscussion checks the caller may read or post in a thread on the given target.
func canJoinDiscussion(db *gorm.DB, user models.User, moduleID, groupID *uint) (bool, error) {
	if moduleID != nil {
		var module courseModels.Module
		if err := db.Where("id = ? AND is_deleted = ?", *moduleID, false).First(&module).Error; err != nil {
			return false, err
		}
		return services.HasModuleAccess(db, user, module)
	}
	if groupID != nil {
		group, err := findGroup(db, *groupID)
		if err != nil {
			return false, err
		}
		return canSeeGroup(db, user, group)
	}
	return false, services.ErrDiscussionTarget
}

func findDiscussion(db *gorm.DB, discussionID uint) (models.Discussion, error) {
	var discussion models.Discussion
	err := db.Where("id = ? AND is_deleted = ?", discussionID, false).First(&discussion).Error
	return discussion, err
}

// visibleDiscussions narrows tx to threads canJoinDiscussion would let the user open:
// live targets only, taught groups for teachers, member groups and unlocked modules for students.
func visibleDiscussions(db, tx *gorm.DB, user models.User) (*gorm.DB, error) {
	liveModules := db.Model(&courseModels.Module{}).Select("id").Where("is_deleted = ?", false)
	liveGroups := db.Model(&models.Group{}).Select("id").Where("is_deleted = ?", false)

	switch user.Role {
	case models.RoleAdmin:
		return tx.Where("module_id IN (?) OR group_id IN (?)", liveModules, liveGroups), nil
	case models.RoleTeacher:
		taught := db.Model(&models.Group{}).Select("id").Where("teacher_id = ? AND is_deleted = ?", user.ID, false)
		return tx.Where("module_id IN (?) OR group_id IN (?)", liveModules, taught), nil
	}

	moduleIDs, err := services.AccessibleModuleIDs(db, user.ID)
	if err != nil {
		return nil, err
	}
	groupIDs, err := services.StudentGroupIDs(db, user.ID)
	if err != nil {
		return nil, err
	}
	if len(moduleIDs) == 0 {
		moduleIDs = []uint{0}
	}
	if len(groupIDs) == 0 {
		groupIDs = []uint{0}
	}
	return tx.Where("module_id IN ? OR group_id IN ?", moduleIDs, groupIDs), nil
}

// ListDiscussions lists threads, newest first, limited to the ones the caller can open.
func ListDiscussions(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	query, ok := c.Locals("validatedDiscussionList").(*communityValidator.DiscussionListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	tx := db.Model(&models.Discussion{}).Where("is_deleted = ?", false)
	if query.ModuleID != 0 {
		tx = tx.Where("module_id = ?", query.ModuleID)
	}
	if query.GroupID != 0 {
		tx = tx.Where("group_id = ?", query.GroupID)
	}
	tx, err := visibleDiscussions(db, tx, user)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch discussions!")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch discussions!")
	}

	page, limit, offset := validators.PageOffset(query.Page, query.Limit)
	var discussions []models.Discussion
	if err := tx.Order("created_at desc").Offset(offset).Limit(limit).Find(&discussions).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch discussions!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussions fetched successfully!", fiber.Map{
		"discussions": discussions,
		"total":       total,
		"page":        page,
		"limit":       limit,
	})
}

func GetDiscussion(c *fiber.Ctx) error {
	discussionID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	var discussion models.Discussion
	err := db.Preload("Replies", "is_deleted = ?", false, func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).Where("id = ? AND is_deleted = ?", discussionID, false).First(&discussion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch discussion!")
	}

	allowed, err := canJoinDiscussion(db, user, discussion.ModuleID, discussion.GroupID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch discussion!")
	}
	if !allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You cannot access this discussion!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussion fetched successfully!", discussion)
}

// CreateDiscussion opens a thread on a module the caller can open or a group they belong to
func CreateDiscussion(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedDiscussion").(*communityValidator.DiscussionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	allowed, err := canJoinDiscussion(db, user, reqData.ModuleID, reqData.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion target not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to create discussion!")
	}
	if !allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You cannot post in this discussion space!", nil)
	}

	discussion := models.Discussion{
		AuthorID: user.ID,
		ModuleID: reqData.ModuleID,
		GroupID:  reqData.GroupID,
		Title:    reqData.Title,
		Content:  reqData.Content,
	}
	if err := db.Create(&discussion).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create discussion!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Discussion created successfully!", discussion)
}

func UpdateDiscussion(c *fiber.Ctx) error {
	discussionID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedDiscussionUpdate").(*communityValidator.DiscussionUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	discussion, err := findDiscussion(db, discussionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update discussion!")
	}
	if discussion.AuthorID != user.ID && user.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the author can edit this discussion!", nil)
	}

	if reqData.Title != "" {
		discussion.Title = reqData.Title
	}
	if reqData.Content != "" {
		discussion.Content = reqData.Content
	}
	if err := db.Save(&discussion).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update discussion!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussion updated successfully!", discussion)
}

func DeleteDiscussion(c *fiber.Ctx) error {
	discussionID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	discussion, err := findDiscussion(db, discussionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete discussion!")
	}
	if discussion.AuthorID != user.ID && user.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the author can delete this discussion!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&discussion).Update("is_deleted", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.DiscussionReply{}).Where("discussion_id = ?", discussion.ID).Update("is_deleted", true).Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete discussion!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discussion deleted successfully!", nil)
}

// ReplyDiscussion adds a reply and notifies the thread author
func ReplyDiscussion(c *fiber.Ctx) error {
	discussionID := c.Locals("id").(uint)
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedReply").(*communityValidator.ReplyRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	discussion, err := findDiscussion(db, discussionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Discussion not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to reply!")
	}
	allowed, err := canJoinDiscussion(db, user, discussion.ModuleID, discussion.GroupID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to reply!")
	}
	if !allowed {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You cannot access this discussion!", nil)
	}

	reply := models.DiscussionReply{DiscussionID: discussion.ID, AuthorID: user.ID, Content: reqData.Content}
	if err := db.Create(&reply).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to reply!")
	}

	if discussion.AuthorID != user.ID {
		if err := services.Notify(db, []uint{discussion.AuthorID}, models.NotificationDiscussionReply,
			"New reply",
			fmt.Sprintf("%s replied to %q", user.Name, discussion.Title),
			fmt.Sprintf("/discussions/%d", discussion.ID),
		); err != nil {
			log.Printf("Error notifying author of discussion %d: %v", discussion.ID, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Reply added successfully!", reply)
}

func DeleteReply(c *fiber.Ctx) error {
	discussionID := c.Locals("id").(uint)
	replyID := c.Locals("replyID").(uint)
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	var reply models.DiscussionReply
	if err := db.Where("id = ? AND discussion_id = ? AND is_deleted = ?", replyID, discussionID, false).First(&reply).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Reply not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete reply!")
	}
	if reply.AuthorID != user.ID && user.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the author can delete this reply!", nil)
	}

	if err := db.Model(&reply).Update("is_deleted", true).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete reply!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reply deleted successfully!", nil)
}
