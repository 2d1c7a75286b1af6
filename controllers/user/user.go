package userController

import (
	"errors"
	"log"
	"strings"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/validators"
	userValidator "lms/validators/user"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var groups []models.Group
	if err := database.Database.Db.
		Where("is_deleted = ? AND id IN (?)", false,
			database.Database.Db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", user.ID)).
		Find(&groups).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch profile!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", fiber.Map{
		"user":   user,
		"groups": groups,
	})
}

func UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Name != "" {
		user.Name = strings.TrimSpace(reqData.Name)
	}
	if reqData.ProfileImage != "" {
		user.ProfileImage = reqData.ProfileImage
	}

	if err := database.Database.Db.Model(&user).Updates(map[string]interface{}{
		"name":          user.Name,
		"profile_image": user.ProfileImage,
	}).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update profile!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", user)
}

// AdminListUsers lists users with optional role, group and search filters
func AdminListUsers(c *fiber.Ctx) error {
	query, ok := c.Locals("validatedUserList").(*userValidator.UserListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page, limit, offset := validators.PageOffset(query.Page, query.Limit)

	db := database.Database.Db
	tx := db.Model(&models.User{}).Where("is_deleted = ?", false)
	if query.Role != "" {
		tx = tx.Where("role = ?", query.Role)
	}
	if query.Search != "" {
		like := "%" + strings.ToLower(query.Search) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if query.GroupID != 0 {
		tx = tx.Where("id IN (?)", db.Model(&models.GroupMember{}).Select("user_id").Where("group_id = ?", query.GroupID))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch users!")
	}

	var users []models.User
	if err := tx.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch users!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func AdminCreateUser(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*userValidator.CreateUserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	user := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: string(hashedPassword),
		Role:     reqData.Role,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create user!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully!", user)
}

func AdminGetUser(c *fiber.Ctx) error {
	userID := c.Locals("id").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to fetch user!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully!", user)
}

func AdminUpdateUser(c *fiber.Ctx) error {
	admin, _ := middleware.CurrentUser(c)
	userID := c.Locals("id").(uint)

	reqData, ok := c.Locals("validatedUserUpdate").(*userValidator.UpdateUserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to update user!")
	}

	if user.ID == admin.ID {
		if (reqData.Role != "" && reqData.Role != user.Role) || (reqData.IsActive != nil && !*reqData.IsActive) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot demote or disable your own account!", nil)
		}
	}

	if reqData.Name != "" {
		user.Name = strings.TrimSpace(reqData.Name)
	}
	if reqData.Role != "" {
		user.Role = reqData.Role
	}
	if reqData.IsActive != nil {
		user.IsActive = *reqData.IsActive
	}

	if err := db.Model(&user).Updates(map[string]interface{}{
		"name":      user.Name,
		"role":      user.Role,
		"is_active": user.IsActive,
	}).Error; err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update user!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully!", user)
}

// AdminDeleteUser soft deletes a user and detaches them from their groups
func AdminDeleteUser(c *fiber.Ctx) error {
	admin, _ := middleware.CurrentUser(c)
	userID := c.Locals("id").(uint)

	if userID == admin.ID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot delete your own account!", nil)
	}

	db := database.Database.Db
	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to delete user!")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{"is_deleted": true, "is_active": false}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Group{}).Where("teacher_id = ?", user.ID).Update("teacher_id", nil).Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete user!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully!", nil)
}
