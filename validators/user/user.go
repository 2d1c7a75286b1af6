package userValidator

import (
	"strings"

	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	Name         string `json:"name" validate:"omitempty,notblank,min=2,max=100"`
	ProfileImage string `json:"profile_image" validate:"omitempty,max=500"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,notblank,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,role"`
}

type UpdateUserRequest struct {
	Name     string `json:"name" validate:"omitempty,notblank,min=2,max=100"`
	Role     string `json:"role" validate:"omitempty,role"`
	IsActive *bool  `json:"is_active"`
}

type UserListQuery struct {
	Page    int    `query:"page" validate:"omitempty,min=1"`
	Limit   int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Role    string `query:"role" validate:"omitempty,role"`
	Search  string `query:"search" validate:"omitempty,max=100"`
	GroupID uint   `query:"group_id"`
}

func UpdateProfile() fiber.Handler {
	return validators.Body[UpdateProfileRequest]("validatedProfile")
}

func CreateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateUserRequest)
		if err := validators.BindBody(c, reqData); err != nil {
			return validators.ErrorResponse(c, err)
		}
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

func UpdateUser() fiber.Handler {
	return validators.Body[UpdateUserRequest]("validatedUserUpdate")
}

func UserList() fiber.Handler {
	return validators.Query[UserListQuery]("validatedUserList")
}
