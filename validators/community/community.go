package communityValidator

import (
	"strings"

	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

// ============ Groups ============

type GroupRequest struct {
	Name        string `json:"name" validate:"required,notblank,min=2,max=100"`
	Description string `json:"description" validate:"max=1000"`
	TeacherID   *uint  `json:"teacher_id"`
}

type GroupUpdateRequest struct {
	Name        string `json:"name" validate:"omitempty,notblank,min=2,max=100"`
	Description string `json:"description" validate:"max=1000"`
	TeacherID   *uint  `json:"teacher_id"`
}

type GroupMembersRequest struct {
	UserIDs []uint `json:"user_ids" validate:"required,min=1,dive,required"`
}

type GroupModuleRequest struct {
	ModuleID uint `json:"module_id" validate:"required"`
}

// ============ Discussions ============

type DiscussionRequest struct {
	Title    string `json:"title" validate:"required,notblank,min=3,max=200"`
	Content  string `json:"content" validate:"required,notblank"`
	ModuleID *uint  `json:"module_id"`
	GroupID  *uint  `json:"group_id"`
}

type DiscussionUpdateRequest struct {
	Title   string `json:"title" validate:"omitempty,notblank,min=3,max=200"`
	Content string `json:"content" validate:"omitempty,notblank"`
}

type ReplyRequest struct {
	Content string `json:"content" validate:"required,notblank,max=5000"`
}

type DiscussionListQuery struct {
	ModuleID uint `query:"module_id"`
	GroupID  uint `query:"group_id"`
	Page     int  `query:"page" validate:"omitempty,min=1"`
	Limit    int  `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ============ Notifications ============

type NotificationListQuery struct {
	Unread bool `query:"unread"`
	Page   int  `query:"page" validate:"omitempty,min=1"`
	Limit  int  `query:"limit" validate:"omitempty,min=1,max=100"`
}

type BroadcastRequest struct {
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Message string `json:"message" validate:"required,notblank"`
	GroupID *uint  `json:"group_id"`
	Role    string `json:"role" validate:"omitempty,role"`
}

// ============ Prospects ============

type ProspectRequest struct {
	Name        string `json:"name" validate:"required,notblank,min=2,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=30"`
	FormationID *uint  `json:"formation_id"`
	Message     string `json:"message" validate:"max=2000"`
}

type ProspectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=NEW CONTACTED CONVERTED REJECTED"`
}

type ProspectListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=NEW CONTACTED CONVERTED REJECTED"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

func CreateGroup() fiber.Handler {
	return validators.Body[GroupRequest]("validatedGroup")
}

func UpdateGroup() fiber.Handler {
	return validators.Body[GroupUpdateRequest]("validatedGroupUpdate")
}

func GroupMembers() fiber.Handler {
	return validators.Body[GroupMembersRequest]("validatedMembers")
}

func GroupModule() fiber.Handler {
	return validators.Body[GroupModuleRequest]("validatedGroupModule")
}

// CreateDiscussion requires exactly one of module_id or group_id.
func CreateDiscussion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DiscussionRequest)
		if err := validators.BindBody(c, reqData); err != nil {
			return validators.ErrorResponse(c, err)
		}
		if (reqData.ModuleID == nil) == (reqData.GroupID == nil) {
			return validators.ErrorResponse(c, validators.FieldErrors{
				"target": "exactly one of module_id or group_id is required",
			})
		}
		reqData.Title = strings.TrimSpace(reqData.Title)

		c.Locals("validatedDiscussion", reqData)
		return c.Next()
	}
}

func UpdateDiscussion() fiber.Handler {
	return validators.Body[DiscussionUpdateRequest]("validatedDiscussionUpdate")
}

func Reply() fiber.Handler {
	return validators.Body[ReplyRequest]("validatedReply")
}

func DiscussionList() fiber.Handler {
	return validators.Query[DiscussionListQuery]("validatedDiscussionList")
}

func NotificationList() fiber.Handler {
	return validators.Query[NotificationListQuery]("validatedNotificationList")
}

func Broadcast() fiber.Handler {
	return validators.Body[BroadcastRequest]("validatedBroadcast")
}

func CreateProspect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProspectRequest)
		if err := validators.BindBody(c, reqData); err != nil {
			return validators.ErrorResponse(c, err)
		}
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		c.Locals("validatedProspect", reqData)
		return c.Next()
	}
}

func ProspectStatus() fiber.Handler {
	return validators.Body[ProspectStatusRequest]("validatedProspectStatus")
}

func ProspectList() fiber.Handler {
	return validators.Query[ProspectListQuery]("validatedProspectList")
}
