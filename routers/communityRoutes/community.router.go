package communityRoutes

import (
	communityController "lms/controllers/community"
	"lms/middleware"
	"lms/models"
	"lms/validators"
	communityValidator "lms/validators/community"

	"github.com/gofiber/fiber/v2"
)

// SetupGroupRoutes sets up group management and membership routes
func SetupGroupRoutes(app *fiber.App) {
	groups := app.Group("/groups", middleware.JWTMiddleware)
	admin := middleware.Authorize(models.RoleAdmin)

	groups.Get("/", middleware.Authorize(), communityController.ListGroups)
	groups.Get("/:id", middleware.Authorize(), validators.ID("Group"), communityController.GetGroup)
	groups.Post("/", admin, communityValidator.CreateGroup(), communityController.CreateGroup)
	groups.Put("/:id", admin, validators.ID("Group"), communityValidator.UpdateGroup(), communityController.UpdateGroup)
	groups.Delete("/:id", admin, validators.ID("Group"), communityController.DeleteGroup)

	groups.Post("/:id/members", admin, validators.ID("Group"), communityValidator.GroupMembers(), communityController.AddGroupMembers)
	groups.Delete("/:id/members/:user_id", admin,
		validators.IDParams(map[string]string{"id": "Group", "user_id": "User"}),
		communityController.RemoveGroupMember)

	groups.Post("/:id/modules", admin, validators.ID("Group"), communityValidator.GroupModule(), communityController.AssignGroupModule)
	groups.Delete("/:id/modules/:module_id", admin,
		validators.IDParams(map[string]string{"id": "Group", "module_id": "Module"}),
		communityController.UnassignGroupModule)
}

// SetupDiscussionRoutes sets up the forum routes
func SetupDiscussionRoutes(app *fiber.App) {
	discussions := app.Group("/discussions", middleware.JWTMiddleware, middleware.Authorize())

	discussions.Get("/", communityValidator.DiscussionList(), communityController.ListDiscussions)
	discussions.Post("/", communityValidator.CreateDiscussion(), communityController.CreateDiscussion)
	discussions.Get("/:id", validators.ID("Discussion"), communityController.GetDiscussion)
	discussions.Put("/:id", validators.ID("Discussion"), communityValidator.UpdateDiscussion(), communityController.UpdateDiscussion)
	discussions.Delete("/:id", validators.ID("Discussion"), communityController.DeleteDiscussion)
	discussions.Post("/:id/replies", validators.ID("Discussion"), communityValidator.Reply(), communityController.ReplyDiscussion)
	discussions.Delete("/:id/replies/:reply_id",
		validators.IDParams(map[string]string{"id": "Discussion", "reply_id": "Reply"}),
		communityController.DeleteReply)
}

// SetupNotificationRoutes sets up the in-app notification routes
func SetupNotificationRoutes(app *fiber.App) {
	notifications := app.Group("/notifications", middleware.JWTMiddleware, middleware.Authorize())

	notifications.Get("/", communityValidator.NotificationList(), communityController.ListNotifications)
	notifications.Get("/unread/count", communityController.UnreadCount)
	notifications.Patch("/read-all", communityController.MarkAllNotificationsRead)
	notifications.Patch("/:id/read", validators.ID("Notification"), communityController.MarkNotificationRead)
	notifications.Delete("/:id", validators.ID("Notification"), communityController.DeleteNotification)
	notifications.Post("/broadcast", middleware.Authorize(models.RoleAdmin), communityValidator.Broadcast(), communityController.BroadcastNotification)
}

// SetupProspectRoutes sets up the public interest form and its admin pipeline
func SetupProspectRoutes(app *fiber.App) {
	app.Post("/prospects", communityValidator.CreateProspect(), communityController.CreateProspect)

	prospects := app.Group("/admin/prospects", middleware.JWTMiddleware, middleware.Authorize(models.RoleAdmin))
	prospects.Get("/", communityValidator.ProspectList(), communityController.ListProspects)
	prospects.Patch("/:id", validators.ID("Prospect"), communityValidator.ProspectStatus(), communityController.UpdateProspectStatus)
	prospects.Delete("/:id", validators.ID("Prospect"), communityController.DeleteProspect)
}
