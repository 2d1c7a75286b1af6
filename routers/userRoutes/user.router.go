package userRoutes

import (
	courseControllers "lms/controllers/course"
	userController "lms/controllers/user"
	"lms/middleware"
	"lms/models"
	"lms/validators"
	userValidator "lms/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware, middleware.Authorize())

	userGroup.Get("/profile", userController.GetProfile)
	userGroup.Put("/profile", userValidator.UpdateProfile(), userController.UpdateProfile)
	userGroup.Get("/modules", courseControllers.GetMyModules)

	adminGroup := app.Group("/admin/users", middleware.JWTMiddleware, middleware.Authorize(models.RoleAdmin))

	adminGroup.Get("/", userValidator.UserList(), userController.AdminListUsers)
	adminGroup.Post("/", userValidator.CreateUser(), userController.AdminCreateUser)
	adminGroup.Get("/:id", validators.ID("User"), userController.AdminGetUser)
	adminGroup.Put("/:id", validators.ID("User"), userValidator.UpdateUser(), userController.AdminUpdateUser)
	adminGroup.Delete("/:id", validators.ID("User"), userController.AdminDeleteUser)
}
