package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	"lms/validators"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up the admin catalog and dashboard routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.Authorize(models.RoleAdmin))

	// Formations
	adminGroup.Get("/formations", controllers.AdminGetAllFormations)
	adminGroup.Post("/formations", courseValidator.CreateFormation(), controllers.AdminCreateFormation)
	adminGroup.Put("/formations/:id", validators.ID("Formation"), courseValidator.UpdateFormation(), controllers.AdminUpdateFormation)
	adminGroup.Delete("/formations/:id", validators.ID("Formation"), controllers.AdminDeleteFormation)
	adminGroup.Post("/formations/:id/publish", validators.ID("Formation"), courseValidator.Publish(), controllers.AdminPublishFormation)

	// Dashboard
	adminGroup.Get("/dashboard/stats", controllers.AdminDashboardStats)
}
