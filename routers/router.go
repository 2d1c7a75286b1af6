package routers

import (
	"lms/config"
	"lms/routers/authRoutes"
	"lms/routers/communityRoutes"
	"lms/routers/courseRoutes"
	"lms/routers/uploadRoutes"
	"lms/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the fiber app with the shared middleware and every route.
func NewApp(cfg *config.Config, requestLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   cfg.AppName,
		BodyLimit: (cfg.MaxUploadMB + 1) << 20,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: true,
	}))

	if requestLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	// Uploaded files are public
	app.Static("/uploads", cfg.UploadDir)

	SetupRoutes(app)
	return app
}

// SetupRoutes registers every route group on the app.
func SetupRoutes(app *fiber.App) {
	authRoutes.SetupAuthRoutes(app)
	userRoutes.SetupUserRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	communityRoutes.SetupGroupRoutes(app)
	communityRoutes.SetupDiscussionRoutes(app)
	communityRoutes.SetupNotificationRoutes(app)
	communityRoutes.SetupProspectRoutes(app)
	uploadRoutes.SetupUploadRoutes(app)
}
