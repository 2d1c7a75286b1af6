package uploadRoutes

import (
	uploadController "lms/controllers/upload"
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupUploadRoutes(app *fiber.App) {
	app.Post("/uploads", middleware.JWTMiddleware, middleware.Authorize(), uploadController.UploadFile)
}
