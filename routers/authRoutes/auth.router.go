package authRoutes

import (
	authControllers "lms/controllers/auth"
	"lms/middleware"
	authValidators "lms/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Post("/logout", authControllers.Logout)
	authGroup.Get("/me", middleware.JWTMiddleware, middleware.Authorize(), authControllers.Me)
	authGroup.Put("/change/password", middleware.JWTMiddleware, middleware.Authorize(), authValidators.ChangePassword(), authControllers.ChangePassword)
}
