package routes

import (
	"github.com/anjiri1684/skill_swap/handlers"
	"github.com/gofiber/fiber/v2"
)

// UserRoutes is the public directory, no session required for reads.
func UserRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	users := api.Group("/users")
	users.Get("", handlers.ListUsers)
	users.Get("/:userId", handlers.GetUser)
}
