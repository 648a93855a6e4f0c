package routes

import (
	"github.com/anjiri1684/skill_swap/handlers"
	"github.com/anjiri1684/skill_swap/middleware"
	"github.com/gofiber/fiber/v2"
)

func RequestRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	requests := api.Group("/requests", middleware.Protected())
	requests.Get("", handlers.GetMyRequests)
	requests.Post("", handlers.CreateRequest)
	requests.Get("/:requestId", handlers.GetRequest)
	requests.Put("/:requestId", handlers.UpdateRequestStatus)
	requests.Delete("/:requestId", handlers.DeleteRequest)
}
