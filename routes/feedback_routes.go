package routes

import (
	"github.com/anjiri1684/skill_swap/handlers"
	"github.com/anjiri1684/skill_swap/middleware"
	"github.com/gofiber/fiber/v2"
)

func FeedbackRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	feedback := api.Group("/feedback")
	feedback.Get("", handlers.GetFeedbackForUser)
	feedback.Get("/can-leave", middleware.Protected(), handlers.CanLeaveFeedback)
	feedback.Post("", middleware.Protected(), handlers.SubmitFeedback)
}
