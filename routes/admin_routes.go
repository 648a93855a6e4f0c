package routes

import (
	"github.com/anjiri1684/skill_swap/handlers"
	"github.com/anjiri1684/skill_swap/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Post("/:userId/ban", handlers.BanUser)
	users.Post("/:userId/unban", handlers.UnbanUser)
	users.Post("/:userId/reject-skill", handlers.RejectSkill)

	swaps := admin.Group("/swaps")
	swaps.Get("", handlers.AdminGetSwaps)
	swaps.Post("/:requestId/status", handlers.ForceSwapStatus)

	feedback := admin.Group("/feedback")
	feedback.Get("", handlers.AdminGetFeedback)
	feedback.Delete("/:feedbackId", handlers.AdminDeleteFeedback)
	feedback.Post("/:feedbackId/flag", handlers.FlagFeedback)

	admin.Post("/broadcast", handlers.BroadcastMessage)
	admin.Get("/reports", handlers.GenerateReport)
	admin.Get("/dashboard-analytics", handlers.GetDashboardAnalytics)
}
