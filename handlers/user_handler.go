package handlers

import (
	"math"
	"strings"

	"github.com/anjiri1684/skill_swap/database"
	"github.com/anjiri1684/skill_swap/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type directoryUser struct {
	models.User
	CompletedSwaps int64 `json:"completedSwaps"`
	ReviewCount    int64 `json:"reviewCount"`
}

// swapAndReviewCounts computes the view-time projections for a user. Both are
// always derived from the authoritative swap/feedback tables, never stored.
func swapAndReviewCounts(userID uuid.UUID) (int64, int64) {
	var completedSwaps, reviewCount int64
	database.DB.Model(&models.SwapRequest{}).
		Where("status = ? AND (sender_id = ? OR receiver_id = ?)", "completed", userID, userID).
		Count(&completedSwaps)
	database.DB.Model(&models.Feedback{}).
		Where("to_user_id = ?", userID).
		Count(&reviewCount)
	return completedSwaps, reviewCount
}

func ListUsers(c *fiber.Ctx) error {
	search := c.Query("search")
	availability := c.Query("availability", "all")
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 6)
	if limit < 1 || limit > 50 {
		limit = 6
	}

	query := database.DB.Model(&models.User{}).
		Where("is_public = ? AND status = ?", true, "active")

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(skills_offered) LIKE ?", pattern, pattern)
	}
	if availability != "all" && availability != "" {
		// Availability labels are stored as a JSON array, match the quoted element.
		query = query.Where("LOWER(availability) LIKE ?", "%\""+strings.ToLower(availability)+"\"%")
	}

	var totalUsers int64
	if err := query.Count(&totalUsers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	var users []models.User
	if err := query.Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	formatted := make([]directoryUser, 0, len(users))
	for _, user := range users {
		completedSwaps, reviewCount := swapAndReviewCounts(user.ID)
		formatted = append(formatted, directoryUser{
			User:           user,
			CompletedSwaps: completedSwaps,
			ReviewCount:    reviewCount,
		})
	}

	return c.JSON(fiber.Map{
		"users":       formatted,
		"totalPages":  int(math.Ceil(float64(totalUsers) / float64(limit))),
		"currentPage": page,
		"totalUsers":  totalUsers,
	})
}

func GetUser(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	completedSwaps, reviewCount := swapAndReviewCounts(user.ID)

	return c.JSON(fiber.Map{"user": directoryUser{
		User:           user,
		CompletedSwaps: completedSwaps,
		ReviewCount:    reviewCount,
	}})
}
