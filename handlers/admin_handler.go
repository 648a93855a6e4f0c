package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anjiri1684/skill_swap/database"
	"github.com/anjiri1684/skill_swap/models"
	"github.com/anjiri1684/skill_swap/notifications"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Order("created_at desc").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	return c.JSON(fiber.Map{"users": users})
}

func setUserStatus(c *fiber.Ctx, status string) error {
	userID := c.Params("userId")

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	user.Status = status
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user status"})
	}

	return c.JSON(fiber.Map{"user": user})
}

func BanUser(c *fiber.Ctx) error {
	return setUserStatus(c, "banned")
}

func UnbanUser(c *fiber.Ctx) error {
	return setUserStatus(c, "active")
}

type RejectSkillRequest struct {
	Skill string `json:"skill" validate:"required"`
	List  string `json:"list" validate:"required,oneof=offered wanted"`
}

// RejectSkill removes a moderated skill entry from one of a user's skill
// lists. Ratings are untouched, skill labels are presentation only.
func RejectSkill(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var req RejectSkillRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	removeSkill := func(skills []string) []string {
		kept := skills[:0]
		for _, skill := range skills {
			if !strings.EqualFold(skill, req.Skill) {
				kept = append(kept, skill)
			}
		}
		return kept
	}

	if req.List == "offered" {
		user.SkillsOffered = removeSkill(user.SkillsOffered)
	} else {
		user.SkillsWanted = removeSkill(user.SkillsWanted)
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{"user": user})
}

func AdminGetSwaps(c *fiber.Ctx) error {
	var requests []models.SwapRequest
	if err := database.DB.Order("created_at desc").Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch swaps"})
	}

	populated := make([]swapRequestResponse, 0, len(requests))
	for _, request := range requests {
		populated = append(populated, populateRequest(request))
	}

	return c.JSON(fiber.Map{"swaps": populated})
}

type ForceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted completed cancelled"`
}

// ForceSwapStatus lets an admin override a swap status directly. The
// participant checks are bypassed, the value set is not.
func ForceSwapStatus(c *fiber.Ctx) error {
	requestID := c.Params("requestId")

	var req ForceStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	var request models.SwapRequest
	if err := database.DB.First(&request, "id = ?", requestID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Swap request not found"})
	}

	request.Status = req.Status
	if req.Status == "completed" {
		if request.CompletedAt == nil {
			now := time.Now()
			request.CompletedAt = &now
		}
	} else {
		// A request forced out of completed must not keep its completion time.
		request.CompletedAt = nil
	}

	if err := database.DB.Save(&request).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update swap status"})
	}

	return c.JSON(fiber.Map{"request": populateRequest(request)})
}

func AdminGetFeedback(c *fiber.Ctx) error {
	var feedbackList []models.Feedback
	if err := database.DB.Order("created_at desc").Find(&feedbackList).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch feedback"})
	}

	populated := make([]feedbackResponse, 0, len(feedbackList))
	for _, feedback := range feedbackList {
		populated = append(populated, populateFeedback(feedback))
	}

	return c.JSON(fiber.Map{"feedback": populated})
}

// AdminDeleteFeedback removes a feedback row and recomputes the reviewed
// user's aggregates in the same transaction, so the delete is only durable
// together with the recompute.
func AdminDeleteFeedback(c *fiber.Ctx) error {
	feedbackID := c.Params("feedbackId")

	var feedback models.Feedback
	if err := database.DB.First(&feedback, "id = ?", feedbackID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Feedback not found"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Feedback{}, "id = ?", feedback.ID).Error; err != nil {
			return err
		}
		return recomputeRating(tx, feedback.ToUserID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete feedback"})
	}

	return c.JSON(fiber.Map{"message": "Feedback deleted successfully"})
}

// FlagFeedback marks a row for moderator review. Idempotent, reflagging just
// refreshes the flagger and timestamp.
func FlagFeedback(c *fiber.Ctx) error {
	adminID := currentUserID(c)
	feedbackID := c.Params("feedbackId")

	var feedback models.Feedback
	if err := database.DB.First(&feedback, "id = ?", feedbackID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Feedback not found"})
	}

	now := time.Now()
	feedback.Flagged = true
	feedback.FlaggedBy = &adminID
	feedback.FlaggedAt = &now

	if err := database.DB.Save(&feedback).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to flag feedback"})
	}

	return c.JSON(fiber.Map{"feedback": populateFeedback(feedback)})
}

type BroadcastRequest struct {
	Message string `json:"message" validate:"required"`
}

func BroadcastMessage(c *fiber.Ctx) error {
	var req BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message is required"})
	}

	recipientCount, err := notifications.Broadcast(database.DB, "System Announcement", strings.TrimSpace(req.Message))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send broadcast message"})
	}

	return c.JSON(fiber.Map{
		"message":        "Broadcast message sent successfully",
		"recipientCount": recipientCount,
	})
}

func reportDateFilter(db *gorm.DB, dateRange string) *gorm.DB {
	if dateRange == "all" || dateRange == "" {
		return db
	}

	now := time.Now()
	var startDate time.Time
	switch dateRange {
	case "week":
		startDate = now.AddDate(0, 0, -7)
	case "month":
		startDate = now.AddDate(0, -1, 0)
	case "quarter":
		startDate = now.AddDate(0, -3, 0)
	case "year":
		startDate = now.AddDate(-1, 0, 0)
	default:
		return db
	}
	return db.Where("created_at >= ?", startDate)
}

func userName(id interface{}) string {
	var user models.User
	if err := database.DB.Select("id", "name").First(&user, "id = ?", id).Error; err != nil {
		return "Unknown"
	}
	return user.Name
}

func GenerateReport(c *fiber.Ctx) error {
	reportType := c.Query("type", "users")
	dateRange := c.Query("range", "all")

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	switch reportType {
	case "users":
		var users []models.User
		reportDateFilter(database.DB, dateRange).Find(&users)

		w.Write([]string{"ID", "Name", "Email", "Role", "Status", "Skills Offered", "Skills Wanted", "Rating", "Total Ratings", "Created At"})
		for _, user := range users {
			w.Write([]string{
				user.ID.String(),
				user.Name,
				user.Email,
				user.Role,
				user.Status,
				strings.Join(user.SkillsOffered, "; "),
				strings.Join(user.SkillsWanted, "; "),
				fmt.Sprintf("%.2f", user.Rating),
				strconv.Itoa(user.TotalRatings),
				user.CreatedAt.Format(time.RFC3339),
			})
		}

	case "swaps":
		var requests []models.SwapRequest
		reportDateFilter(database.DB, dateRange).Find(&requests)

		w.Write([]string{"ID", "Sender", "Receiver", "Skill Offered", "Skill Wanted", "Status", "Message", "Created At", "Updated At"})
		for _, request := range requests {
			w.Write([]string{
				request.ID.String(),
				userName(request.SenderID),
				userName(request.ReceiverID),
				request.SkillOffered,
				request.SkillWanted,
				request.Status,
				request.Message,
				request.CreatedAt.Format(time.RFC3339),
				request.UpdatedAt.Format(time.RFC3339),
			})
		}

	case "feedback":
		var feedbackList []models.Feedback
		reportDateFilter(database.DB, dateRange).Find(&feedbackList)

		w.Write([]string{"ID", "From User", "To User", "Rating", "Skill", "Comment", "Created At"})
		for _, feedback := range feedbackList {
			w.Write([]string{
				feedback.ID.String(),
				userName(feedback.FromUserID),
				userName(feedback.ToUserID),
				strconv.Itoa(feedback.Rating),
				feedback.Skill,
				feedback.Comment,
				feedback.CreatedAt.Format(time.RFC3339),
			})
		}

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report type"})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate report"})
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s-report-%s.csv\"", reportType, time.Now().Format("2006-01-02")))

	return c.Send(b.Bytes())
}

type DashboardAnalyticsResponse struct {
	TotalUsers     int64                 `json:"totalUsers"`
	ActiveUsers    int64                 `json:"activeUsers"`
	BannedUsers    int64                 `json:"bannedUsers"`
	TotalSwaps     int64                 `json:"totalSwaps"`
	PendingSwaps   int64                 `json:"pendingSwaps"`
	CompletedSwaps int64                 `json:"completedSwaps"`
	TotalFeedback  int64                 `json:"totalFeedback"`
	RecentSwaps    []swapRequestResponse `json:"recentSwaps"`
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	var response DashboardAnalyticsResponse

	database.DB.Model(&models.User{}).Count(&response.TotalUsers)
	database.DB.Model(&models.User{}).Where("status = ?", "active").Count(&response.ActiveUsers)
	database.DB.Model(&models.User{}).Where("status = ?", "banned").Count(&response.BannedUsers)
	database.DB.Model(&models.SwapRequest{}).Count(&response.TotalSwaps)
	database.DB.Model(&models.SwapRequest{}).Where("status = ?", "pending").Count(&response.PendingSwaps)
	database.DB.Model(&models.SwapRequest{}).Where("status = ?", "completed").Count(&response.CompletedSwaps)
	database.DB.Model(&models.Feedback{}).Count(&response.TotalFeedback)

	var recent []models.SwapRequest
	database.DB.Order("created_at desc").Limit(5).Find(&recent)
	response.RecentSwaps = make([]swapRequestResponse, 0, len(recent))
	for _, request := range recent {
		response.RecentSwaps = append(response.RecentSwaps, populateRequest(request))
	}

	return c.JSON(response)
}
