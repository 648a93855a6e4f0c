package handlers

import (
	"errors"

	"github.com/anjiri1684/skill_swap/database"
	"github.com/anjiri1684/skill_swap/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmitFeedbackRequest struct {
	FromUserID    string `json:"fromUserId" validate:"required,uuid"`
	ToUserID      string `json:"toUserId" validate:"required,uuid"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Comment       string `json:"comment,omitempty"`
	Skill         string `json:"skill,omitempty"`
	SwapRequestID string `json:"swapRequestId,omitempty" validate:"omitempty,uuid"`
}

type feedbackResponse struct {
	models.Feedback
	FromUserName   string  `json:"fromUserName"`
	ToUserName     string  `json:"toUserName"`
	FromUserAvatar *string `json:"fromUserAvatar,omitempty"`
}

var (
	errNoCompletedSwap = errors.New("no completed swap")
	errAlreadyReviewed = errors.New("already reviewed")
	errInvalidSwapRef  = errors.New("invalid swap reference")
)

// recomputeRating rewrites a user's rating aggregates from the full feedback
// set. Always a full recompute so insert and delete stay symmetric; an empty
// set resets to 0/0 via the COALESCE.
func recomputeRating(tx *gorm.DB, userID uuid.UUID) error {
	var result struct {
		Avg   float64
		Total int64
	}
	if err := tx.Model(&models.Feedback{}).
		Where("to_user_id = ?", userID).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as total").
		Scan(&result).Error; err != nil {
		return err
	}

	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"rating":        result.Avg,
			"total_ratings": result.Total,
		}).Error
}

// checkEligibility evaluates the feedback predicate against current state:
// a completed swap must exist between the two users (either direction) and
// the reviewer must not have reviewed the reviewee before.
func checkEligibility(tx *gorm.DB, reviewerID, revieweeID uuid.UUID) (*models.SwapRequest, error) {
	var swap models.SwapRequest
	err := tx.Where(
		"status = ? AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))",
		"completed", reviewerID, revieweeID, revieweeID, reviewerID,
	).First(&swap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoCompletedSwap
		}
		return nil, err
	}

	var count int64
	if err := tx.Model(&models.Feedback{}).
		Where("from_user_id = ? AND to_user_id = ?", reviewerID, revieweeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errAlreadyReviewed
	}

	return &swap, nil
}

func GetFeedbackForUser(c *fiber.Ctx) error {
	userIDStr := c.Query("userId")
	if userIDStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var feedbackList []models.Feedback
	if err := database.DB.
		Where("to_user_id = ?", userID).
		Order("created_at desc").
		Find(&feedbackList).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch feedback."})
	}

	populated := make([]feedbackResponse, 0, len(feedbackList))
	for _, feedback := range feedbackList {
		populated = append(populated, populateFeedback(feedback))
	}

	return c.JSON(fiber.Map{"feedback": populated})
}

func populateFeedback(feedback models.Feedback) feedbackResponse {
	resp := feedbackResponse{Feedback: feedback, FromUserName: "Unknown", ToUserName: "Unknown"}

	var fromUser, toUser models.User
	if err := database.DB.Select("id", "name", "avatar").First(&fromUser, "id = ?", feedback.FromUserID).Error; err == nil {
		resp.FromUserName = fromUser.Name
		resp.FromUserAvatar = fromUser.Avatar
	}
	if err := database.DB.Select("id", "name").First(&toUser, "id = ?", feedback.ToUserID).Error; err == nil {
		resp.ToUserName = toUser.Name
	}
	return resp
}

func CanLeaveFeedback(c *fiber.Ctx) error {
	userID := currentUserID(c)

	targetIDStr := c.Query("targetId")
	if targetIDStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"canLeave": false, "error": "Target ID required"})
	}
	targetID, err := uuid.Parse(targetIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"canLeave": false, "error": "Invalid target ID"})
	}

	swap, err := checkEligibility(database.DB, userID, targetID)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{
			"canLeave": true,
			"swapId":   swap.ID.String(),
			"reason":   "Eligible to leave feedback",
		})
	case errors.Is(err, errNoCompletedSwap):
		return c.JSON(fiber.Map{
			"canLeave": false,
			"reason":   "No completed skill swap found between users",
		})
	case errors.Is(err, errAlreadyReviewed):
		return c.JSON(fiber.Map{
			"canLeave": false,
			"reason":   "Feedback already submitted for this user",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"canLeave": false, "error": "Failed to check feedback eligibility"})
	}
}

// SubmitFeedback re-validates eligibility server-side and recomputes the
// reviewee's aggregates inside the same transaction as the insert. The unique
// index on (from_user_id, to_user_id) backstops concurrent submissions.
func SubmitFeedback(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	fromUserID, _ := uuid.Parse(req.FromUserID)
	toUserID, _ := uuid.Parse(req.ToUserID)

	if fromUserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only submit feedback as yourself"})
	}
	if toUserID == fromUserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot leave feedback for yourself"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		swap, err := checkEligibility(tx, fromUserID, toUserID)
		if err != nil {
			return err
		}

		swapRequestID := swap.ID
		if req.SwapRequestID != "" {
			providedID, _ := uuid.Parse(req.SwapRequestID)
			if providedID != swap.ID {
				// Accept only a completed swap between the same two users.
				var count int64
				if err := tx.Model(&models.SwapRequest{}).
					Where("id = ? AND status = ? AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))",
						providedID, "completed", fromUserID, toUserID, toUserID, fromUserID).
					Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return errInvalidSwapRef
				}
			}
			swapRequestID = providedID
		}

		feedback := models.Feedback{
			SwapRequestID: &swapRequestID,
			FromUserID:    fromUserID,
			ToUserID:      toUserID,
			Rating:        req.Rating,
			Comment:       req.Comment,
			Skill:         req.Skill,
		}
		if err := tx.Create(&feedback).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyReviewed
			}
			return err
		}

		return recomputeRating(tx, toUserID)
	})
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": true})
	case errors.Is(err, errNoCompletedSwap):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Feedback can only be submitted after completing a skill swap with this user."})
	case errors.Is(err, errAlreadyReviewed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You have already submitted feedback for this user."})
	case errors.Is(err, errInvalidSwapRef):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Referenced swap is not a completed swap between these users."})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit feedback."})
	}
}
