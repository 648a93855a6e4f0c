package handlers

import (
	"errors"
	"time"

	"github.com/anjiri1684/skill_swap/database"
	"github.com/anjiri1684/skill_swap/models"
	"github.com/anjiri1684/skill_swap/notifications"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errPendingRequestExists = errors.New("pending request exists")

type CreateRequestRequest struct {
	ReceiverID   string `json:"receiverId" validate:"required,uuid"`
	SkillOffered string `json:"skillOffered" validate:"required"`
	SkillWanted  string `json:"skillWanted" validate:"required"`
	Message      string `json:"message,omitempty"`
}

type UpdateRequestStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected completed"`
}

type swapRequestResponse struct {
	models.SwapRequest
	SenderName     string  `json:"senderName"`
	ReceiverName   string  `json:"receiverName"`
	SenderAvatar   *string `json:"senderAvatar,omitempty"`
	ReceiverAvatar *string `json:"receiverAvatar,omitempty"`
}

// populateRequest resolves the party names for a swap request. Lookups are
// best effort, a missing user degrades to "Unknown" rather than failing.
func populateRequest(request models.SwapRequest) swapRequestResponse {
	resp := swapRequestResponse{SwapRequest: request, SenderName: "Unknown", ReceiverName: "Unknown"}

	var sender, receiver models.User
	if err := database.DB.Select("id", "name", "avatar").First(&sender, "id = ?", request.SenderID).Error; err == nil {
		resp.SenderName = sender.Name
		resp.SenderAvatar = sender.Avatar
	}
	if err := database.DB.Select("id", "name", "avatar").First(&receiver, "id = ?", request.ReceiverID).Error; err == nil {
		resp.ReceiverName = receiver.Name
		resp.ReceiverAvatar = receiver.Avatar
	}
	return resp
}

func GetMyRequests(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var requests []models.SwapRequest
	if err := database.DB.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at desc").
		Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch requests"})
	}

	populated := make([]swapRequestResponse, 0, len(requests))
	for _, request := range requests {
		populated = append(populated, populateRequest(request))
	}

	return c.JSON(fiber.Map{"requests": populated})
}

func CreateRequest(c *fiber.Ctx) error {
	senderID := currentUserID(c)

	var req CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	receiverID, _ := uuid.Parse(req.ReceiverID)
	if receiverID == senderID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot send a swap request to yourself"})
	}

	var receiver models.User
	if err := database.DB.First(&receiver, "id = ?", receiverID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Receiver not found"})
	}

	var newRequest models.SwapRequest
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.SwapRequest{}).
			Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, "pending").
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errPendingRequestExists
		}

		newRequest = models.SwapRequest{
			SenderID:     senderID,
			ReceiverID:   receiverID,
			SkillOffered: req.SkillOffered,
			SkillWanted:  req.SkillWanted,
			Message:      req.Message,
			Status:       "pending",
		}
		if err := tx.Create(&newRequest).Error; err != nil {
			// The partial unique index on (sender_id, receiver_id) catches the
			// race two concurrent creates can slip past the count above.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errPendingRequestExists
			}
			return err
		}

		return notifications.Notify(tx, receiverID, "swap_request",
			"New Swap Request", "You have received a new skill swap request.")
	})
	if err != nil {
		if errors.Is(err, errPendingRequestExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You already have a pending request with this user"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create request"})
	}

	go notifications.SendEmail(receiver.Name, receiver.Email, "You Have a New Swap Request!",
		"<h1>New Swap Request</h1><p>Someone wants to swap skills with you. Log in to respond.</p>")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": populateRequest(newRequest)})
}

func GetRequest(c *fiber.Ctx) error {
	requestID := c.Params("requestId")

	var request models.SwapRequest
	if err := database.DB.First(&request, "id = ?", requestID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Request not found"})
	}

	return c.JSON(fiber.Map{"request": populateRequest(request)})
}

// UpdateRequestStatus drives the swap lifecycle for its participants:
// pending -> accepted/rejected by the receiver, accepted -> completed by
// either party. Anything else is an invalid transition.
func UpdateRequestStatus(c *fiber.Ctx) error {
	userID := currentUserID(c)
	requestID := c.Params("requestId")

	var req UpdateRequestStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	var request models.SwapRequest
	if err := database.DB.First(&request, "id = ?", requestID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Request not found"})
	}

	if request.SenderID != userID && request.ReceiverID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not a participant in this request"})
	}

	switch req.Status {
	case "accepted", "rejected":
		if request.Status != "pending" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only pending requests can be " + req.Status})
		}
		if request.ReceiverID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the receiver can respond to a request"})
		}
	case "completed":
		if request.Status != "accepted" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only accepted requests can be marked as completed"})
		}
		now := time.Now()
		request.CompletedAt = &now
	}
	request.Status = req.Status

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&request).Error; err != nil {
			return err
		}
		if req.Status == "accepted" {
			return notifications.Notify(tx, request.SenderID, "swap_accepted",
				"Swap Request Accepted", "Your skill swap request has been accepted.")
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update request"})
	}

	if req.Status == "accepted" {
		var sender models.User
		if err := database.DB.First(&sender, "id = ?", request.SenderID).Error; err == nil {
			go notifications.SendEmail(sender.Name, sender.Email, "Your Swap Request was Accepted!",
				"<h1>Request Accepted</h1><p>Your skill swap request has been accepted. Time to start swapping!</p>")
		}
	}

	return c.JSON(fiber.Map{"request": populateRequest(request)})
}

// DeleteRequest cancels a pending request. Only the sender can do it, and only
// while the request is still pending; the single conditional delete keeps the
// check atomic.
func DeleteRequest(c *fiber.Ctx) error {
	userID := currentUserID(c)
	requestID := c.Params("requestId")

	result := database.DB.Delete(&models.SwapRequest{},
		"id = ? AND sender_id = ? AND status = ?", requestID, userID, "pending")
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete request"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Request not found or cannot be deleted"})
	}

	return c.JSON(fiber.Map{"message": "Request deleted successfully"})
}
