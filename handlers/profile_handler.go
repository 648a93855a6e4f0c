package handlers

import (
	"github.com/anjiri1684/skill_swap/database"
	"github.com/anjiri1684/skill_swap/models"
	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	Name          *string   `json:"name,omitempty" validate:"omitempty,min=2"`
	Avatar        *string   `json:"avatar,omitempty" validate:"omitempty,url"`
	Location      *string   `json:"location,omitempty"`
	Bio           *string   `json:"bio,omitempty"`
	SkillsOffered *[]string `json:"skillsOffered,omitempty"`
	SkillsWanted  *[]string `json:"skillsWanted,omitempty"`
	Availability  *[]string `json:"availability,omitempty"`
	IsPublic      *bool     `json:"isPublic,omitempty"`
}

func GetProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"user": user})
}

// UpdateProfile lets a user edit their own profile. Role, status and the
// rating aggregates are never writable through this endpoint.
func UpdateProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req UpdateProfileRequest
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

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}
	if req.Location != nil {
		user.Location = req.Location
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.SkillsOffered != nil {
		user.SkillsOffered = *req.SkillsOffered
	}
	if req.SkillsWanted != nil {
		user.SkillsWanted = *req.SkillsWanted
	}
	if req.Availability != nil {
		user.Availability = *req.Availability
	}
	if req.IsPublic != nil {
		user.IsPublic = *req.IsPublic
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"user": user})
}
