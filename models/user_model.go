package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'user'" json:"role"`

	Avatar   *string `gorm:"size:255" json:"avatar,omitempty"`
	Location *string `gorm:"size:255" json:"location,omitempty"`
	Bio      *string `gorm:"type:text" json:"bio,omitempty"`

	SkillsOffered []string `gorm:"serializer:json" json:"skillsOffered"`
	SkillsWanted  []string `gorm:"serializer:json" json:"skillsWanted"`
	Availability  []string `gorm:"serializer:json" json:"availability"`

	IsPublic bool `gorm:"default:true" json:"isPublic"`

	// Derived from the feedback table, recomputed on every feedback insert/delete.
	Rating       float64 `gorm:"default:0" json:"rating"`
	TotalRatings int     `gorm:"default:0" json:"totalRatings"`

	Status string `gorm:"size:20;not null;default:'active'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if u.Status == "" {
		u.Status = "active"
	}
	return nil
}
