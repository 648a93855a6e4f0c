package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Feedback struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	SwapRequestID *uuid.UUID `gorm:"type:uuid" json:"swapRequestId,omitempty"`

	// One feedback row per (reviewer, reviewed) pair, enforced at the DB level.
	FromUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_from_to" json:"fromUserId"`
	ToUserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_from_to" json:"toUserId"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"type:text" json:"comment"`
	Skill   string `gorm:"size:255" json:"skill"`

	Flagged   bool       `gorm:"default:false" json:"flagged"`
	FlaggedBy *uuid.UUID `gorm:"type:uuid" json:"flaggedBy,omitempty"`
	FlaggedAt *time.Time `json:"flaggedAt,omitempty"`

	FromUser User `gorm:"foreignkey:FromUserID" json:"-"`
	ToUser   User `gorm:"foreignkey:ToUserID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
