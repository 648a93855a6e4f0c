package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SwapRequest struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`

	// At most one pending request per (sender, receiver) pair, enforced at the DB level.
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_swap_requests_pending_pair,where:status = 'pending'" json:"senderId"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_swap_requests_pending_pair" json:"receiverId"`

	SkillOffered string `gorm:"size:255;not null" json:"skillOffered"`
	SkillWanted  string `gorm:"size:255;not null" json:"skillWanted"`
	Message      string `gorm:"type:text" json:"message,omitempty"`
	Status       string `gorm:"size:20;not null;default:'pending'" json:"status"`

	Sender   User `gorm:"foreignkey:SenderID" json:"-"`
	Receiver User `gorm:"foreignkey:ReceiverID" json:"-"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (r *SwapRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
