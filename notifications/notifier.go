package notifications

import (
	"github.com/anjiri1684/skill_swap/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notify writes an in-app notification row for a single user. It runs on the
// caller's transaction so the notification lands atomically with the event
// that produced it.
func Notify(tx *gorm.DB, userID uuid.UUID, notifType, title, message string) error {
	notification := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
	}
	return tx.Create(&notification).Error
}

// Broadcast fans a notification out to every non-banned user and returns the
// recipient count. Delivery is best effort, there is no per-user acknowledgment.
func Broadcast(db *gorm.DB, title, message string) (int, error) {
	var userIDs []uuid.UUID
	if err := db.Model(&models.User{}).Where("status <> ?", "banned").Pluck("id", &userIDs).Error; err != nil {
		return 0, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, id := range userIDs {
			if err := Notify(tx, id, "broadcast", title, message); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(userIDs), nil
}
