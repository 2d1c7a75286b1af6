package services

import (
	"lms/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notify writes one notification per distinct recipient in a single batch.
func Notify(db *gorm.DB, userIDs []uint, kind, title, message, link string) error {
	seen := make(map[uint]bool, len(userIDs))
	batchID := uuid.NewString()

	var rows []models.Notification
	for _, id := range userIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, models.Notification{
			UserID:  id,
			BatchID: batchID,
			Type:    kind,
			Title:   title,
			Message: message,
			Link:    link,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return db.CreateInBatches(&rows, 100).Error
}
