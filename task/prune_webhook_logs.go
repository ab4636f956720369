package task

import (
	"log"
	"time"
	"yatra/models"

	"gorm.io/gorm"
)

// PruneWebhookLogs hard-deletes processed webhook logs older than the given
// number of days. Unprocessed rows are kept for investigation.
func PruneWebhookLogs(db *gorm.DB, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		olderThanDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	res := db.Unscoped().
		Where("created_at < ? AND processed = ?", cutoff, true).
		Delete(&models.PaymentWebhookLog{})
	if res.Error != nil {
		return 0, res.Error
	}

	log.Printf("🧹 pruned %d webhook logs older than %d days", res.RowsAffected, olderThanDays)
	return res.RowsAffected, nil
}
