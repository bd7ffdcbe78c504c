package utils

import (
	"time"

	"github.com/moaboard/moaboard/config"
	"github.com/moaboard/moaboard/models"
)

const (
	readNotificationRetention = 30 * 24 * time.Hour
	viewMarkRetention         = 7 * 24 * time.Hour
)

// StartMaintenance launches a background loop that prunes rows nothing reads
// anymore: notifications that were read long ago and view-dedupe marks far
// outside the dedupe window. Best-effort; failures are logged and retried on
// the next tick.
func StartMaintenance(interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			pruneOnce()
		}
	}()
}

func pruneOnce() {
	db := config.DB()

	res := db.Where("is_read = ? AND created_at < ?", true, time.Now().Add(-readNotificationRetention)).
		Delete(&models.Notification{})
	if res.Error != nil {
		if Sugar != nil {
			Sugar.Warnf("notification prune failed: %v", res.Error)
		}
	} else if res.RowsAffected > 0 && Sugar != nil {
		Sugar.Infof("pruned %d read notifications", res.RowsAffected)
	}

	res = db.Where("last_viewed < ?", time.Now().Add(-viewMarkRetention)).
		Delete(&models.PostViewMark{})
	if res.Error != nil {
		if Sugar != nil {
			Sugar.Warnf("view mark prune failed: %v", res.Error)
		}
	} else if res.RowsAffected > 0 && Sugar != nil {
		Sugar.Infof("pruned %d stale view marks", res.RowsAffected)
	}
}
