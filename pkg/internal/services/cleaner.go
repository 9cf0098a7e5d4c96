package services

import (
	"time"

	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// DoAutoDatabaseCleanup purges soft-deleted rows and drained change-feed
// records that every subscriber has long since consumed.
func DoAutoDatabaseCleanup() {
	deadline := time.Now().Add(-60 * time.Minute)
	log.Debug().Time("deadline", deadline).Msg("Now cleaning up entire database...")

	var count int64
	for _, model := range database.AutoMaintainRange {
		if _, ok := model.(*models.ChangeRecord); ok {
			continue
		}
		tx := database.C.Unscoped().Delete(model, "deleted_at IS NOT NULL AND deleted_at <= ?", deadline)
		if tx.Error != nil {
			log.Error().Err(tx.Error).Msg("An error occurred when running database cleanup...")
		}
		count += tx.RowsAffected
	}

	tx := database.C.Delete(&models.ChangeRecord{}, "created_at <= ?", deadline.UnixMilli())
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("An error occurred when pruning the change feed...")
	}
	count += tx.RowsAffected

	log.Debug().Int64("affected", count).Msg("Clean up entire database accomplished.")
}
