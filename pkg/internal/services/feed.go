package services

import (
	"sync"
	"time"

	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// The change feed is the durable half of the dual-path delivery. Rows land in
// the same store as the mutation itself and a dispatcher replays them to the
// registered watchers, slower than the broadcast but guaranteed to arrive.

func AppendChangeRecord(table, op string, rowId uint, payload any) {
	var body map[string]any
	models.FitStruct(payload, &body)

	record := models.ChangeRecord{
		Table:   table,
		Op:      op,
		RowID:   rowId,
		Payload: datatypes.JSONMap(body),
	}

	if err := database.C.Create(&record).Error; err != nil {
		log.Error().Err(err).Str("table", table).Uint("row", rowId).
			Msg("An error occurred when appending change record...")
	}
}

var (
	feedCursor     uint
	feedCursorOnce sync.Once
	feedQuit       chan struct{}
)

func initFeedCursor() {
	feedCursorOnce.Do(func() {
		var last models.ChangeRecord
		if err := database.C.Order("id DESC").First(&last).Error; err == nil {
			feedCursor = last.ID
		}
	})
}

// DispatchChanges replays every record past the cursor to the watchers of the
// rows' participants. Returns how many records were consumed.
func DispatchChanges() int {
	initFeedCursor()

	var records []models.ChangeRecord
	if err := database.C.
		Where("id > ?", feedCursor).
		Order("id ASC").
		Limit(100).
		Find(&records).Error; err != nil {
		log.Warn().Err(err).Msg("An error occurred when reading the change feed...")
		return 0
	}

	for _, record := range records {
		switch record.Table {
		case "call_sessions":
			var session models.CallSession
			models.FitStruct(map[string]any(record.Payload), &session)
			RouteCallUpdate(session)
		case "messages":
			var message models.Message
			models.FitStruct(map[string]any(record.Payload), &message)
			RouteMessageEvent(message)
		}
		feedCursor = record.ID
	}

	return len(records)
}

// StartFeedDispatcher polls the feed until StopFeedDispatcher is called.
func StartFeedDispatcher(interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	feedQuit = make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				DispatchChanges()
			case <-feedQuit:
				return
			}
		}
	}()
}

func StopFeedDispatcher() {
	if feedQuit != nil {
		close(feedQuit)
		feedQuit = nil
	}
}
