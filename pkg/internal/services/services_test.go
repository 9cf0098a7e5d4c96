package services

import (
	"sync"
	"testing"
	"time"

	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/paratalk/messaging/pkg/internal/phone"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDatabase swaps the global source for an in-memory store and resets
// the package state the tests touch, every test gets a blank ledger.
func setupTestDatabase(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One in-memory connection, a second one would see an empty database.
	source, err := db.DB()
	require.NoError(t, err)
	source.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigration(db))
	database.C = db

	feedCursor = 0
	feedCursorOnce = sync.Once{}
	callWatchers = make(map[uint][]*watcherEntry)
}

func makeTestAccount(t *testing.T, name, number string, balance float64) models.Account {
	t.Helper()

	account := models.Account{
		Name:  name,
		Phone: phone.Normalize(number),
	}
	require.NoError(t, database.C.Create(&account).Error)
	require.NoError(t, database.C.Create(&models.CreditsAccount{
		AccountID: account.ID,
		Balance:   balance,
	}).Error)

	return account
}

func makeTestGrant(t *testing.T, accountId uint, promoId string, kind models.PromoKind, texts *int, minutes *float64, expiresAt time.Time) models.PromoGrant {
	t.Helper()

	grant := models.PromoGrant{
		AccountID:     accountId,
		PromoID:       promoId,
		PromoName:     promoId,
		Kind:          kind,
		TextAllowance: texts,
		CallAllowance: minutes,
		ExpiresAt:     expiresAt,
		IsActive:      true,
	}
	require.NoError(t, database.C.Create(&grant).Error)

	return grant
}

func reloadGrant(t *testing.T, id uint) models.PromoGrant {
	t.Helper()

	grant, err := GetPromoGrant(id)
	require.NoError(t, err)
	return grant
}

func waitEvent(t *testing.T, watcher *CallWatcher) models.UnifiedCommand {
	t.Helper()

	select {
	case command := <-watcher.Events():
		return command
	case <-time.After(time.Second):
		t.Fatal("no event arrived in time")
		return models.UnifiedCommand{}
	}
}

func requireNoEvent(t *testing.T, watcher *CallWatcher) {
	t.Helper()

	select {
	case command := <-watcher.Events():
		t.Fatalf("unexpected event: %s", command.Action)
	case <-time.After(50 * time.Millisecond):
	}
}
