package services

import (
	"testing"

	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCredits(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 25)

	credits, err := AddCredits(account.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, float64(75), credits.Balance)

	reloaded, err := GetCredits(account.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(75), reloaded.Balance)
}

func TestPurchaseLeavesAuditTrail(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 100)

	_, err := PurchasePromo(account.ID, models.LookupPromoSpec("micro-pack", ""))
	require.NoError(t, err)

	var transactions []models.Transaction
	require.NoError(t, database.C.
		Where("account_id = ?", account.ID).
		Find(&transactions).Error)
	require.Len(t, transactions, 1)

	assert.Equal(t, models.TransactionKindPromoPurchase, transactions[0].Kind)
	assert.Equal(t, float64(-20), transactions[0].Amount)
	assert.Equal(t, "micro-pack", transactions[0].Metadata["promo_id"])
	assert.NotEmpty(t, transactions[0].ReferenceID)
}
