package services

import (
	"github.com/google/uuid"
	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

func GetCredits(accountId uint) (models.CreditsAccount, error) {
	var credits models.CreditsAccount
	if err := database.C.
		Where("account_id = ?", accountId).
		First(&credits).Error; err != nil {
		return credits, err
	} else {
		return credits, nil
	}
}

// SetCreditsBalance overwrites the balance with a freshly computed value.
// This is a plain read-then-write, concurrent writers follow last-write-wins
// at the store level.
func SetCreditsBalance(accountId uint, balance float64) error {
	return database.C.
		Model(&models.CreditsAccount{}).
		Where("account_id = ?", accountId).
		Update("balance", balance).Error
}

func AddCredits(accountId uint, amount float64) (models.CreditsAccount, error) {
	credits, err := GetCredits(accountId)
	if err != nil {
		return credits, err
	}

	credits.Balance += amount
	if err := SetCreditsBalance(accountId, credits.Balance); err != nil {
		return credits, err
	}

	return credits, nil
}

// RecordTransaction appends an audit row. Failures never block the action
// that already took place, they are logged and dropped.
func RecordTransaction(accountId uint, kind string, amount float64, metadata map[string]any) {
	transaction := models.Transaction{
		AccountID:   accountId,
		ReferenceID: uuid.NewString(),
		Kind:        kind,
		Amount:      amount,
		Status:      models.TransactionStatusCompleted,
		Metadata:    datatypes.JSONMap(metadata),
	}

	if err := database.C.Create(&transaction).Error; err != nil {
		log.Warn().Err(err).
			Uint("account", accountId).
			Str("kind", kind).
			Msg("An error occurred when recording transaction...")
	}
}
