package database

import (
	"github.com/paratalk/messaging/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Account{},
	&models.Conversation{},
	&models.Message{},
	&models.CallSession{},
	&models.CreditsAccount{},
	&models.Transaction{},
	&models.PromoGrant{},
	&models.ChangeRecord{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	return nil
}
