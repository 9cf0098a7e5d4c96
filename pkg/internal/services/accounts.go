package services

import (
	"errors"
	"fmt"

	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/paratalk/messaging/pkg/internal/phone"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func GetAccount(id uint) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		return account, err
	} else {
		return account, nil
	}
}

// GetAccountByPhone matches against every stored form of the number, rows
// written before normalization was enforced may carry legacy formats.
func GetAccountByPhone(number string) (models.Account, error) {
	var account models.Account
	if err := database.C.
		Where("phone IN ?", phone.Variants(number)).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrUserNotFound
		}
		return account, err
	} else {
		return account, nil
	}
}

func NewAccount(name, number, password string) (models.Account, error) {
	if !phone.IsValid(number) {
		return models.Account{}, fmt.Errorf("invalid phone number: %s", number)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, err
	}

	account := models.Account{
		Name:         name,
		Phone:        phone.Normalize(number),
		PasswordHash: string(hash),
	}

	if err := database.C.Create(&account).Error; err != nil {
		return account, err
	}

	// Every account carries a credits balance from day one.
	credits := models.CreditsAccount{
		AccountID: account.ID,
		Balance:   viper.GetFloat64("credits.initial_balance"),
	}
	if err := database.C.Create(&credits).Error; err != nil {
		return account, err
	}

	return account, nil
}

func AuthenticateAccount(number, password string) (models.Account, error) {
	account, err := GetAccountByPhone(number)
	if err != nil {
		return account, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return account, fmt.Errorf("invalid credentials")
	}

	return account, nil
}
