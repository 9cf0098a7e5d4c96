package services

import (
	"testing"

	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountNormalizesAndFundsCredits(t *testing.T) {
	setupTestDatabase(t)
	viper.Set("credits.initial_balance", 100)
	defer viper.Set("credits.initial_balance", nil)

	account, err := NewAccount("Maria", "0917 123 4567", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "639171234567", account.Phone)

	credits, err := GetCredits(account.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), credits.Balance)

	_, err = NewAccount("Nobody", "12345", "hunter22")
	assert.Error(t, err)
}

func TestGetAccountByPhoneMatchesLegacyFormats(t *testing.T) {
	setupTestDatabase(t)

	// A row written before normalization was enforced.
	legacy := models.Account{Name: "Juan", Phone: "09181234567"}
	require.NoError(t, database.C.Create(&legacy).Error)

	found, err := GetAccountByPhone("+639181234567")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, found.ID)

	_, err = GetAccountByPhone("09990000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticateAccount(t *testing.T) {
	setupTestDatabase(t)
	viper.Set("credits.initial_balance", 0)
	defer viper.Set("credits.initial_balance", nil)

	account, err := NewAccount("Maria", "09171234567", "hunter22")
	require.NoError(t, err)

	authed, err := AuthenticateAccount("0917-123-4567", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, account.ID, authed.ID)

	_, err = AuthenticateAccount("09171234567", "wrong")
	assert.Error(t, err)
}

func TestTokenRoundtrip(t *testing.T) {
	viper.Set("security.jwt_secret", "test-secret")
	defer viper.Set("security.jwt_secret", nil)

	token, err := IssueToken(models.Account{BaseModel: models.BaseModel{ID: 42}})
	require.NoError(t, err)

	id, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = ParseToken(token + "tampered")
	assert.Error(t, err)
}
