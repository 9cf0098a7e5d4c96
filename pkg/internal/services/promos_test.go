package services

import (
	"errors"
	"testing"
	"time"

	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseLimitedPromoStacks(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 100)

	spec := models.LookupPromoSpec("micro-pack", "")

	first, err := PurchasePromo(account.ID, spec)
	require.NoError(t, err)

	// Burn some usage between the purchases, stacking must not reset it.
	require.NoError(t, database.C.
		Model(&models.PromoGrant{}).
		Where("id = ?", first.ID).
		Update("text_used", 10).Error)

	second, err := PurchasePromo(account.ID, spec)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	grants, err := GetActivePromos(account.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)

	assert.Equal(t, 1000, *grants[0].TextAllowance)
	assert.Equal(t, float64(200), *grants[0].CallAllowance)
	assert.Equal(t, float64(40), grants[0].CreditsPaid)
	assert.Equal(t, 10, grants[0].TextUsed)

	credits, err := GetCredits(account.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(60), credits.Balance)
}

func TestPurchaseUnlimitedPromoNeverMerges(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 500)

	spec := models.LookupPromoSpec("the-180", "")

	_, err := PurchasePromo(account.ID, spec)
	require.NoError(t, err)
	_, err = PurchasePromo(account.ID, spec)
	require.NoError(t, err)

	grants, err := GetActivePromos(account.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 2)

	credits, err := GetCredits(account.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(140), credits.Balance)
}

func TestPurchaseInsufficientCredits(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 10)

	_, err := PurchasePromo(account.ID, models.LookupPromoSpec("micro-pack", ""))

	var insufficient *InsufficientCreditsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, float64(10), insufficient.Shortfall)

	credits, err := GetCredits(account.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(10), credits.Balance)

	grants, err := GetActivePromos(account.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestUnlimitedGrantTakesPrecedence(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 0)

	limited := makeTestGrant(t, account.ID, "call-centric", models.PromoKindLimitedCalls,
		nil, lo.ToPtr(float64(100)), time.Now().Add(24*time.Hour))
	makeTestGrant(t, account.ID, "late-night", models.PromoKindUnlimitedCalls,
		nil, nil, time.Now().Add(72*time.Hour))

	summary, err := GetPromoSummary(account.ID)
	require.NoError(t, err)
	assert.True(t, summary.Calls.Unlimited)

	assert.True(t, DeductAllowance(account.ID, models.UsageKindCall, 5))

	// The unlimited grant absorbed the deduction, the limited one is untouched.
	assert.Zero(t, reloadGrant(t, limited.ID).CallUsed)
}

func TestDeductionWalksSoonestExpiryFirst(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 0)

	soon := makeTestGrant(t, account.ID, "micro-pack", models.PromoKindLimitedCalls,
		nil, lo.ToPtr(float64(10)), time.Now().Add(24*time.Hour))
	later := makeTestGrant(t, account.ID, "call-centric", models.PromoKindLimitedCalls,
		nil, lo.ToPtr(float64(100)), time.Now().Add(240*time.Hour))

	assert.True(t, DeductAllowance(account.ID, models.UsageKindCall, 3))
	assert.Equal(t, float64(3), reloadGrant(t, soon.ID).CallUsed)
	assert.Zero(t, reloadGrant(t, later.ID).CallUsed)

	// Exhaust the soonest grant, the next deduction falls through.
	require.NoError(t, database.C.
		Model(&models.PromoGrant{}).
		Where("id = ?", soon.ID).
		Update("call_used", 10).Error)

	assert.True(t, DeductAllowance(account.ID, models.UsageKindCall, 2))
	assert.Equal(t, float64(2), reloadGrant(t, later.ID).CallUsed)
}

func TestDeductionNeverClampsUsage(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 0)

	grant := makeTestGrant(t, account.ID, "call-centric", models.PromoKindLimitedCalls,
		nil, lo.ToPtr(float64(100)), time.Now().Add(24*time.Hour))
	require.NoError(t, database.C.
		Model(&models.PromoGrant{}).
		Where("id = ?", grant.ID).
		Update("call_used", 99).Error)

	// A grant with any headroom takes the full increment.
	assert.True(t, DeductAllowance(account.ID, models.UsageKindCall, 50))
	assert.Equal(t, float64(149), reloadGrant(t, grant.ID).CallUsed)

	// Now fully spent, nothing left to deduct against.
	assert.False(t, DeductAllowance(account.ID, models.UsageKindCall, 1))
	assert.False(t, HasAllowance(account.ID, models.UsageKindCall))
}

func TestExpiredGrantsRetireLazily(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 0)

	stale := makeTestGrant(t, account.ID, "micro-pack", models.PromoKindLimitedBoth,
		lo.ToPtr(500), lo.ToPtr(float64(100)), time.Now().Add(-time.Hour))

	grants, err := GetActivePromos(account.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
	assert.False(t, HasAllowance(account.ID, models.UsageKindText))

	// The read flipped the flag, not just filtered the row out.
	assert.False(t, reloadGrant(t, stale.ID).IsActive)
}

func TestPurchaseCompensatesFailedGrantWrite(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 100)

	require.NoError(t, database.C.Exec(
		`CREATE TRIGGER block_grant_writes BEFORE INSERT ON promo_grants
		 BEGIN SELECT RAISE(ABORT, 'grant store down'); END`).Error)

	_, err := PurchasePromo(account.ID, models.LookupPromoSpec("micro-pack", ""))
	require.Error(t, err)

	// The refund landed, so this is a plain failure, not a compensation one.
	var compensation *CompensationError
	assert.False(t, errors.As(err, &compensation))

	credits, err := GetCredits(account.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), credits.Balance)
}

func TestPurchaseEscalatesFailedRefund(t *testing.T) {
	setupTestDatabase(t)
	account := makeTestAccount(t, "Maria", "09170000001", 100)

	require.NoError(t, database.C.Exec(
		`CREATE TRIGGER block_grant_writes BEFORE INSERT ON promo_grants
		 BEGIN SELECT RAISE(ABORT, 'grant store down'); END`).Error)
	// The debit lowers the balance and passes, the refund raises it and fails.
	require.NoError(t, database.C.Exec(
		`CREATE TRIGGER block_refunds BEFORE UPDATE ON credits_accounts
		 WHEN NEW.balance > OLD.balance
		 BEGIN SELECT RAISE(ABORT, 'refund failed'); END`).Error)

	_, err := PurchasePromo(account.ID, models.LookupPromoSpec("micro-pack", ""))

	var compensation *CompensationError
	require.ErrorAs(t, err, &compensation)
	assert.Equal(t, account.ID, compensation.AccountID)
	assert.Equal(t, float64(20), compensation.Amount)

	// The debit stuck, which is exactly what makes this error worth escalating.
	credits, err := GetCredits(account.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(80), credits.Balance)
}
