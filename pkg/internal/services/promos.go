package services

import (
	"time"

	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// expireStalePromos lazily flips expired grants inactive. There is no
// background sweep for this, every summary read pays for its own expiry pass.
func expireStalePromos(accountId uint) {
	if err := database.C.
		Model(&models.PromoGrant{}).
		Where("account_id = ? AND is_active = ? AND expires_at < ?", accountId, true, time.Now()).
		Update("is_active", false).Error; err != nil {
		log.Warn().Err(err).Uint("account", accountId).Msg("An error occurred when expiring stale promos...")
	}
}

// GetActivePromos returns the live grants of an account, soonest-expiring
// first. That order is load-bearing, deduction walks it front to back.
func GetActivePromos(accountId uint) ([]models.PromoGrant, error) {
	expireStalePromos(accountId)

	var grants []models.PromoGrant
	if err := database.C.
		Where("account_id = ? AND is_active = ? AND expires_at > ?", accountId, true, time.Now()).
		Order("expires_at ASC").
		Find(&grants).Error; err != nil {
		return grants, err
	} else {
		return grants, nil
	}
}

// GetPromoSummary aggregates the active grants into one projection. Any
// unlimited grant for a dimension wins outright, limited totals are only
// summed when no unlimited grant covers that dimension.
func GetPromoSummary(accountId uint) (models.PromoSummary, error) {
	grants, err := GetActivePromos(accountId)
	if err != nil {
		return models.PromoSummary{}, err
	}

	summary := models.PromoSummary{ActivePromos: grants}
	summary.Text = summarizeKind(grants, models.UsageKindText)
	summary.Calls = summarizeKind(grants, models.UsageKindCall)

	return summary, nil
}

func summarizeKind(grants []models.PromoGrant, kind models.UsageKind) models.Allowance {
	if lo.SomeBy(grants, func(item models.PromoGrant) bool {
		return item.CoversUnlimited(kind)
	}) {
		return models.UnlimitedAllowance()
	}

	var used, total float64
	for _, grant := range grants {
		if grant.IsUnlimited() || !grant.Covers(kind) {
			continue
		}
		switch kind {
		case models.UsageKindText:
			if grant.TextAllowance != nil {
				total += float64(*grant.TextAllowance)
				used += float64(grant.TextUsed)
			}
		case models.UsageKindCall:
			if grant.CallAllowance != nil {
				total += *grant.CallAllowance
				used += grant.CallUsed
			}
		}
	}

	return models.LimitedAllowance(used, total)
}

// HasAllowance reports whether the account may perform one more action of the
// given kind. It only reads, apart from the lazy expiry pass.
func HasAllowance(accountId uint, kind models.UsageKind) bool {
	summary, err := GetPromoSummary(accountId)
	if err != nil {
		log.Warn().Err(err).Uint("account", accountId).Msg("An error occurred when summarizing promos...")
		return false
	}

	switch kind {
	case models.UsageKindText:
		return summary.Text.CanAfford()
	case models.UsageKindCall:
		return summary.Calls.CanAfford()
	default:
		return false
	}
}

// DeductAllowance consumes usage against the account's grants. An unlimited
// grant of a matching kind absorbs the whole amount without any mutation.
// Otherwise the soonest-expiring limited grant with headroom takes the full
// increment, use-it-before-you-lose-it. Usage is intentionally not clamped to
// the allowance, a near-exhausted grant still absorbs a large deduction.
//
// This is a single best-effort write, not a two-phase commit. Two devices
// deducting concurrently can both pass the headroom check and overshoot the
// nominal allowance, the ledger tolerates that slight over-spend.
func DeductAllowance(accountId uint, kind models.UsageKind, amount float64) bool {
	grants, err := GetActivePromos(accountId)
	if err != nil {
		log.Warn().Err(err).Uint("account", accountId).Msg("An error occurred when loading promos for deduction...")
		return false
	}

	relevant := lo.Filter(grants, func(item models.PromoGrant, index int) bool {
		return item.Covers(kind)
	})
	if len(relevant) == 0 {
		return false
	}

	if lo.SomeBy(relevant, func(item models.PromoGrant) bool {
		return item.CoversUnlimited(kind)
	}) {
		return true
	}

	for _, grant := range relevant {
		if grant.IsUnlimited() {
			continue
		}
		switch kind {
		case models.UsageKindText:
			if grant.TextAllowance != nil && grant.TextUsed < *grant.TextAllowance {
				return applyPromoUsage(grant, int(amount), 0)
			}
		case models.UsageKindCall:
			if grant.CallAllowance != nil && grant.CallUsed < *grant.CallAllowance {
				return applyPromoUsage(grant, 0, amount)
			}
		}
	}

	return false
}

func applyPromoUsage(grant models.PromoGrant, textIncrement int, callIncrement float64) bool {
	// The active flag stays untouched, only expiry retires a grant.
	if err := database.C.
		Model(&models.PromoGrant{}).
		Where("id = ?", grant.ID).
		Updates(map[string]any{
			"text_used": grant.TextUsed + textIncrement,
			"call_used": grant.CallUsed + callIncrement,
		}).Error; err != nil {
		log.Warn().Err(err).Uint("grant", grant.ID).Msg("An error occurred when updating promo usage...")
		return false
	}

	return true
}

// PurchasePromo debits the credits balance and activates a grant.
//
// The debit and the grant write are two separate store writes, not one
// transaction. When the grant write fails the debit is compensated by
// restoring the original balance, and when that refund fails too the caller
// receives a CompensationError which must be escalated, never swallowed.
func PurchasePromo(accountId uint, spec models.PromoSpec) (models.PromoGrant, error) {
	credits, err := GetCredits(accountId)
	if err != nil {
		return models.PromoGrant{}, err
	}

	if credits.Balance < spec.CreditsCost {
		return models.PromoGrant{}, &InsufficientCreditsError{
			Shortfall: spec.CreditsCost - credits.Balance,
		}
	}

	if err := SetCreditsBalance(accountId, credits.Balance-spec.CreditsCost); err != nil {
		return models.PromoGrant{}, err
	}

	var grant models.PromoGrant
	if spec.IsLimited() {
		grant, err = stackOrCreateGrant(accountId, spec)
	} else {
		// Unlimited grants never merge, each purchase is its own record.
		grant, err = createGrant(accountId, spec)
	}
	if err != nil {
		if err := SetCreditsBalance(accountId, credits.Balance); err != nil {
			return models.PromoGrant{}, &CompensationError{
				AccountID: accountId,
				Amount:    spec.CreditsCost,
				Cause:     err,
			}
		}
		return models.PromoGrant{}, err
	}

	RecordTransaction(accountId, models.TransactionKindPromoPurchase, -spec.CreditsCost, map[string]any{
		"promo_id":   spec.ID,
		"promo_name": spec.Name,
		"grant_id":   grant.ID,
	})

	return grant, nil
}

// stackOrCreateGrant merges a limited purchase into an existing active grant
// of the same promo, summing allowances and credits paid, or inserts a fresh
// record when there is nothing to stack onto.
func stackOrCreateGrant(accountId uint, spec models.PromoSpec) (models.PromoGrant, error) {
	var existing models.PromoGrant
	err := database.C.
		Where("account_id = ? AND promo_id = ? AND is_active = ? AND expires_at > ?",
			accountId, spec.ID, true, time.Now()).
		First(&existing).Error
	if err != nil {
		return createGrant(accountId, spec)
	}

	textAllowance := lo.FromPtr(existing.TextAllowance) + lo.FromPtr(spec.TextAllowance)
	callAllowance := lo.FromPtr(existing.CallAllowance) + lo.FromPtr(spec.CallAllowance)

	updates := map[string]any{
		"text_allowance": nil,
		"call_allowance": nil,
		"credits_paid":   existing.CreditsPaid + spec.CreditsCost,
	}
	if textAllowance > 0 {
		updates["text_allowance"] = textAllowance
	}
	if callAllowance > 0 {
		updates["call_allowance"] = callAllowance
	}

	if err := database.C.
		Model(&models.PromoGrant{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error; err != nil {
		return existing, err
	}

	return GetPromoGrant(existing.ID)
}

func createGrant(accountId uint, spec models.PromoSpec) (models.PromoGrant, error) {
	grant := models.PromoGrant{
		AccountID:     accountId,
		PromoID:       spec.ID,
		PromoName:     spec.Name,
		Kind:          spec.Kind,
		TextAllowance: spec.TextAllowance,
		CallAllowance: spec.CallAllowance,
		CreditsPaid:   spec.CreditsCost,
		ExpiresAt:     spec.ExpiryFrom(time.Now()),
		IsActive:      true,
	}

	if err := database.C.Create(&grant).Error; err != nil {
		return grant, err
	}

	return grant, nil
}

func GetPromoGrant(id uint) (models.PromoGrant, error) {
	var grant models.PromoGrant
	if err := database.C.Where("id = ?", id).First(&grant).Error; err != nil {
		return grant, err
	} else {
		return grant, nil
	}
}
