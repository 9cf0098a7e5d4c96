package models

import "time"

type PromoKind = string

const (
	PromoKindUnlimitedBoth  = "unlimited_both"
	PromoKindUnlimitedText  = "unlimited_text"
	PromoKindUnlimitedCalls = "unlimited_calls"
	PromoKindLimitedBoth    = "limited_both"
	PromoKindLimitedText    = "limited_text"
	PromoKindLimitedCalls   = "limited_calls"
)

// UsageKind names the two consumable dimensions of a grant.
type UsageKind = string

const (
	UsageKindText = "text"
	UsageKindCall = "call"
)

// PromoGrant is a purchased allowance record. A nil allowance field means
// unlimited for that dimension. Usage is tracked but never clamped, an
// over-consumed grant stays on the books until it expires so later purchases
// can still stack onto it.
type PromoGrant struct {
	BaseModel

	AccountID uint      `json:"account_id"`
	PromoID   string    `json:"promo_id"`
	PromoName string    `json:"promo_name"`
	Kind      PromoKind `json:"kind"`

	TextAllowance *int     `json:"text_allowance"`
	TextUsed      int      `json:"text_used"`
	CallAllowance *float64 `json:"call_allowance"`
	CallUsed      float64  `json:"call_used"`

	CreditsPaid float64   `json:"credits_paid"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsActive    bool      `json:"is_active"`

	Account Account `json:"account"`
}

func (v PromoGrant) IsUnlimited() bool {
	switch v.Kind {
	case PromoKindUnlimitedBoth, PromoKindUnlimitedText, PromoKindUnlimitedCalls:
		return true
	default:
		return false
	}
}

// Covers reports whether the grant applies to the given usage dimension at all.
func (v PromoGrant) Covers(kind UsageKind) bool {
	switch kind {
	case UsageKindText:
		return v.Kind == PromoKindUnlimitedBoth || v.Kind == PromoKindUnlimitedText ||
			v.Kind == PromoKindLimitedBoth || v.Kind == PromoKindLimitedText
	case UsageKindCall:
		return v.Kind == PromoKindUnlimitedBoth || v.Kind == PromoKindUnlimitedCalls ||
			v.Kind == PromoKindLimitedBoth || v.Kind == PromoKindLimitedCalls
	default:
		return false
	}
}

// CoversUnlimited reports whether the grant gives unlimited usage for the kind.
func (v PromoGrant) CoversUnlimited(kind UsageKind) bool {
	if v.Kind == PromoKindUnlimitedBoth {
		return true
	}
	return (kind == UsageKindText && v.Kind == PromoKindUnlimitedText) ||
		(kind == UsageKindCall && v.Kind == PromoKindUnlimitedCalls)
}

// Allowance folds the nullable-allowance row shape into one place, consumers
// check Unlimited once instead of nil-checking at every read site.
type Allowance struct {
	Unlimited bool    `json:"unlimited"`
	Used      float64 `json:"used"`
	Total     float64 `json:"total"`
}

func UnlimitedAllowance() Allowance {
	return Allowance{Unlimited: true}
}

func LimitedAllowance(used, total float64) Allowance {
	return Allowance{Used: used, Total: total}
}

func (v Allowance) Remaining() float64 {
	if v.Unlimited {
		return 0
	}
	return v.Total - v.Used
}

func (v Allowance) CanAfford() bool {
	return v.Unlimited || v.Used < v.Total
}

// PromoSummary is a derived projection over all active grants of one account.
// It is recomputed on demand and never stored.
type PromoSummary struct {
	Text  Allowance `json:"text"`
	Calls Allowance `json:"calls"`

	ActivePromos []PromoGrant `json:"active_promos"`
}
