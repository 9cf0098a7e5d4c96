package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PromoSpec describes a purchasable promo from the catalog.
type PromoSpec struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Kind          PromoKind `json:"kind"`
	TextAllowance *int      `json:"text_allowance"`
	CallAllowance *float64  `json:"call_allowance"`
	DurationDays  int       `json:"duration_days"`
	CreditsCost   float64   `json:"credits_cost"`
}

func (v PromoSpec) IsLimited() bool {
	return strings.HasPrefix(v.Kind, "limited")
}

func (v PromoSpec) ExpiryFrom(now time.Time) time.Time {
	return now.Add(time.Duration(v.DurationDays) * 24 * time.Hour)
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

var PromoCatalog = []PromoSpec{
	{
		ID:            "test-promo",
		Name:          "Test Promo",
		Description:   "5 Text Messages (SMS) & 1 Minute of Voice Call for 1 Day",
		Kind:          PromoKindLimitedBoth,
		TextAllowance: intPtr(5),
		CallAllowance: floatPtr(1),
		DurationDays:  1,
		CreditsCost:   1,
	},
	{
		ID:           "the-180",
		Name:         "The 180",
		Description:  "Unlimited Text (SMS) & Voice Calls, shareable with one number, for 15 Days",
		Kind:         PromoKindUnlimitedBoth,
		DurationDays: 15,
		CreditsCost:  180,
	},
	{
		ID:            "voice-value-60",
		Name:          "Voice Value 60",
		Description:   "4,000 Minutes of Voice Calls for 60 Days",
		Kind:          PromoKindLimitedCalls,
		CallAllowance: floatPtr(4000),
		DurationDays:  60,
		CreditsCost:   60,
	},
	{
		ID:           "15-day-unli",
		Name:         "15-Day Unli",
		Description:  "Unlimited Text (SMS) & Voice Calls for 15 Days",
		Kind:         PromoKindUnlimitedBoth,
		DurationDays: 15,
		CreditsCost:  150,
	},
	{
		ID:           "the-weekender",
		Name:         "The Weekender",
		Description:  "Unlimited Text (SMS) & Voice Calls for 7 Days",
		Kind:         PromoKindUnlimitedBoth,
		DurationDays: 7,
		CreditsCost:  75,
	},
	{
		ID:           "monthly-basic",
		Name:         "Monthly Basic",
		Description:  "Unlimited Text (SMS) to all networks for 30 Days",
		Kind:         PromoKindUnlimitedText,
		DurationDays: 30,
		CreditsCost:  99,
	},
	{
		ID:            "call-centric",
		Name:          "Call Centric",
		Description:   "2,000 Minutes of Voice Calls for 30 Days",
		Kind:          PromoKindLimitedCalls,
		CallAllowance: floatPtr(2000),
		DurationDays:  30,
		CreditsCost:   50,
	},
	{
		ID:            "micro-pack",
		Name:          "Micro Pack",
		Description:   "500 Text Messages (SMS) & 100 Minutes of Voice Calls for 3 Days",
		Kind:          PromoKindLimitedBoth,
		TextAllowance: intPtr(500),
		CallAllowance: floatPtr(100),
		DurationDays:  3,
		CreditsCost:   20,
	},
	{
		// Time-window restriction is not enforced yet, treated as plain unlimited.
		ID:           "late-night",
		Name:         "Late Night",
		Description:  "Unlimited Voice Calls (10 PM - 6 AM only) for 30 Days",
		Kind:         PromoKindUnlimitedCalls,
		DurationDays: 30,
		CreditsCost:  30,
	},
}

// LookupPromoSpec resolves a catalog entry by id. Unknown ids fall back to
// parsing the free-form description so ad-hoc promos keep working.
func LookupPromoSpec(id, description string) PromoSpec {
	for _, spec := range PromoCatalog {
		if spec.ID == id {
			return spec
		}
	}
	spec := parsePromoDescription(description)
	spec.ID = id
	spec.Description = description
	return spec
}

var (
	promoDaysPattern    = regexp.MustCompile(`(\d+)\s*days?`)
	promoTextPattern    = regexp.MustCompile(`(\d+)\s*text`)
	promoMinutesPattern = regexp.MustCompile(`(\d+)\s*minutes`)
)

func parsePromoDescription(description string) PromoSpec {
	desc := strings.ToLower(description)

	spec := PromoSpec{DurationDays: 30}
	if m := promoDaysPattern.FindStringSubmatch(desc); m != nil {
		spec.DurationDays, _ = strconv.Atoi(m[1])
	}

	unliText := strings.Contains(desc, "unlimited text") || strings.Contains(desc, "unlimited sms")
	unliCalls := strings.Contains(desc, "unlimited voice") || strings.Contains(desc, "unlimited calls")

	if m := promoTextPattern.FindStringSubmatch(desc); m != nil && !unliText {
		n, _ := strconv.Atoi(m[1])
		spec.TextAllowance = intPtr(n)
	}
	if m := promoMinutesPattern.FindStringSubmatch(desc); m != nil && !unliCalls {
		n, _ := strconv.Atoi(m[1])
		spec.CallAllowance = floatPtr(float64(n))
	}

	switch {
	case unliText && unliCalls:
		spec.Kind = PromoKindUnlimitedBoth
	case unliText && spec.CallAllowance != nil:
		spec.Kind = PromoKindLimitedBoth
	case unliText:
		spec.Kind = PromoKindUnlimitedText
	case unliCalls && spec.TextAllowance != nil:
		spec.Kind = PromoKindLimitedBoth
	case unliCalls:
		spec.Kind = PromoKindUnlimitedCalls
	case spec.TextAllowance != nil && spec.CallAllowance != nil:
		spec.Kind = PromoKindLimitedBoth
	case spec.TextAllowance != nil:
		spec.Kind = PromoKindLimitedText
	case spec.CallAllowance != nil:
		spec.Kind = PromoKindLimitedCalls
	default:
		spec.Kind = PromoKindUnlimitedBoth
	}

	return spec
}
