package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLookupPromoSpecFromCatalog(t *testing.T) {
	spec := LookupPromoSpec("micro-pack", "")
	assert.Equal(t, PromoKindLimitedBoth, spec.Kind)
	assert.Equal(t, 500, *spec.TextAllowance)
	assert.Equal(t, float64(100), *spec.CallAllowance)
	assert.Equal(t, 3, spec.DurationDays)
	assert.True(t, spec.IsLimited())

	unli := LookupPromoSpec("the-180", "")
	assert.Equal(t, PromoKindUnlimitedBoth, unli.Kind)
	assert.Nil(t, unli.TextAllowance)
	assert.Nil(t, unli.CallAllowance)
	assert.False(t, unli.IsLimited())
}

func TestLookupPromoSpecDescriptionFallback(t *testing.T) {
	cases := []struct {
		description string
		kind        PromoKind
		text        *int
		call        *float64
		days        int
	}{
		{"Unlimited Text (SMS) & Voice Calls for 10 Days", PromoKindUnlimitedBoth, nil, nil, 10},
		{"300 Text Messages (SMS) for 5 Days", PromoKindLimitedText, intPtr(300), nil, 5},
		{"1000 Minutes of Voice Calls for 30 Days", PromoKindLimitedCalls, nil, floatPtr(1000), 30},
		{"100 Text Messages & 50 Minutes for 7 Days", PromoKindLimitedBoth, intPtr(100), floatPtr(50), 7},
		{"Unlimited SMS to all networks", PromoKindUnlimitedText, nil, nil, 30},
		{"", PromoKindUnlimitedBoth, nil, nil, 30},
	}

	for _, tc := range cases {
		spec := LookupPromoSpec("some-unknown-promo", tc.description)
		assert.Equal(t, tc.kind, spec.Kind, "description %q", tc.description)
		assert.Equal(t, tc.text, spec.TextAllowance, "description %q", tc.description)
		assert.Equal(t, tc.call, spec.CallAllowance, "description %q", tc.description)
		assert.Equal(t, tc.days, spec.DurationDays, "description %q", tc.description)
	}
}

func TestPromoSpecExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	spec := LookupPromoSpec("the-weekender", "")
	assert.Equal(t, now.Add(7*24*time.Hour), spec.ExpiryFrom(now))
}

func TestAllowance(t *testing.T) {
	assert.True(t, UnlimitedAllowance().CanAfford())
	assert.True(t, LimitedAllowance(4, 5).CanAfford())
	assert.False(t, LimitedAllowance(5, 5).CanAfford())
	assert.Equal(t, float64(1), LimitedAllowance(4, 5).Remaining())
}

func TestGrantCoverage(t *testing.T) {
	both := PromoGrant{Kind: PromoKindUnlimitedBoth}
	assert.True(t, both.Covers(UsageKindText))
	assert.True(t, both.Covers(UsageKindCall))
	assert.True(t, both.CoversUnlimited(UsageKindCall))

	texts := PromoGrant{Kind: PromoKindLimitedText}
	assert.True(t, texts.Covers(UsageKindText))
	assert.False(t, texts.Covers(UsageKindCall))
	assert.False(t, texts.CoversUnlimited(UsageKindText))
}
