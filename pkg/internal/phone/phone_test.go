package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+639171234567", "639171234567"},
		{"639171234567", "639171234567"},
		{"09171234567", "639171234567"},
		{"9171234567", "639171234567"},
		{"0917 123 4567", "639171234567"},
		{"0917-123-4567", "639171234567"},
		{"12345", "12345"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	// Junk in, something out, never a panic.
	for _, in := range []string{"abc", "+++", "٠٩١٧", "09", "6", "           "} {
		assert.NotPanics(t, func() { _ = Normalize(in) })
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "+639171234567", Display("09171234567"))
	assert.Equal(t, "+639171234567", Display("+639171234567"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("+639171234567"))
	assert.True(t, IsValid("639171234567"))
	assert.True(t, IsValid("09171234567"))
	assert.False(t, IsValid("9171234567"))
	assert.False(t, IsValid("0917123456"))
	assert.False(t, IsValid("not a number"))
}

func TestVariants(t *testing.T) {
	variants := Variants("+63 917 123 4567")
	assert.Contains(t, variants, "639171234567")
	assert.Contains(t, variants, "+639171234567")
	assert.Contains(t, variants, "09171234567")
}
