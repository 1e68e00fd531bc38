package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCurrency(t *testing.T) {
	for code := range AcceptedCurrencies {
		assert.True(t, ValidCurrency(code), code)
	}
	for _, code := range []string{"", "usd", "XYZ", "BTC", "EURO"} {
		assert.False(t, ValidCurrency(code), code)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.org", "x_1@sub.domain.io"}
	for _, e := range valid {
		assert.True(t, ValidateEmail(e), e)
	}
	invalid := []string{"", "no-at.example.com", "user@", "@example.com", "user@host"}
	for _, e := range invalid {
		assert.False(t, ValidateEmail(e), e)
	}
}

func TestValidateUsername(t *testing.T) {
	assert.True(t, ValidateUsername("bob"))
	assert.True(t, ValidateUsername("a_very_long_username_under_30"))
	assert.False(t, ValidateUsername("ab"))
	assert.False(t, ValidateUsername("this_username_is_definitely_over_thirty_characters"))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("Str0ng!pass"))
	assert.False(t, ValidatePassword("short1!"))
	assert.False(t, ValidatePassword("alllowercase1!"))
	assert.False(t, ValidatePassword("ALLUPPERCASE1!"))
	assert.False(t, ValidatePassword("NoDigits!!"))
	assert.False(t, ValidatePassword("NoSpecial123"))
}
