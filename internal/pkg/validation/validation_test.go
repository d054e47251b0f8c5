package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("jane@example.com"))
	assert.False(t, IsValidEmail("jane@example"))
	assert.False(t, IsValidEmail("jane doe@example.com"))
	assert.False(t, IsValidEmail(""))
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Passw0rdX"))
	assert.False(t, IsStrongPassword("Pa0"), "too short")
	assert.False(t, IsStrongPassword("password1"), "no upper")
	assert.False(t, IsStrongPassword("PASSWORD1"), "no lower")
	assert.False(t, IsStrongPassword("Password"), "no digit")
}

func TestIsValidUsername(t *testing.T) {
	assert.True(t, IsValidUsername("jane_doe-1"))
	assert.False(t, IsValidUsername("jd"))
	assert.False(t, IsValidUsername("jane doe"))
}

func TestIsValidWalletAddress(t *testing.T) {
	assert.True(t, IsValidWalletAddress("  0x52908400098527886E0F7030069857D2E4169EE7 "))
	assert.False(t, IsValidWalletAddress("short"))
	assert.False(t, IsValidWalletAddress("0x5290 8400098527886E"))
}
