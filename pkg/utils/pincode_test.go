package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPincode(t *testing.T) {
	assert.True(t, IsValidPincode("500001"))
	assert.True(t, IsValidPincode("000030"))

	assert.False(t, IsValidPincode(""))
	assert.False(t, IsValidPincode("50001"))
	assert.False(t, IsValidPincode("5000011"))
	assert.False(t, IsValidPincode("50O001"))
	assert.False(t, IsValidPincode("५००००१"))
}

func TestPincodeRoundTrip(t *testing.T) {
	n, err := PincodeToInt("000123")
	require.NoError(t, err)
	assert.Equal(t, 123, n)
	assert.Equal(t, "000123", FormatPincode(n))

	_, err = PincodeToInt("12ab56")
	assert.Error(t, err)
}
